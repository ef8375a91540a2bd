package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBusPowerOnState(t *testing.T) {
	b := NewBus()
	assert.Equal(t, uint16(0), b.Address())
	assert.Equal(t, byte(0), b.Data())
	assert.Equal(t, BusRead, b.Direction())
}

func TestBusReadAssertsAddressAndMode(t *testing.T) {
	b := NewBus()
	b.SetDirection(BusWrite)
	b.Read(0x1234)
	assert.Equal(t, uint16(0x1234), b.Address())
	assert.Equal(t, BusRead, b.Direction())
}

func TestBusWriteAssertsAddressDataAndMode(t *testing.T) {
	b := NewBus()
	b.Write(0xC000, 0x42)
	assert.Equal(t, uint16(0xC000), b.Address())
	assert.Equal(t, byte(0x42), b.Data())
	assert.Equal(t, BusWrite, b.Direction())
}

func TestBusIsContinuouslyAsserted(t *testing.T) {
	b := NewBus()
	b.Write(0x8000, 0x99)
	// nothing touches the bus between transactions; the last value persists.
	assert.Equal(t, uint16(0x8000), b.Address())
	assert.Equal(t, byte(0x99), b.Data())
}

func TestBusReset(t *testing.T) {
	b := NewBus()
	b.Write(0x1111, 0x22)
	b.Reset()
	assert.Equal(t, uint16(0), b.Address())
	assert.Equal(t, byte(0), b.Data())
	assert.Equal(t, BusRead, b.Direction())
}
