package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSystem(rom []byte) *System {
	full := make([]byte, 0x8000)
	copy(full, rom)
	return NewSystem(NewCartridge(full))
}

func TestSystemAddressMapRoutesWRAMAndEcho(t *testing.T) {
	s := newTestSystem(nil)
	s.writeMemory(0xC010, 0x99)
	assert.Equal(t, byte(0x99), s.readMemory(0xC010))
	assert.Equal(t, byte(0x99), s.readMemory(0xE010), "echo RAM must mirror work RAM")

	s.writeMemory(0xE020, 0x42)
	assert.Equal(t, byte(0x42), s.readMemory(0xC020))
}

func TestSystemAddressMapRoutesHRAMAndIERegister(t *testing.T) {
	s := newTestSystem(nil)
	s.writeMemory(0xFF90, 0x11)
	assert.Equal(t, byte(0x11), s.readMemory(0xFF90))

	s.writeMemory(0xFFFF, 0x1F)
	assert.Equal(t, byte(0x1F), s.readMemory(0xFFFF))
}

func TestSystemExternalRAMNotModeledReturnsOpenBus(t *testing.T) {
	s := newTestSystem(nil)
	assert.Equal(t, byte(0xFF), s.readMemory(0xA000))
	s.writeMemory(0xA000, 0x55) // must not panic, silently dropped
	assert.Equal(t, byte(0xFF), s.readMemory(0xA000))
}

func TestSystemBootROMLatchIsOneWay(t *testing.T) {
	bootData := make([]byte, bootROMSize)
	bootData[0] = 0xAA
	boot, err := LoadBootROM(bootData)
	assert.NoError(t, err)

	cartRom := make([]byte, 0x8000)
	cartRom[0] = 0xBB
	s := NewSystemWithBootROM(NewCartridge(cartRom), boot)

	assert.Equal(t, byte(0xAA), s.readMemory(0x0000), "boot ROM visible at reset")

	s.writeMemory(0xFF50, 1)
	assert.Equal(t, byte(0xBB), s.readMemory(0x0000), "cartridge visible once boot ROM is disabled")

	s.writeMemory(0xFF50, 0)
	assert.Equal(t, byte(0xBB), s.readMemory(0x0000), "disabling the boot ROM register is a one-way latch")
}

func TestSystemHaltWakesOnPendingIEAndIFRegardlessOfIME(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x76 // HALT
	rom[0x0101] = 0x00 // NOP
	s := newTestSystem(rom)

	for i := 0; i < 4; i++ {
		s.tick()
	}
	assert.True(t, s.CPU.Halted())

	s.ieReg = 0x01
	s.ifReg = 0x01 // IME is false: no EI was ever executed

	s.tick()
	assert.False(t, s.CPU.Halted(), "pending IE&IF must wake the CPU even without IME")
}

func TestSystemInterruptDispatchJumpsToVector(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0xFB // EI
	rom[0x0101] = 0x00 // NOP
	rom[0x0102] = 0x00 // NOP
	rom[0x0103] = 0x00 // NOP
	s := newTestSystem(rom)
	s.ieReg = 0x01
	s.ifReg = 0x01 // VBlank pending from power-on

	dispatched := false
	for i := 0; i < 200 && !dispatched; i++ {
		s.tick()
		if s.IF()&0x01 == 0 {
			dispatched = true
		}
	}
	assert.True(t, dispatched, "VBlank request was never consumed")
	assert.Equal(t, PhaseInterrupt, s.CPU.Phase())

	for i := 0; i < 19; i++ {
		s.tick()
	}
	assert.Equal(t, PhaseFetch, s.CPU.Phase())
	assert.Equal(t, uint16(0x0040), s.CPU.PC)
}

func TestSystemRunCycleDrivesFourTCycles(t *testing.T) {
	s := newTestSystem(nil)
	pc0 := s.CPU.PC
	s.RunCycle()
	assert.Equal(t, pc0+1, s.CPU.PC, "a single NOP completes in exactly one M-cycle")
}
