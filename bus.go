// bus.go - Shared CPU/memory bus transaction for the Sharp SM83 core

package main

// BusDirection tags whether the last bus transaction was a read or a write.
type BusDirection int

const (
	BusRead BusDirection = iota
	BusWrite
)

// Bus is the single shared transaction record between the CPU and the rest
// of the system. It is continuously asserted: whatever was last written
// remains visible until something overwrites it. There is no queuing and no
// notion of a "pending" transaction distinct from the current one.
type Bus struct {
	address uint16
	data    byte
	dir     BusDirection
}

// NewBus returns a freshly initialised bus: address 0, data 0, mode Read.
func NewBus() *Bus {
	return &Bus{address: 0, data: 0, dir: BusRead}
}

func (b *Bus) Address() uint16 {
	return b.address
}

func (b *Bus) SetAddress(addr uint16) {
	b.address = addr
}

func (b *Bus) Data() byte {
	return b.data
}

func (b *Bus) SetData(v byte) {
	b.data = v
}

func (b *Bus) Direction() BusDirection {
	return b.dir
}

func (b *Bus) SetDirection(dir BusDirection) {
	b.dir = dir
}

// Read asserts a read transaction at addr; the data field is left as-is
// until the integrator resolves it against memory.
func (b *Bus) Read(addr uint16) {
	b.address = addr
	b.dir = BusRead
}

// Write asserts a write transaction of v at addr.
func (b *Bus) Write(addr uint16, v byte) {
	b.address = addr
	b.data = v
	b.dir = BusWrite
}

// Reset restores the bus to its power-on state.
func (b *Bus) Reset() {
	b.address = 0
	b.data = 0
	b.dir = BusRead
}
