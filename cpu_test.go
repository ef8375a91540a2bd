package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNOPTiming: after 4 T-cycles PC has
// advanced to the next byte and the bus is left asserting a Read of it.
func TestNOPTiming(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x5555})
	fs.mem[0x5555] = 0x00

	for i := 0; i < 4; i++ {
		fs.tick()
	}

	snap := fs.cpu.Snapshot()
	assert.Equal(t, uint16(0x5556), snap.PC)
	assert.Equal(t, byte(0), snap.A)
	assert.Equal(t, uint16(0x5556), fs.bus.Address())
	assert.Equal(t, BusRead, fs.bus.Direction())
}

// TestLDAImmediateTiming checks LD A,n8's timing and operand load.
func TestLDAImmediateTiming(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x5555})
	fs.mem[0x5555] = 0x3E // LD A, n8
	fs.mem[0x5556] = 0x42

	for i := 0; i < 8; i++ {
		fs.tick()
	}

	snap := fs.cpu.Snapshot()
	assert.Equal(t, uint16(0x5557), snap.PC)
	assert.Equal(t, byte(0x42), snap.A)
}

// TestLDRRSubfamily: every LD r,r' opcode in
// the 0x40-0x7F block (excluding 0x76, HALT) copies source into destination
// in exactly 4 T-cycles.
func TestLDRRSubfamily(t *testing.T) {
	regs := map[Reg8]byte{
		RegB: 0x11, RegC: 0x22, RegD: 0x33, RegE: 0x44,
		RegH: 0x55, RegL: 0x66, RegA: 0x77,
	}

	for opcode := 0x40; opcode <= 0x7F; opcode++ {
		if opcode == 0x76 {
			continue
		}
		b := byte(opcode)
		d := decode(b)
		if d.Kind != OpLDRR {
			continue
		}

		fs := newFlatSystem()
		fs.cpu.Restore(RegisterSnapshot{PC: 0x1000})
		fs.mem[0x1000] = b
		fs.cpu.B, fs.cpu.C, fs.cpu.D, fs.cpu.E = regs[RegB], regs[RegC], regs[RegD], regs[RegE]
		fs.cpu.H, fs.cpu.L, fs.cpu.A = regs[RegH], regs[RegL], regs[RegA]

		for i := 0; i < 4; i++ {
			fs.tick()
		}

		got := fs.cpu.getReg8(d.R1)
		want := regs[d.R2]
		assert.Equalf(t, want, got, "opcode %#02x: LD %v,%v", b, d.R1, d.R2)
	}
}

func TestALUAddSetsFlags(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x2000, A: 0x0F})
	fs.mem[0x2000] = 0xC6 // ADD A, n8
	fs.mem[0x2001] = 0x01

	for i := 0; i < 8; i++ {
		fs.tick()
	}

	snap := fs.cpu.Snapshot()
	assert.Equal(t, byte(0x10), snap.A)
	assert.True(t, snap.F&FlagH != 0)
	assert.False(t, snap.F&FlagZ != 0)
	assert.False(t, snap.F&FlagC != 0)
}

func TestIncClearsNDecSetsN(t *testing.T) {
	c := NewCPU()
	c.A = 0xFF
	c.incReg8(RegA)
	assert.Equal(t, byte(0x00), c.A)
	assert.True(t, c.flag(FlagZ))
	assert.False(t, c.flag(FlagN))

	c.decReg8(RegA)
	assert.Equal(t, byte(0xFF), c.A)
	assert.True(t, c.flag(FlagN))
}

func TestPushPopRoundTrip(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x3000, SP: 0xFFFE})
	fs.cpu.B, fs.cpu.C = 0xBE, 0xEF
	fs.mem[0x3000] = 0xC5 // PUSH BC
	fs.mem[0x3001] = 0xD1 // POP DE

	for i := 0; i < 16; i++ {
		fs.tick()
	}
	for i := 0; i < 12; i++ {
		fs.tick()
	}

	assert.Equal(t, byte(0xBE), fs.cpu.D)
	assert.Equal(t, byte(0xEF), fs.cpu.E)
	assert.Equal(t, uint16(0xFFFE), fs.cpu.SP)
}

func TestJRNZNotTakenUsesShortTiming(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x4000, F: FlagZ})
	fs.mem[0x4000] = 0x20 // JR NZ, e8
	fs.mem[0x4001] = 0x10

	for i := 0; i < 8; i++ {
		fs.tick()
	}

	assert.Equal(t, uint16(0x4002), fs.cpu.PC)
}

func TestJRNZTakenAddsOffset(t *testing.T) {
	fs := newFlatSystem()
	fs.cpu.Restore(RegisterSnapshot{PC: 0x4000})
	fs.mem[0x4000] = 0x20 // JR NZ, e8 (Z clear -> taken)
	fs.mem[0x4001] = 0x05

	for i := 0; i < 12; i++ {
		fs.tick()
	}

	assert.Equal(t, uint16(0x4007), fs.cpu.PC)
}
