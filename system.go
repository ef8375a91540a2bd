// system.go - integrator: wires CPU, bus, and peripherals to the address map

package main

// Interrupt vectors and their IE/IF bit, in dispatch-priority order
// (highest priority first).
var interruptSources = []struct {
	bit    byte
	vector uint16
}{
	{0x01, 0x0040}, // VBlank
	{0x02, 0x0048}, // LCD STAT
	{0x04, 0x0050}, // Timer
	{0x08, 0x0058}, // Serial
	{0x10, 0x0060}, // Joypad
}

// System owns the CPU, the shared bus, and every addressable peripheral; it
// is the sole place address decoding happens, matching the usual
// SystemBus role of routing CPU memory traffic to the right backing store.
type System struct {
	CPU   *CPU
	Bus   *Bus
	Timer *Timer
	PPU   *PPU

	WRAM *RAMRegion
	HRAM *RAMRegion

	Cartridge *Cartridge
	BootROM   *BootROM
	Serial    *SerialPort
	Log       *Logger

	bootROMEnable byte // 0xFF50: 0 = boot ROM mapped at 0x0000-0x00FF
	ifReg         byte // 0xFF0F, low 5 bits meaningful
	ieReg         byte // 0xFFFF
}

// NewSystem builds a System with no boot ROM: the CPU starts already
// positioned at the documented post-boot register values and the
// cartridge is visible from address 0.
func NewSystem(cart *Cartridge) *System {
	s := newSystemCommon(cart)
	s.CPU.SetPostBootState()
	s.bootROMEnable = 1
	return s
}

// NewSystemWithBootROM builds a System that begins execution inside boot,
// with the cartridge hidden behind it until a non-zero value is written to
// 0xFF50.
func NewSystemWithBootROM(cart *Cartridge, boot *BootROM) *System {
	s := newSystemCommon(cart)
	s.BootROM = boot
	s.bootROMEnable = 0
	return s
}

func newSystemCommon(cart *Cartridge) *System {
	return &System{
		CPU:       NewCPU(),
		Bus:       NewBus(),
		Timer:     NewTimer(),
		PPU:       NewPPU(),
		WRAM:      NewRAMRegion(0x2000),
		HRAM:      NewRAMRegion(0x7F),
		Cartridge: cart,
		Serial:    NewSerialPort(),
		Log:       NewLogger(),
	}
}

// Reset restores every peripheral and the CPU to their power-on state,
// leaving the cartridge and boot ROM images themselves untouched.
func (s *System) Reset() {
	s.CPU.Reset()
	s.Bus.Reset()
	s.Timer.Reset()
	s.PPU.Reset()
	s.WRAM.Reset()
	s.HRAM.Reset()
	s.Serial.Reset()
	s.ifReg = 0
	s.ieReg = 0
	if s.BootROM != nil {
		s.bootROMEnable = 0
	} else {
		s.bootROMEnable = 1
		s.CPU.SetPostBootState()
	}
}

func (s *System) IF() byte { return s.ifReg | 0xE0 }
func (s *System) IE() byte { return s.ieReg }

// RunCycle drives exactly one M-cycle: four T-cycles of CPU, timer, and PPU
// progress, each followed by bus resolution.
func (s *System) RunCycle() {
	for i := 0; i < 4; i++ {
		s.tick()
	}
}

func (s *System) tick() {
	if s.CPU.Halted() && s.ieReg&s.ifReg&0x1F != 0 {
		s.CPU.Resume()
	}

	s.CPU.Tick(s.Bus)

	if s.CPU.Phase() == PhaseDecode && s.CPU.Tick() == 0 && s.CPU.IME {
		for _, src := range interruptSources {
			if s.ieReg&s.ifReg&src.bit != 0 {
				s.ifReg &^= src.bit
				s.Log.Tracef("interrupt dispatch vector=%#04x", src.vector)
				s.CPU.EnterInterruptService(src.vector)
				break
			}
		}
	}

	s.Timer.Tick()
	s.PPU.Tick()
	if s.Timer.InterruptRequested() {
		s.ifReg |= 0x04
	}

	s.resolveBus()
}

func (s *System) resolveBus() {
	addr := s.Bus.Address()
	if s.Bus.Direction() == BusRead {
		s.Bus.SetData(s.readMemory(addr))
	} else {
		s.writeMemory(addr, s.Bus.Data())
	}
}

func (s *System) readMemory(addr uint16) byte {
	switch {
	case addr <= 0x00FF && s.bootROMEnable == 0 && s.BootROM != nil:
		return s.BootROM.Read(int(addr))
	case addr <= 0x7FFF:
		return s.Cartridge.Read(int(addr))
	case addr <= 0x9FFF:
		return s.PPU.ReadVRAM(int(addr - 0x8000))
	case addr <= 0xBFFF:
		return 0xFF // external RAM not modeled
	case addr <= 0xDFFF:
		return s.WRAM.ReadOrFF(int(addr - 0xC000))
	case addr <= 0xFDFF:
		return s.WRAM.ReadOrFF(int(addr - 0xE000)) // echo RAM mirror
	case addr == 0xFF01:
		return s.Serial.SB()
	case addr == 0xFF02:
		return s.Serial.SC() | 0x7E
	case addr == 0xFF04:
		return s.Timer.DIV()
	case addr == 0xFF05:
		return s.Timer.TIMA()
	case addr == 0xFF06:
		return s.Timer.TMA()
	case addr == 0xFF07:
		return s.Timer.TAC()
	case addr == 0xFF0F:
		return s.IF()
	case addr == 0xFF42:
		return s.PPU.SCY()
	case addr == 0xFF43:
		return s.PPU.SCX()
	case addr == 0xFF44:
		return s.PPU.LY()
	case addr == 0xFF4A:
		return s.PPU.WY()
	case addr == 0xFF4B:
		return s.PPU.WX()
	case addr == 0xFF50:
		return s.bootROMEnable
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return s.HRAM.ReadOrFF(int(addr - 0xFF80))
	case addr == 0xFFFF:
		return s.ieReg
	default:
		return 0xFF
	}
}

func (s *System) writeMemory(addr uint16, v byte) {
	switch {
	case addr <= 0x00FF && s.bootROMEnable == 0 && s.BootROM != nil:
		// boot ROM is read-only
	case addr <= 0x7FFF:
		// cartridge ROM is read-only (no mapper in scope)
	case addr <= 0x9FFF:
		s.PPU.WriteVRAM(int(addr-0x8000), v)
	case addr <= 0xBFFF:
		// external RAM not modeled
	case addr <= 0xDFFF:
		s.WRAM.Write(int(addr-0xC000), v)
	case addr <= 0xFDFF:
		s.WRAM.Write(int(addr-0xE000), v)
	case addr == 0xFF01:
		s.Serial.SetSB(v)
	case addr == 0xFF02:
		s.Serial.SetSC(v)
	case addr == 0xFF04:
		s.Timer.ResetDIV()
	case addr == 0xFF05:
		s.Timer.SetTIMA(v)
	case addr == 0xFF06:
		s.Timer.SetTMA(v)
	case addr == 0xFF07:
		s.Timer.SetTAC(v)
	case addr == 0xFF0F:
		s.ifReg = v & 0x1F
	case addr == 0xFF42:
		s.PPU.SetSCY(v)
	case addr == 0xFF43:
		s.PPU.SetSCX(v)
	case addr == 0xFF4A:
		s.PPU.SetWY(v)
	case addr == 0xFF4B:
		s.PPU.SetWX(v)
	case addr == 0xFF50:
		if s.bootROMEnable == 0 {
			s.bootROMEnable = v // one-way latch: once disabled, stays disabled
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		s.HRAM.Write(int(addr-0xFF80), v)
	case addr == 0xFFFF:
		s.ieReg = v
	}
}
