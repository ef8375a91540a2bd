// ppu.go - dot/line counters and the VRAM visibility gate

package main

const (
	dotsPerLine   = 456
	linesPerFrame = 154
	visibleLines  = 144

	oamScanDots = 80
	lastDrawDot = 368 // last dot of the invisible pixel-drawing window
)

// PPU tracks the DMG pixel pipeline's timing only: the dot counter and LY
// line counter that gate VRAM visibility. Actual pixel production is out of
// scope; VRAM is exposed to the rest of the system purely as a byte store
// whose visibility depends on where in the scan this tick falls.
type PPU struct {
	dot int // 0-455 within the current line
	ly  int // 0-153

	vramVisible bool

	vram *RAMRegion

	scx, scy byte
	wx, wy   byte
}

// NewPPU allocates the 8KB VRAM region and a PPU positioned at the start of
// line 0, dot 0 — the power-on scan position.
func NewPPU() *PPU {
	p := &PPU{vram: NewRAMRegion(0x2000)}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	p.dot = 0
	p.ly = 0
	p.vramVisible = true
	p.vram.Reset()
	p.scx, p.scy, p.wx, p.wy = 0, 0, 0, 0
}

// Tick advances the scan position by one dot (one T-cycle). Called once per
// T-cycle from the system's fixed per-tick order, independent of CPU and
// timer progress. vram_visible is recomputed from the current (pre-advance)
// dot/LY before either counter moves, then cached: a garlicjr-style VRAM gate
// (ppu.rs's tick()) sets vram_enabled from current_dot before incrementing
// it, not from whatever dot happens to be current when something later asks.
func (p *PPU) Tick() {
	p.vramVisible = p.ly >= visibleLines || p.dot < oamScanDots || p.dot > lastDrawDot

	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.ly++
		if p.ly >= linesPerFrame {
			p.ly = 0
		}
	}
}

func (p *PPU) LY() byte { return byte(p.ly) }
func (p *PPU) Dot() int { return p.dot }

// VRAMVisible reports whether the CPU may currently see real VRAM contents,
// as cached by the most recent Tick(). True during VBlank (LY >= 144),
// during OAM scan (dot < 80), and during HBlank (dot > 368); false during
// the pixel-drawing window in between, where reads return open-bus 0xFF
// instead.
func (p *PPU) VRAMVisible() bool {
	return p.vramVisible
}

func (p *PPU) ReadVRAM(addr int) byte {
	if !p.VRAMVisible() {
		return 0xFF
	}
	return p.vram.ReadOrFF(addr)
}

// WriteVRAM always lands in the backing store regardless of visibility —
// writes-during-drawing are accepted
// silently, matching the documented DMG behaviour of corrupting the
// current scanline rather than rejecting the write.
func (p *PPU) WriteVRAM(addr int, v byte) {
	p.vram.Write(addr, v)
}

func (p *PPU) SCX() byte     { return p.scx }
func (p *PPU) SetSCX(v byte) { p.scx = v }
func (p *PPU) SCY() byte     { return p.scy }
func (p *PPU) SetSCY(v byte) { p.scy = v }
func (p *PPU) WX() byte      { return p.wx }
func (p *PPU) SetWX(v byte)  { p.wx = v }
func (p *PPU) WY() byte      { return p.wy }
func (p *PPU) SetWY(v byte)  { p.wy = v }
