// timer.go - DIV/TIMA/TMA/TAC timer

package main

// timerPeriods gives the number of divider ticks per TIMA increment for
// each of the four TAC clock-select values (00-11).
var timerPeriods = [4]int{1024, 16, 64, 256}

// Timer models the DMG's free-running 16-bit divider and the TIMA/TMA/TAC
// register trio layered on top of it. Reset mirrors the usual per-
// component Reset() convention (component_reset.go): each subsystem owns
// restoring its own power-on state rather than the integrator poking at
// its fields directly.
type Timer struct {
	divider uint16 // internal 16-bit counter; DIV is its upper byte
	tima    byte
	tma     byte
	tac     byte

	irqLine bool // one-tick-wide interrupt request latch
}

// NewTimer returns a Timer in its power-on state.
func NewTimer() *Timer {
	t := &Timer{}
	t.Reset()
	return t
}

// Reset restores power-on register values: DIV's internal counter and TIMA
// both zero, TMA zero, TAC reads back as 0xF8 (only the low 3 bits are
// meaningful; the upper 5 are unimplemented and read as set).
func (t *Timer) Reset() {
	t.divider = 0
	t.tima = 0
	t.tma = 0
	t.tac = 0xF8
	t.irqLine = false
}

// Tick advances the timer by one T-cycle. Called once per T-cycle from the
// system's fixed per-tick order, after the CPU has acted. When
// TIMA wraps from 0xFF it is reloaded from TMA and the interrupt-request
// latch is set on that same tick; the latch is cleared at the start of the
// next Tick(), giving it an exactly-one-T-cycle width.
func (t *Timer) Tick() {
	t.irqLine = false

	prev := t.divider
	t.divider++

	if t.tac&0x04 == 0 {
		return
	}
	period := timerPeriods[t.tac&0x03]
	if int(prev)%period == period-1 {
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	if t.tima == 0xFF {
		t.tima = t.tma
		t.irqLine = true
		return
	}
	t.tima++
}

// InterruptRequested reports whether the timer's overflow latch is
// currently asserted. It stays high for exactly one Tick() call.
func (t *Timer) InterruptRequested() bool { return t.irqLine }

func (t *Timer) DIV() byte { return byte(t.divider >> 8) }

// ResetDIV implements the real-hardware behaviour of writing any value to
// the DIV register: the entire internal divider resets to zero regardless
// of what was written.
func (t *Timer) ResetDIV() { t.divider = 0 }

func (t *Timer) TIMA() byte     { return t.tima }
func (t *Timer) SetTIMA(v byte) { t.tima = v }
func (t *Timer) TMA() byte      { return t.tma }
func (t *Timer) SetTMA(v byte)  { t.tma = v }
func (t *Timer) TAC() byte      { return t.tac }

// SetTAC masks the write down to the 3 architecturally meaningful bits;
// the upper 5 always read back as set.
func (t *Timer) SetTAC(v byte) { t.tac = v&0x07 | 0xF8 }
