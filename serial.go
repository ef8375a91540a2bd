// serial.go - SB/SC link-cable registers and the Blargg test-ROM convention

package main

// SerialPort models the two link-cable registers (SB at 0xFF01, SC at
// 0xFF02) purely as a pass-through sink: there is no real link partner in
// this core, so a transfer request (writing 0x81 to SC) immediately
// "completes" by appending the pending byte to an accumulated output log.
// This is exactly the convention Blargg's test ROMs rely on to publish a
// textual pass/fail report with no hardware attached.
type SerialPort struct {
	sb     byte
	sc     byte
	output []byte
}

func NewSerialPort() *SerialPort {
	return &SerialPort{}
}

func (s *SerialPort) Reset() {
	s.sb = 0
	s.sc = 0
	s.output = nil
}

func (s *SerialPort) SB() byte { return s.sb }
func (s *SerialPort) SetSB(v byte) {
	s.sb = v
}

func (s *SerialPort) SC() byte { return s.sc }

// SetSC writes the control register. Writing 0x81 (transfer start, internal
// clock) immediately publishes the pending SB byte and clears the transfer
// bit back to 0, since no external clock ever arrives to hold it high.
func (s *SerialPort) SetSC(v byte) {
	s.sc = v
	if v == 0x81 {
		s.output = append(s.output, s.sb)
		s.sc &^= 0x80
	}
}

// Output returns every byte published so far, in order.
func (s *SerialPort) Output() string {
	return string(s.output)
}
