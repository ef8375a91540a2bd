// cpu_exec.go - CPU micro-tick dispatch: Decode/Execute/Fetch phase driver

package main

// Tick advances the CPU by exactly one T-cycle, driving bus as needed. The
// System is responsible for resolving whatever transaction the bus holds
// after this call returns; Tick only ever reads
// bus.Data() for a value the System placed there on a prior T-cycle.
func (c *CPU) Tick(bus *Bus) {
	switch c.phase {
	case PhaseFetch:
		if c.halted {
			return // stall in place until System calls Resume()
		}
		bus.Read(c.PC)
		c.PC++
		c.phase = PhaseDecode
		c.tick = 0
		if c.imeDelay > 0 {
			c.imeDelay--
			if c.imeDelay == 0 {
				c.IME = true
			}
		}
	case PhaseDecode:
		if c.tick == 0 {
			c.op = decode(bus.Data())
		} else {
			c.phase = PhaseExecute
		}
		c.tick++
	case PhaseExecute:
		local := c.tick - 2
		if local == 0 {
			c.beginExecute()
		}
		c.executeTick(bus, local)
		if c.finalLocal >= 0 && local == c.finalLocal {
			c.phase = PhaseFetch
		}
		c.tick++
	case PhaseInterrupt:
		c.interruptTick(bus, c.tick)
		if c.tick == 18 {
			c.phase = PhaseFetch
		}
		c.tick++
	}
}

// Resume wakes the CPU from HALT. The System calls this once IE&IF has a
// pending bit, regardless of IME — matching real hardware, where HALT exits
// on any pending interrupt but only services one when IME is also set.
func (c *CPU) Resume() {
	c.halted = false
	c.stopped = false
}

// EnterInterruptService diverts the CPU out of the fetch it just performed
// (undoing the speculative PC increment) and into a dispatch that pushes PC
// and jumps to vector; counting the T-cycle of that fetch, it lasts 5 M-cycles. Callers must only invoke this when phase is
// PhaseDecode with tick==0 (i.e. immediately after a Fetch completed) and
// clear the corresponding IF bit themselves.
func (c *CPU) EnterInterruptService(vector uint16) {
	c.PC--
	c.phase = PhaseInterrupt
	c.tick = 0
	c.intVector = vector
	c.IME = false
	c.halted = false
}

func (c *CPU) beginExecute() {
	switch c.op.Kind {
	case OpJRCC, OpJPCC, OpCALLCC, OpRETCC:
		c.branchTaken = c.evalCond(c.op.Cond)
		if c.branchTaken {
			c.finalLocal = c.op.Cycles - 4
		} else {
			c.finalLocal = c.op.CyclesNotTaken - 4
		}
	case OpPrefix:
		c.finalLocal = -1
	default:
		c.branchTaken = true
		c.finalLocal = c.op.Cycles - 4
	}
}

func (c *CPU) assertReadPC(bus *Bus) {
	bus.Read(c.PC)
	c.PC++
}

func (c *CPU) executeTick(bus *Bus, local int) {
	if c.op.Kind == OpPrefix {
		c.executePrefixTick(bus, local)
		return
	}
	c.executeGenericTick(bus, local)
}

func (c *CPU) interruptTick(bus *Bus, local int) {
	switch local {
	case 8:
		bus.Write(c.SP-1, byte(c.PC>>8))
	case 12:
		bus.Write(c.SP-2, byte(c.PC))
		c.SP -= 2
	case 16:
		c.PC = c.intVector
	}
}

func rotKindOf(kind OpKind) RotOp {
	switch kind {
	case OpRLCA:
		return RotRLC
	case OpRLA:
		return RotRL
	case OpRRCA:
		return RotRRC
	default:
		return RotRR
	}
}

// executeGenericTick implements the per-instruction timing skeletons of
// the decode table builds for every non-CB-prefixed opcode shape. Kind plus the
// decoded operand fields fully determine behaviour; no further bit
// inspection of the raw opcode byte is needed here.
func (c *CPU) executeGenericTick(bus *Bus, local int) {
	op := c.op
	switch op.Kind {
	case OpNOP:
	case OpSTOP:
		if local == 0 {
			c.halted = true
			c.stopped = true
		}
	case OpHALT:
		if local == 0 {
			c.halted = true
		}
	case OpDI:
		if local == 0 {
			c.IME = false
		}
	case OpEI:
		if local == 0 {
			c.imeDelay = 2
		}

	case OpLDRR:
		if local == 0 {
			c.setReg8(op.R1, c.getReg8(op.R2))
		}
	case OpLDRN:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.setReg8(op.R1, bus.Data())
		}
	case OpLDRHL:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.setReg8(op.R1, bus.Data())
		}
	case OpLDHLR:
		if local == 0 {
			bus.Write(c.HL(), c.getReg8(op.R1))
		}
	case OpLDHLN:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			bus.Write(c.HL(), c.tmpLo)
		}
	case OpLDA_BC:
		switch local {
		case 0:
			bus.Read(c.BC())
		case 2:
			c.A = bus.Data()
		}
	case OpLDA_DE:
		switch local {
		case 0:
			bus.Read(c.DE())
		case 2:
			c.A = bus.Data()
		}
	case OpLDBC_A:
		if local == 0 {
			bus.Write(c.BC(), c.A)
		}
	case OpLDDE_A:
		if local == 0 {
			bus.Write(c.DE(), c.A)
		}
	case OpLDA_NN:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.tmp16 = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		case 8:
			bus.Read(c.tmp16)
		case 10:
			c.A = bus.Data()
		}
	case OpLDNN_A:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.tmp16 = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		case 8:
			bus.Write(c.tmp16, c.A)
		}
	case OpLDHAN:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			bus.Read(0xFF00 | uint16(c.tmpLo))
		case 6:
			c.A = bus.Data()
		}
	case OpLDHNA:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			bus.Write(0xFF00|uint16(c.tmpLo), c.A)
		}
	case OpLDHAC:
		switch local {
		case 0:
			bus.Read(0xFF00 | uint16(c.C))
		case 2:
			c.A = bus.Data()
		}
	case OpLDHCA:
		if local == 0 {
			bus.Write(0xFF00|uint16(c.C), c.A)
		}
	case OpLDAHLI:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.A = bus.Data()
			c.SetHL(c.HL() + 1)
		}
	case OpLDHLIA:
		if local == 0 {
			bus.Write(c.HL(), c.A)
			c.SetHL(c.HL() + 1)
		}
	case OpLDAHLD:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.A = bus.Data()
			c.SetHL(c.HL() - 1)
		}
	case OpLDHLDA:
		if local == 0 {
			bus.Write(c.HL(), c.A)
			c.SetHL(c.HL() - 1)
		}

	case OpLDRRNN:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.setReg16(op.RR, uint16(c.tmpHi)<<8|uint16(c.tmpLo))
		}
	case OpLDNN_SP:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.tmp16 = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		case 8:
			bus.Write(c.tmp16, byte(c.SP))
		case 12:
			bus.Write(c.tmp16+1, byte(c.SP>>8))
		}
	case OpLDSPHL:
		if local == 0 {
			c.SP = c.HL()
		}
	case OpLDHLSPE:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.SetHL(c.addSPSigned(int8(c.tmpLo)))
		}
	case OpADDSPE:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.tmp16 = c.addSPSigned(int8(c.tmpLo))
		case 8:
			c.SP = c.tmp16
		}

	case OpPUSH:
		switch local {
		case 0:
			c.tmp16 = c.getStack16(op.Stack)
		case 4:
			bus.Write(c.SP-1, byte(c.tmp16>>8))
		case 8:
			bus.Write(c.SP-2, byte(c.tmp16))
			c.SP -= 2
		}
	case OpPOP:
		switch local {
		case 0:
			bus.Read(c.SP)
		case 2:
			c.tmpLo = bus.Data()
			c.SP++
		case 4:
			bus.Read(c.SP)
		case 6:
			c.tmpHi = bus.Data()
			c.SP++
			c.setStack16(op.Stack, uint16(c.tmpHi)<<8|uint16(c.tmpLo))
		}

	case OpALU_R:
		if local == 0 {
			c.aluOp(op.ALU, c.getReg8(op.R1))
		}
	case OpALU_N:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.aluOp(op.ALU, bus.Data())
		}
	case OpALU_HL:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.aluOp(op.ALU, bus.Data())
		}

	case OpINC_R:
		if local == 0 {
			c.incReg8(op.R1)
		}
	case OpDEC_R:
		if local == 0 {
			c.decReg8(op.R1)
		}
	case OpINC_RR:
		if local == 0 {
			c.setReg16(op.RR, c.getReg16(op.RR)+1)
		}
	case OpDEC_RR:
		if local == 0 {
			c.setReg16(op.RR, c.getReg16(op.RR)-1)
		}
	case OpINC_HL:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			bus.Write(c.HL(), c.incByte(c.tmpLo))
		}
	case OpDEC_HL:
		switch local {
		case 0:
			bus.Read(c.HL())
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			bus.Write(c.HL(), c.decByte(c.tmpLo))
		}

	case OpADD_HL_RR:
		if local == 0 {
			c.addHL(op.RR)
		}

	case OpRLCA, OpRLA, OpRRCA, OpRRA:
		if local == 0 {
			c.rotateA(rotKindOf(op.Kind))
		}
	case OpCPL:
		if local == 0 {
			c.A = ^c.A
			c.setFlag(FlagN, true)
			c.setFlag(FlagH, true)
		}
	case OpSCF:
		if local == 0 {
			c.setFlag(FlagN, false)
			c.setFlag(FlagH, false)
			c.setFlag(FlagC, true)
		}
	case OpCCF:
		if local == 0 {
			c.setFlag(FlagN, false)
			c.setFlag(FlagH, false)
			c.setFlag(FlagC, !c.flag(FlagC))
		}
	case OpDAA:
		if local == 0 {
			c.daa()
		}

	case OpJR:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.PC = uint16(int32(c.PC) + int32(int8(c.tmpLo)))
		}
	case OpJRCC:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			if c.branchTaken {
				c.PC = uint16(int32(c.PC) + int32(int8(c.tmpLo)))
			}
		}
	case OpJP:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
		case 8:
			c.PC = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		}
	case OpJPCC:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
		case 8:
			if c.branchTaken {
				c.PC = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
			}
		}
	case OpJPHL:
		if local == 0 {
			c.PC = c.HL()
		}
	case OpCALL:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.tmp16 = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		case 12:
			bus.Write(c.SP-1, byte(c.PC>>8))
		case 16:
			bus.Write(c.SP-2, byte(c.PC))
			c.SP -= 2
			c.PC = c.tmp16
		}
	case OpCALLCC:
		switch local {
		case 0:
			c.assertReadPC(bus)
		case 2:
			c.tmpLo = bus.Data()
		case 4:
			c.assertReadPC(bus)
		case 6:
			c.tmpHi = bus.Data()
			c.tmp16 = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		case 12:
			if c.branchTaken {
				bus.Write(c.SP-1, byte(c.PC>>8))
			}
		case 16:
			if c.branchTaken {
				bus.Write(c.SP-2, byte(c.PC))
				c.SP -= 2
				c.PC = c.tmp16
			}
		}
	case OpRET:
		switch local {
		case 0:
			bus.Read(c.SP)
		case 2:
			c.tmpLo = bus.Data()
			c.SP++
		case 4:
			bus.Read(c.SP)
		case 6:
			c.tmpHi = bus.Data()
			c.SP++
			c.PC = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		}
	case OpRETCC:
		switch local {
		case 4:
			if c.branchTaken {
				bus.Read(c.SP)
			}
		case 6:
			if c.branchTaken {
				c.tmpLo = bus.Data()
				c.SP++
			}
		case 8:
			if c.branchTaken {
				bus.Read(c.SP)
			}
		case 10:
			if c.branchTaken {
				c.tmpHi = bus.Data()
				c.SP++
				c.PC = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
			}
		}
	case OpRETI:
		switch local {
		case 0:
			c.IME = true
			bus.Read(c.SP)
		case 2:
			c.tmpLo = bus.Data()
			c.SP++
		case 4:
			bus.Read(c.SP)
		case 6:
			c.tmpHi = bus.Data()
			c.SP++
			c.PC = uint16(c.tmpHi)<<8 | uint16(c.tmpLo)
		}
	case OpRST:
		switch local {
		case 4:
			bus.Write(c.SP-1, byte(c.PC>>8))
		case 8:
			bus.Write(c.SP-2, byte(c.PC))
			c.SP -= 2
			c.PC = op.RST
		}
	}
}

// executePrefixTick handles the 0xCB escape: fetch the second byte, decode
// it via the secondary table, then run that descriptor's own body using the
// same tick counter (offset by the 4 ticks already spent fetching it).
func (c *CPU) executePrefixTick(bus *Bus, local int) {
	switch local {
	case 0:
		c.assertReadPC(bus)
		return
	case 2:
		cbByte := bus.Data()
		c.activeOp = decodePrefix(cbByte)
		c.finalLocal = c.activeOp.Cycles - 4
		return
	}
	if local < 4 {
		return
	}
	c.executeCBTick(bus, local)
}

func (c *CPU) executeCBTick(bus *Bus, local int) {
	op := c.activeOp
	switch op.Kind {
	case OpCB_ROT_R:
		if local == 4 {
			c.setReg8(op.R1, c.rotate(op.Rot, c.getReg8(op.R1)))
		}
	case OpCB_ROT_HL:
		switch local {
		case 4:
			bus.Read(c.HL())
		case 6:
			c.tmpLo = bus.Data()
		case 8:
			bus.Write(c.HL(), c.rotate(op.Rot, c.tmpLo))
		}
	case OpCB_BIT_R:
		if local == 4 {
			c.cbBitTest(c.getReg8(op.R1), op.Bit)
		}
	case OpCB_BIT_HL:
		switch local {
		case 4:
			bus.Read(c.HL())
		case 6:
			c.cbBitTest(bus.Data(), op.Bit)
		}
	case OpCB_RES_R:
		if local == 4 {
			c.setReg8(op.R1, c.getReg8(op.R1)&^(1<<uint(op.Bit)))
		}
	case OpCB_RES_HL:
		switch local {
		case 4:
			bus.Read(c.HL())
		case 6:
			c.tmpLo = bus.Data()
		case 8:
			bus.Write(c.HL(), c.tmpLo&^(1<<uint(op.Bit)))
		}
	case OpCB_SET_R:
		if local == 4 {
			c.setReg8(op.R1, c.getReg8(op.R1)|(1<<uint(op.Bit)))
		}
	case OpCB_SET_HL:
		switch local {
		case 4:
			bus.Read(c.HL())
		case 6:
			c.tmpLo = bus.Data()
		case 8:
			bus.Write(c.HL(), c.tmpLo|(1<<uint(op.Bit)))
		}
	}
}

// cbBitTest implements BIT b,x: Z is the complement of the tested bit, N
// clears, H sets, C is left untouched.
func (c *CPU) cbBitTest(v byte, bit int) {
	set := v&(1<<uint(bit)) != 0
	c.setFlag(FlagZ, !set)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, true)
}
