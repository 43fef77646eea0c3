// Package emu provides the architectural state and a functional reference
// emulator for the five-stage pipeline simulator.
package emu

import "github.com/sarchlab/p5sim/insts"

// RegFile represents the architectural register file.
// It contains 32 signed word registers. R[0] is the zero register which
// always reads as 0 and ignores writes.
type RegFile struct {
	// R holds registers r0-r31.
	R [insts.NumRegs]int32
}

// ReadReg reads a register value. Register 0 and out-of-range registers
// return 0.
func (r *RegFile) ReadReg(reg uint8) int32 {
	if reg == 0 || reg >= insts.NumRegs {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 or out-of-range
// registers are ignored.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	if reg == 0 || reg >= insts.NumRegs {
		return
	}
	r.R[reg] = value
}

// Snapshot returns a copy of all registers.
func (r *RegFile) Snapshot() [insts.NumRegs]int32 {
	return r.R
}

// Reset clears all registers.
func (r *RegFile) Reset() {
	r.R = [insts.NumRegs]int32{}
}
