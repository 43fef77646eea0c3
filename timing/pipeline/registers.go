// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import "github.com/sarchlab/p5sim/insts"

// IFIDRegister holds state between Fetch and Decode stages.
type IFIDRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// Inst is the fetched instruction.
	Inst insts.Instruction
}

// Clear resets the IF/ID register to empty state.
func (r *IFIDRegister) Clear() {
	*r = IFIDRegister{}
}

// IDEXRegister holds state between Decode and Execute stages.
type IDEXRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// Inst is the decoded instruction.
	Inst insts.Instruction

	// Register values read from the register file at decode.
	RsValue int32
	RtValue int32
}

// Clear resets the ID/EX register to empty state.
func (r *IDEXRegister) Clear() {
	*r = IDEXRegister{}
}

// IsLoad returns true if the register holds a load.
func (r *IDEXRegister) IsLoad() bool {
	return r.Valid && r.Inst.IsLoad()
}

// EXMEMRegister holds state between Execute and Memory stages.
type EXMEMRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// Inst is the executing instruction.
	Inst insts.Instruction

	// ALU result (address for load/store, result for ADD/SUB).
	ALUResult int32

	// Value to store for store instructions.
	StoreValue int32

	// Branch outcome for BEQ.
	BranchTaken  bool
	BranchTarget int
}

// Clear resets the EX/MEM register to empty state.
func (r *EXMEMRegister) Clear() {
	*r = EXMEMRegister{}
}

// HasALUResult returns true if the register holds a register-writing
// instruction whose result is already known. A load's data is not.
func (r *EXMEMRegister) HasALUResult() bool {
	return r.Valid && r.Inst.WritesReg() && !r.Inst.IsLoad()
}

// MEMWBRegister holds state between Memory and Writeback stages.
type MEMWBRegister struct {
	// Valid indicates if this pipeline register contains valid data.
	Valid bool

	// Inst is the instruction.
	Inst insts.Instruction

	// ALU result (for ALU instructions).
	ALUResult int32

	// Data read from memory (for load instructions).
	MemData int32
}

// Clear resets the MEM/WB register to empty state.
func (r *MEMWBRegister) Clear() {
	*r = MEMWBRegister{}
}

// RegWrite returns true if the register holds a register-writing instruction.
func (r *MEMWBRegister) RegWrite() bool {
	return r.Valid && r.Inst.WritesReg()
}

// Result returns the value this instruction writes back: memory data for
// loads, the ALU result otherwise.
func (r *MEMWBRegister) Result() int32 {
	if !r.Valid {
		return 0
	}
	if r.Inst.IsLoad() {
		return r.MemData
	}
	return r.ALUResult
}
