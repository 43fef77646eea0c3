package pipeline

import (
	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
)

// FetchStage handles instruction fetch from the program store.
type FetchStage struct {
	program []insts.Instruction
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(program []insts.Instruction) *FetchStage {
	return &FetchStage{
		program: program,
	}
}

// Fetch returns the instruction at the given index. It reports false when
// pc is outside the program.
func (s *FetchStage) Fetch(pc int) (insts.Instruction, bool) {
	if pc < 0 || pc >= len(s.program) {
		return insts.Instruction{}, false
	}
	return s.program[pc], true
}

// Len returns the program length.
func (s *FetchStage) Len() int {
	return len(s.program)
}

// DecodeStage handles instruction decode and register read.
type DecodeStage struct {
	regFile *emu.RegFile
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
	}
}

// Decode reads both source registers for the instruction in IF/ID.
func (s *DecodeStage) Decode(ifid *IFIDRegister) IDEXRegister {
	if !ifid.Valid {
		return IDEXRegister{}
	}

	return IDEXRegister{
		Valid:   true,
		Inst:    ifid.Inst,
		RsValue: s.regFile.ReadReg(ifid.Inst.Rs),
		RtValue: s.regFile.ReadReg(ifid.Inst.Rt),
	}
}

// ExecuteStage handles ALU operations, address calculation and branch
// resolution.
type ExecuteStage struct{}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{}
}

// ExecuteResult holds the result of the execute stage.
type ExecuteResult struct {
	ALUResult  int32
	StoreValue int32

	// Branch result.
	BranchTaken  bool
	BranchTarget int
}

// Execute performs the operation of the instruction in ID/EX with already
// forwarded operand values.
func (s *ExecuteStage) Execute(idex *IDEXRegister, rsVal, rtVal int32) ExecuteResult {
	result := ExecuteResult{}
	inst := idex.Inst

	switch inst.Op {
	case insts.OpADD:
		result.ALUResult = rsVal + rtVal
	case insts.OpSUB:
		result.ALUResult = rsVal - rtVal
	case insts.OpLW, insts.OpSW:
		result.ALUResult = rsVal + insts.SignExtend16(inst.Imm)
		result.StoreValue = rtVal
	case insts.OpBEQ:
		result.BranchTarget = inst.BranchTarget()
		result.BranchTaken = rsVal == rtVal
	}

	return result
}

// MemoryStage handles memory load/store operations.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{
		memory: memory,
	}
}

// MemoryResult holds the result of the memory stage.
type MemoryResult struct {
	MemData int32
}

// Access performs memory read or write. Stores update memory immediately.
func (s *MemoryStage) Access(exmem *EXMEMRegister) MemoryResult {
	result := MemoryResult{}

	if !exmem.Valid {
		return result
	}

	switch exmem.Inst.Op {
	case insts.OpLW:
		result.MemData = s.memory.Read(exmem.ALUResult)
	case insts.OpSW:
		s.memory.Write(exmem.ALUResult, exmem.StoreValue)
	}

	return result
}

// WritebackStage handles register file writeback.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{
		regFile: regFile,
	}
}

// Writeback writes the result to the register file and reports whether an
// instruction retired. Writes to r0 are dropped by the register file.
func (s *WritebackStage) Writeback(memwb *MEMWBRegister) bool {
	if !memwb.Valid {
		return false
	}

	if memwb.Inst.WritesReg() {
		s.regFile.WriteReg(memwb.Inst.DestReg(), memwb.Result())
	}

	return true
}
