package insts

import "fmt"

// NumRegs is the number of architectural registers. Register 0 always reads
// as zero.
const NumRegs = 32

// Op represents an operation kind.
type Op uint8

// Operation kinds.
const (
	OpNOP Op = iota
	OpADD
	OpSUB
	OpLW
	OpSW
	OpBEQ
)

var opNames = [...]string{
	OpNOP: "nop",
	OpADD: "add",
	OpSUB: "sub",
	OpLW:  "lw",
	OpSW:  "sw",
	OpBEQ: "beq",
}

// String returns the assembly mnemonic of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Instruction is a decoded instruction. It is created once when the program
// is loaded and never mutated afterwards.
type Instruction struct {
	Op Op // Operation kind

	Rd uint8 // Destination register (ADD, SUB)
	Rs uint8 // First source register, base register for LW/SW
	Rt uint8 // Second source register, LW destination, SW data

	// Imm is the raw immediate. LW/SW use it as a byte offset and BEQ as an
	// offset in instructions. It is sign-extended from 16 bits at execute.
	Imm int32

	// Index is the position in program order. It is the unit of the program
	// counter and the base of branch offsets.
	Index int

	// Text is the source text, used for display only.
	Text string
}

// Nop returns a no-op instruction at the given program index.
func Nop(index int) Instruction {
	return Instruction{Op: OpNOP, Index: index, Text: "nop"}
}

// IsNop reports whether the instruction is a no-op.
func (i Instruction) IsNop() bool {
	return i.Op == OpNOP
}

// WritesReg reports whether the instruction writes a register at writeback.
func (i Instruction) WritesReg() bool {
	return i.Op == OpADD || i.Op == OpSUB || i.Op == OpLW
}

// DestReg returns the register written at writeback, or 0 if none.
func (i Instruction) DestReg() uint8 {
	switch i.Op {
	case OpADD, OpSUB:
		return i.Rd
	case OpLW:
		return i.Rt
	default:
		return 0
	}
}

// UsesRs reports whether the instruction reads Rs.
func (i Instruction) UsesRs() bool {
	switch i.Op {
	case OpADD, OpSUB, OpLW, OpSW, OpBEQ:
		return true
	default:
		return false
	}
}

// UsesRt reports whether the instruction reads Rt. LW writes Rt rather than
// reading it.
func (i Instruction) UsesRt() bool {
	switch i.Op {
	case OpADD, OpSUB, OpSW, OpBEQ:
		return true
	default:
		return false
	}
}

// Reads reports whether the instruction reads register reg as a source.
func (i Instruction) Reads(reg uint8) bool {
	return (i.UsesRs() && i.Rs == reg) || (i.UsesRt() && i.Rt == reg)
}

// IsLoad reports whether the instruction is a load.
func (i Instruction) IsLoad() bool { return i.Op == OpLW }

// IsStore reports whether the instruction is a store.
func (i Instruction) IsStore() bool { return i.Op == OpSW }

// IsBranch reports whether the instruction is a branch.
func (i Instruction) IsBranch() bool { return i.Op == OpBEQ }

// String returns the source text if known, or a canonical rendering.
func (i Instruction) String() string {
	if i.Op == OpNOP {
		return "nop"
	}
	if i.Text != "" {
		return i.Text
	}
	return i.Canonical()
}

// Canonical renders the instruction in canonical assembly syntax.
func (i Instruction) Canonical() string {
	switch i.Op {
	case OpADD, OpSUB:
		return fmt.Sprintf("%s r%d, r%d, r%d", i.Op, i.Rd, i.Rs, i.Rt)
	case OpLW, OpSW:
		return fmt.Sprintf("%s r%d, %d(r%d)", i.Op, i.Rt, i.Imm, i.Rs)
	case OpBEQ:
		return fmt.Sprintf("beq r%d, r%d, %d", i.Rs, i.Rt, i.Imm)
	default:
		return "nop"
	}
}

// SignExtend16 sign-extends the low 16 bits of x.
func SignExtend16(x int32) int32 {
	return int32(int16(uint16(x)))
}

// BranchTarget returns the instruction index a taken BEQ jumps to.
func (i Instruction) BranchTarget() int {
	return i.Index + 1 + int(SignExtend16(i.Imm))
}

// Renumber returns a copy of prog with every Index set to its position.
func Renumber(prog []Instruction) []Instruction {
	out := make([]Instruction, len(prog))
	for i, inst := range prog {
		inst.Index = i
		out[i] = inst
	}
	return out
}
