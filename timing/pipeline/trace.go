package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/p5sim/insts"
)

// HookPosCycle marks the end of a pipeline cycle. Hooks invoked at this
// position receive a CycleTrace as the item.
var HookPosCycle = &sim.HookPos{Name: "Cycle"}

// EmptySlot is how an empty stage is displayed.
const EmptySlot = "—"

// StageSlot is the occupant of one pipeline stage during a cycle.
type StageSlot struct {
	Valid bool
	Inst  insts.Instruction
}

// String returns the instruction text, or EmptySlot.
func (s StageSlot) String() string {
	if !s.Valid {
		return EmptySlot
	}
	return s.Inst.String()
}

// CycleTrace describes what the pipeline did in one cycle.
// Decode, Execute, Memory and Writeback hold the instructions that were
// in those stages during the cycle. Fetch holds the instruction fetched.
type CycleTrace struct {
	Cycle uint64

	Fetch     StageSlot
	Decode    StageSlot
	Execute   StageSlot
	Memory    StageSlot
	Writeback StageSlot

	// Stall is set when a load-use hazard held fetch and inserted a bubble.
	Stall bool

	// BranchTaken is set when a branch resolved taken; BranchTarget is the
	// new program counter and Flushed the discarded wrong-path instruction.
	BranchTaken  bool
	BranchTarget int
	Flushed      StageSlot

	// Retired is set when the Writeback occupant completed.
	Retired bool

	// Forwarding records the operand bypass used by the Execute occupant.
	Forwarding ForwardingResult
}

// Slots returns the stage occupants in pipeline order (IF, ID, EX, MEM, WB).
func (t CycleTrace) Slots() [5]StageSlot {
	return [5]StageSlot{t.Fetch, t.Decode, t.Execute, t.Memory, t.Writeback}
}

// StageNames are the labels of the slots returned by CycleTrace.Slots.
var StageNames = [5]string{"IF", "ID", "EX", "MEM", "WB"}
