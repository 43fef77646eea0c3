package pipeline

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of load-use stall cycles.
	Stalls uint64
	// Flushes is the number of taken branches that flushed the front end.
	Flushes uint64
	// DataHazards is the number of cycles in which an operand was forwarded.
	DataHazards uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxCycles bounds Run to at most n cycles. Zero means unlimited.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// WithHook attaches a hook that is invoked at the end of every cycle.
func WithHook(hook sim.Hook) PipelineOption {
	return func(p *Pipeline) {
		p.AcceptHook(hook)
	}
}

// Pipeline implements a 5-stage in-order pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	sim.HookableBase

	// Pipeline registers
	ifid  IFIDRegister
	idex  IDEXRegister
	exmem EXMEMRegister
	memwb MEMWBRegister

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Hazard detection
	hazardUnit *HazardUnit

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	// Program counter, as an instruction index
	pc int

	maxCycles    uint64
	limitReached bool

	stats     Statistics
	lastTrace CycleTrace
}

// NewPipeline creates a new 5-stage pipeline for the given program. The
// register file and memory are shared with the caller, which reads the final
// state after the run.
func NewPipeline(
	program []insts.Instruction,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetchStage:     NewFetchStage(insts.Renumber(program)),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
		memory:         memory,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PC returns the index of the next instruction to fetch.
func (p *Pipeline) PC() int {
	return p.pc
}

// SetPC sets the program counter.
func (p *Pipeline) SetPC(pc int) {
	p.pc = pc
}

// GetIFID returns the IF/ID pipeline register.
func (p *Pipeline) GetIFID() *IFIDRegister {
	return &p.ifid
}

// GetIDEX returns the ID/EX pipeline register.
func (p *Pipeline) GetIDEX() *IDEXRegister {
	return &p.idex
}

// GetEXMEM returns the EX/MEM pipeline register.
func (p *Pipeline) GetEXMEM() *EXMEMRegister {
	return &p.exmem
}

// GetMEMWB returns the MEM/WB pipeline register.
func (p *Pipeline) GetMEMWB() *MEMWBRegister {
	return &p.memwb
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// RegFile returns the register file the pipeline writes back to.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// Memory returns the data memory the pipeline loads from and stores to.
func (p *Pipeline) Memory() *emu.Memory {
	return p.memory
}

// LastTrace returns the trace of the most recent cycle.
func (p *Pipeline) LastTrace() CycleTrace {
	return p.lastTrace
}

// LimitReached returns true if Run stopped on the cycle limit rather than
// because the program drained.
func (p *Pipeline) LimitReached() bool {
	return p.limitReached
}

// Done returns true when there is nothing left to fetch and every pipeline
// register holds a bubble.
func (p *Pipeline) Done() bool {
	fetchDone := p.pc < 0 || p.pc >= p.fetchStage.Len()
	return fetchDone &&
		!p.ifid.Valid && !p.idex.Valid && !p.exmem.Valid && !p.memwb.Valid
}

// Run executes the pipeline until it drains or the cycle limit is hit.
func (p *Pipeline) Run() Statistics {
	for !p.Done() {
		if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
			p.limitReached = true
			break
		}
		p.Tick()
	}
	return p.stats
}

// RunCycles executes the pipeline for the specified number of cycles.
// Returns true if still running, false if done.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.Done(); i++ {
		p.Tick()
	}
	return !p.Done()
}

// Tick executes one pipeline cycle.
//
// Every stage computes its next pipeline register from the current ones and
// the new values are latched together at the end of the cycle. Stages are
// evaluated in reverse order (WB→MEM→EX→ID→IF). Writeback updates the
// register file before Decode reads it, so a value written back this cycle is
// visible to the instruction being decoded.
//
// Hazard handling:
//   - Forwarding from EX/MEM, then MEM/WB, into the operands of EX
//   - One-cycle load-use stall with a bubble inserted into ID/EX
//   - A taken branch redirects the PC and squashes the instruction in IF/ID
func (p *Pipeline) Tick() {
	if p.Done() {
		return
	}

	p.stats.Cycles++

	// Hazards are detected on the current snapshot.
	forwarding := p.hazardUnit.DetectForwarding(&p.idex, &p.exmem, &p.memwb)
	if forwarding.Any() {
		p.stats.DataHazards++
	}
	loadUseHazard := p.hazardUnit.DetectLoadUseHazard(&p.idex, &p.ifid)

	// Stage 5: Writeback
	retired := p.writebackStage.Writeback(&p.memwb)
	if retired {
		p.stats.Instructions++
	}

	// Stage 4: Memory
	var nextMEMWB MEMWBRegister
	if p.exmem.Valid {
		memResult := p.memoryStage.Access(&p.exmem)
		nextMEMWB = MEMWBRegister{
			Valid:     true,
			Inst:      p.exmem.Inst,
			ALUResult: p.exmem.ALUResult,
			MemData:   memResult.MemData,
		}
	}

	// Stage 3: Execute
	var nextEXMEM EXMEMRegister
	if p.idex.Valid {
		rsValue := p.hazardUnit.GetForwardedValue(
			forwarding.ForwardRs, p.idex.RsValue, &p.exmem, &p.memwb)
		rtValue := p.hazardUnit.GetForwardedValue(
			forwarding.ForwardRt, p.idex.RtValue, &p.exmem, &p.memwb)

		execResult := p.executeStage.Execute(&p.idex, rsValue, rtValue)

		nextEXMEM = EXMEMRegister{
			Valid:        true,
			Inst:         p.idex.Inst,
			ALUResult:    execResult.ALUResult,
			StoreValue:   execResult.StoreValue,
			BranchTaken:  execResult.BranchTaken,
			BranchTarget: execResult.BranchTarget,
		}
	}

	stallResult := p.hazardUnit.ComputeStalls(loadUseHazard, nextEXMEM.BranchTaken)

	// Stage 2: Decode
	var nextIDEX IDEXRegister
	if !stallResult.InsertBubbleEX {
		nextIDEX = p.decodeStage.Decode(&p.ifid)
	}

	// Stage 1: Fetch
	var nextIFID IFIDRegister
	var fetched StageSlot
	switch {
	case stallResult.FlushIF:
		p.pc = nextEXMEM.BranchTarget
	case stallResult.StallIF:
		nextIFID = p.ifid
		p.stats.Stalls++
	default:
		if inst, ok := p.fetchStage.Fetch(p.pc); ok {
			nextIFID = IFIDRegister{Valid: true, Inst: inst}
			fetched = StageSlot{Valid: true, Inst: inst}
			p.pc++
		}
	}

	var flushed StageSlot
	if stallResult.FlushID {
		flushed = StageSlot{Valid: nextIDEX.Valid, Inst: nextIDEX.Inst}
		nextIDEX.Clear()
		p.stats.Flushes++
	}

	trace := CycleTrace{
		Cycle:        p.stats.Cycles,
		Fetch:        fetched,
		Decode:       StageSlot{Valid: p.ifid.Valid, Inst: p.ifid.Inst},
		Execute:      StageSlot{Valid: p.idex.Valid, Inst: p.idex.Inst},
		Memory:       StageSlot{Valid: p.exmem.Valid, Inst: p.exmem.Inst},
		Writeback:    StageSlot{Valid: p.memwb.Valid, Inst: p.memwb.Inst},
		Stall:        loadUseHazard,
		BranchTaken:  nextEXMEM.BranchTaken,
		BranchTarget: nextEXMEM.BranchTarget,
		Flushed:      flushed,
		Retired:      retired,
		Forwarding:   forwarding,
	}

	p.ifid = nextIFID
	p.idex = nextIDEX
	p.exmem = nextEXMEM
	p.memwb = nextMEMWB

	p.lastTrace = trace
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosCycle,
		Item:   trace,
	})
}

// Reset clears the pipeline registers, program counter and statistics. The
// register file and memory are left untouched.
func (p *Pipeline) Reset() {
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.pc = 0
	p.stats = Statistics{}
	p.limitReached = false
	p.lastTrace = CycleTrace{}
}
