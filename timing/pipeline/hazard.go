package pipeline

// ForwardSource indicates where a forwarded value should come from.
type ForwardSource int

const (
	// ForwardNone means no forwarding needed - use the latched decode value.
	ForwardNone ForwardSource = iota
	// ForwardFromEXMEM means forward from EX/MEM pipeline register.
	ForwardFromEXMEM
	// ForwardFromMEMWB means forward from MEM/WB pipeline register.
	ForwardFromMEMWB
)

// String returns a short name for the source.
func (f ForwardSource) String() string {
	switch f {
	case ForwardFromEXMEM:
		return "EX/MEM"
	case ForwardFromMEMWB:
		return "MEM/WB"
	default:
		return "none"
	}
}

// ForwardingResult contains forwarding decisions for both source operands.
type ForwardingResult struct {
	// ForwardRs specifies the forwarding source for the Rs operand.
	ForwardRs ForwardSource
	// ForwardRt specifies the forwarding source for the Rt operand.
	ForwardRt ForwardSource
}

// Any returns true if either operand is forwarded.
func (r ForwardingResult) Any() bool {
	return r.ForwardRs != ForwardNone || r.ForwardRt != ForwardNone
}

// StallResult contains stall and flush control signals.
type StallResult struct {
	// StallIF indicates the IF stage should stall (hold PC and IF/ID).
	StallIF bool
	// InsertBubbleEX indicates a bubble should be inserted into ID/EX.
	InsertBubbleEX bool
	// FlushIF indicates the IF/ID register should be flushed (taken branch).
	FlushIF bool
	// FlushID indicates the ID/EX register should be flushed (taken branch).
	FlushID bool
}

// HazardUnit detects data hazards and determines forwarding/stall signals.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectForwarding determines if forwarding is needed for the instruction in
// ID/EX. It checks each source register the instruction actually reads
// against the destination of the instructions in EX/MEM and MEM/WB.
func (h *HazardUnit) DetectForwarding(
	idex *IDEXRegister,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardingResult {
	result := ForwardingResult{
		ForwardRs: ForwardNone,
		ForwardRt: ForwardNone,
	}

	if !idex.Valid {
		return result
	}

	if idex.Inst.UsesRs() {
		result.ForwardRs = h.detectForwardForReg(idex.Inst.Rs, exmem, memwb)
	}

	if idex.Inst.UsesRt() {
		result.ForwardRt = h.detectForwardForReg(idex.Inst.Rt, exmem, memwb)
	}

	return result
}

// detectForwardForReg checks if a specific register needs forwarding.
func (h *HazardUnit) detectForwardForReg(
	reg uint8,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) ForwardSource {
	// r0 always reads as 0, no need to forward
	if reg == 0 {
		return ForwardNone
	}

	// Priority: EX/MEM has precedence over MEM/WB (more recent value).
	// A load in EX/MEM has no data yet; the load-use stall covers that case.
	if exmem.HasALUResult() && exmem.Inst.DestReg() == reg {
		return ForwardFromEXMEM
	}

	if memwb.RegWrite() && memwb.Inst.DestReg() == reg {
		return ForwardFromMEMWB
	}

	return ForwardNone
}

// DetectLoadUseHazard detects load-use hazards where the load in ID/EX is
// immediately followed by an instruction in IF/ID that reads the loaded
// register. The value is not available until after MEM, so the dependent
// instruction must wait one cycle.
func (h *HazardUnit) DetectLoadUseHazard(idex *IDEXRegister, ifid *IFIDRegister) bool {
	if !idex.IsLoad() || !ifid.Valid {
		return false
	}

	loadRd := idex.Inst.DestReg()
	if loadRd == 0 {
		return false
	}

	return ifid.Inst.Reads(loadRd)
}

// ComputeStalls computes stall and flush signals based on hazard conditions.
func (h *HazardUnit) ComputeStalls(loadUseHazard bool, branchTaken bool) StallResult {
	result := StallResult{}

	// Load-use hazard: hold IF/ID and PC, insert bubble in EX
	if loadUseHazard {
		result.StallIF = true
		result.InsertBubbleEX = true
	}

	// Branch taken: flush IF and ID (kill fetched/decoded wrong-path work)
	if branchTaken {
		result.FlushIF = true
		result.FlushID = true
	}

	return result
}

// GetForwardedValue returns the value to use based on forwarding decision.
func (h *HazardUnit) GetForwardedValue(
	forward ForwardSource,
	originalValue int32,
	exmem *EXMEMRegister,
	memwb *MEMWBRegister,
) int32 {
	switch forward {
	case ForwardFromEXMEM:
		return exmem.ALUResult
	case ForwardFromMEMWB:
		return memwb.Result()
	default:
		return originalValue
	}
}
