// Package benchmarks provides timing benchmark infrastructure for the
// pipeline model.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
	"github.com/sarchlab/p5sim/timing/core"
	"github.com/sarchlab/p5sim/timing/pipeline"
	"github.com/sarchlab/p5sim/timing/trace"
)

// Version is reported in JSON benchmark reports.
const Version = "0.1.0"

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of load-use stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of cycles an operand was forwarded
	DataHazards uint64 `json:"data_hazards"`

	// PipelineFlushes is the number of taken-branch flushes
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// LimitReached is set when the run hit the cycle limit
	LimitReached bool `json:"limit_reached,omitempty"`

	// Valid reports whether the final state passed the benchmark's check
	Valid bool `json:"valid"`

	// ValidationError explains a failed check
	ValidationError string `json:"validation_error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the architectural state (registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the instruction sequence to execute
	Program []insts.Instruction

	// Validate checks the final state. Nil means always valid.
	Validate func(regFile *emu.RegFile, memory *emu.Memory) error
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// MaxCycles bounds each run. 0 means unlimited.
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose prints the per-cycle trace of every run
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		MaxCycles: 100000,
		Output:    os.Stdout,
		Verbose:   false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark on fresh state.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}

	opts := []pipeline.PipelineOption{pipeline.WithMaxCycles(h.config.MaxCycles)}
	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "--- %s ---\n", bench.Name)
		opts = append(opts, pipeline.WithHook(trace.NewPrinter(h.config.Output)))
	}

	c := core.NewCore(bench.Program, regFile, memory, opts...)

	start := time.Now()
	res := c.Run()
	wallTime := time.Since(start)

	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     res.Cycles,
		InstructionsRetired: res.Instructions,
		CPI:                 res.CPI,
		StallCycles:         res.Stalls,
		DataHazards:         res.Forwards,
		PipelineFlushes:     res.Flushes,
		LimitReached:        res.LimitReached,
		Valid:               true,
		WallTime:            wallTime,
	}

	var err error
	if res.LimitReached {
		err = fmt.Errorf("cycle limit %d reached", h.config.MaxCycles)
	} else if bench.Validate != nil {
		err = bench.Validate(regFile, memory)
	}
	if err != nil {
		result.Valid = false
		result.ValidationError = err.Error()
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Pipeline Timing Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Valid {
			_, _ = fmt.Fprintln(h.config.Output, "  Result: OK")
		} else {
			_, _ = fmt.Fprintf(h.config.Output, "  Result: FAIL (%s)\n", r.ValidationError)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,data_hazards,flushes,valid")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.DataHazards,
			r.PipelineFlushes,
			r.Valid,
		)
	}
}

// BuildProgram numbers instructions by their position.
func BuildProgram(prog ...insts.Instruction) []insts.Instruction {
	return insts.Renumber(prog)
}

// Instruction helpers

// Add builds ADD rd, rs, rt.
func Add(rd, rs, rt uint8) insts.Instruction {
	return insts.Instruction{Op: insts.OpADD, Rd: rd, Rs: rs, Rt: rt}
}

// Sub builds SUB rd, rs, rt.
func Sub(rd, rs, rt uint8) insts.Instruction {
	return insts.Instruction{Op: insts.OpSUB, Rd: rd, Rs: rs, Rt: rt}
}

// Lw builds LW rt, imm(rs).
func Lw(rt, rs uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpLW, Rt: rt, Rs: rs, Imm: imm}
}

// Sw builds SW rt, imm(rs).
func Sw(rt, rs uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpSW, Rt: rt, Rs: rs, Imm: imm}
}

// Beq builds BEQ rs, rt, imm. The target is index+1+imm.
func Beq(rs, rt uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpBEQ, Rs: rs, Rt: rt, Imm: imm}
}

// Nop builds NOP.
func Nop() insts.Instruction {
	return insts.Nop(0)
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Config describes the benchmark configuration
	Config BenchmarkConfig `json:"config"`
}

// BenchmarkConfig describes the harness configuration used.
type BenchmarkConfig struct {
	MaxCycles uint64 `json:"max_cycles"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Failed is the number of benchmarks whose final state was wrong
	Failed int `json:"failed"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	failed := 0
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
		if !r.Valid {
			failed++
		}
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Config: BenchmarkConfig{
				MaxCycles: h.config.MaxCycles,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			Failed:            failed,
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
