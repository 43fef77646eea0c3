// Package main provides accuracy validation for the pipeline model.
// Every benchmark is run on both the functional emulator and the timing
// pipeline, and the final architectural states must be identical.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/p5sim/benchmarks"
	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
	"github.com/sarchlab/p5sim/timing/core"
	"github.com/sarchlab/p5sim/timing/pipeline"
)

const maxSteps = 100000

// testAssemblyRoundTrip validates that the canonical text of every
// benchmark instruction parses back to the same instruction.
func testAssemblyRoundTrip(bench benchmarks.Benchmark) bool {
	for _, inst := range bench.Program {
		parsed, err := insts.Parse(inst.Canonical())
		if err != nil {
			fmt.Printf("❌ %s: %q does not parse: %v\n", bench.Name, inst.Canonical(), err)
			return false
		}

		got := parsed[0]
		if got.Op != inst.Op || got.Rd != inst.Rd || got.Rs != inst.Rs ||
			got.Rt != inst.Rt || got.Imm != inst.Imm {
			fmt.Printf("❌ %s: round trip mismatch\n", bench.Name)
			fmt.Printf("  built:  %+v\n", inst)
			fmt.Printf("  parsed: %+v\n", got)
			return false
		}
	}

	return true
}

// testPipelineExecution validates that the pipeline reaches the same final
// state as the emulator.
func testPipelineExecution(bench benchmarks.Benchmark) bool {
	refRegs := &emu.RegFile{}
	refMem := emu.NewMemory()
	pipeRegs := &emu.RegFile{}
	pipeMem := emu.NewMemory()

	if bench.Setup != nil {
		bench.Setup(refRegs, refMem)
		bench.Setup(pipeRegs, pipeMem)
	}

	emulator := emu.NewEmulator(bench.Program,
		emu.WithRegFile(refRegs),
		emu.WithMemory(refMem),
		emu.WithMaxInstructions(maxSteps),
	)
	if err := emulator.Run(); err != nil {
		fmt.Printf("❌ %s: emulator: %v\n", bench.Name, err)
		return false
	}

	c := core.NewCore(bench.Program, pipeRegs, pipeMem, pipeline.WithMaxCycles(maxSteps))
	result := c.Run()
	if result.LimitReached {
		fmt.Printf("❌ %s: pipeline hit the cycle limit\n", bench.Name)
		return false
	}

	if refRegs.Snapshot() != pipeRegs.Snapshot() {
		fmt.Printf("❌ %s: register mismatch\n", bench.Name)
		fmt.Printf("  emulator: %v\n", refRegs.Snapshot())
		fmt.Printf("  pipeline: %v\n", pipeRegs.Snapshot())
		return false
	}

	ref := refMem.Snapshot()
	got := pipeMem.Snapshot()
	if len(ref) != len(got) {
		fmt.Printf("❌ %s: memory mismatch: %d words vs %d words\n", bench.Name, len(ref), len(got))
		return false
	}
	for addr, want := range ref {
		if got[addr] != want {
			fmt.Printf("❌ %s: mem[%d] = %d, want %d\n", bench.Name, addr, got[addr], want)
			return false
		}
	}

	if emulator.InstructionCount() != result.Instructions {
		fmt.Printf("❌ %s: retired %d, emulator executed %d\n",
			bench.Name, result.Instructions, emulator.InstructionCount())
		return false
	}

	fmt.Printf("✅ %s: %d instructions, %d cycles (CPI %.3f)\n",
		bench.Name, result.Instructions, result.Cycles, result.CPI)
	return true
}

func main() {
	fmt.Println("Pipeline Accuracy Validation")
	fmt.Println("============================")

	ok := true
	for _, bench := range benchmarks.GetMicrobenchmarks() {
		if !testAssemblyRoundTrip(bench) || !testPipelineExecution(bench) {
			ok = false
		}
	}

	if !ok {
		fmt.Println("\n❌ Validation failed")
		os.Exit(1)
	}

	fmt.Println("\n✅ All validations passed")
}
