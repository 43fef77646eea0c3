package benchmarks

import (
	"fmt"

	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific pipeline behavior.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUseChain(),
		memorySequential(),
		branchTaken(),
		mixedOperations(),
		countdownLoop(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick
// validation: a loop, a load-use chain and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		loadUseChain(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - independent ALU operations, no hazards
func arithmeticSequential() Benchmark {
	prog := make([]insts.Instruction, 0, 20)
	for i := 0; i < 4; i++ {
		for rd := uint8(1); rd <= 5; rd++ {
			prog = append(prog, Add(rd, rd, 9))
		}
	}

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 ADDs, reuse distance 5 - measures ideal throughput",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(9, 1) // r9 = 1
		},
		Program: BuildProgram(prog...),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			for rd := uint8(1); rd <= 5; rd++ {
				if err := expectReg(regFile, rd, 4); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// 2. Dependency Chain - back-to-back RAW hazards resolved from EX/MEM
func dependencyChain() Benchmark {
	prog := make([]insts.Instruction, 20)
	for i := range prog {
		prog[i] = Add(1, 1, 9) // r1 = r1 + 1
	}

	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDs (r1 = r1 + 1) - measures forwarding",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(9, 1)
		},
		Program: BuildProgram(prog...),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			return expectReg(regFile, 1, 20)
		},
	}
}

// 3. Load-Use Chain - every load is consumed by the next instruction
func loadUseChain() Benchmark {
	prog := make([]insts.Instruction, 0, 10)
	for i := int32(0); i < 5; i++ {
		prog = append(prog,
			Lw(1, 0, 4*i), // r1 = mem[4i]
			Add(2, 2, 1),  // r2 += r1
		)
	}

	return Benchmark{
		Name:        "load_use_chain",
		Description: "5 LW/ADD pairs - one load-use stall per pair",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			memory.Load(map[int32]int32{0: 1, 4: 2, 8: 3, 12: 4, 16: 5})
		},
		Program: BuildProgram(prog...),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			return expectReg(regFile, 2, 15)
		},
	}
}

// 4. Memory Sequential - stores followed by loads of the same words
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "4 SW then 4 LW to consecutive words - measures memory path",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(1, 11)
			regFile.WriteReg(2, 22)
			regFile.WriteReg(3, 33)
			regFile.WriteReg(4, 44)
			regFile.WriteReg(10, 100) // base
		},
		Program: BuildProgram(
			Sw(1, 10, 0),
			Sw(2, 10, 4),
			Sw(3, 10, 8),
			Sw(4, 10, 12),
			Lw(5, 10, 0),
			Lw(6, 10, 4),
			Lw(7, 10, 8),
			Lw(8, 10, 12),
		),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			for i, want := range []int32{11, 22, 33, 44} {
				addr := int32(100 + 4*i)
				if got := memory.Read(addr); got != want {
					return fmt.Errorf("mem[%d] = %d, want %d", addr, got, want)
				}
				if err := expectReg(regFile, uint8(5+i), want); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// 5. Branch Taken - every branch is taken and skips one instruction
func branchTaken() Benchmark {
	prog := make([]insts.Instruction, 0, 11)
	for i := 0; i < 5; i++ {
		prog = append(prog,
			Beq(0, 0, 1), // always taken, skip next
			Add(1, 1, 9), // never executed
		)
	}
	prog = append(prog, Add(2, 2, 9))

	return Benchmark{
		Name:        "branch_taken",
		Description: "5 taken BEQs each skipping an ADD - measures flush penalty",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(9, 1)
		},
		Program: BuildProgram(prog...),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if err := expectReg(regFile, 1, 0); err != nil {
				return err
			}
			return expectReg(regFile, 2, 1)
		},
	}
}

// 6. Mixed Operations - loads, ALU, stores with a load-use hazard
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "LW/ADD/SUB/SW mix - realistic hazard pattern",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			memory.Load(map[int32]int32{0: 10, 4: 3})
		},
		Program: BuildProgram(
			Lw(1, 0, 0),  // r1 = 10
			Lw(2, 0, 4),  // r2 = 3
			Add(3, 1, 2), // r3 = 13, stalls on r2
			Sub(4, 3, 2), // r4 = 10
			Sw(4, 0, 8),  // mem[8] = 10
			Sw(3, 0, 12), // mem[12] = 13
			Sub(5, 4, 3), // r5 = -3
		),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if err := expectReg(regFile, 3, 13); err != nil {
				return err
			}
			if err := expectReg(regFile, 4, 10); err != nil {
				return err
			}
			if err := expectReg(regFile, 5, -3); err != nil {
				return err
			}
			if got := memory.Read(8); got != 10 {
				return fmt.Errorf("mem[8] = %d, want 10", got)
			}
			if got := memory.Read(12); got != 13 {
				return fmt.Errorf("mem[12] = %d, want 13", got)
			}
			return nil
		},
	}
}

// 7. Countdown Loop - a counted loop with a backward branch
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "10-iteration loop (r1 counts down) - measures loop overhead",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(1, 10)
			regFile.WriteReg(9, 1)
		},
		// loop: r1--, r2++, exit when r1 == 0, else back to loop
		Program: BuildProgram(
			Sub(1, 1, 9),
			Add(2, 2, 9),
			Beq(1, 0, 1),
			Beq(0, 0, -4),
			Nop(),
		),
		Validate: func(regFile *emu.RegFile, memory *emu.Memory) error {
			if err := expectReg(regFile, 1, 0); err != nil {
				return err
			}
			return expectReg(regFile, 2, 10)
		},
	}
}

func expectReg(regFile *emu.RegFile, reg uint8, want int32) error {
	if got := regFile.ReadReg(reg); got != want {
		return fmt.Errorf("r%d = %d, want %d", reg, got, want)
	}
	return nil
}
