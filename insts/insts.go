// Package insts provides the instruction definitions and assembly parsing for
// the five-stage pipeline simulator.
//
// The instruction set is deliberately small:
//   - NOP: no operation
//   - ADD, SUB: register-register arithmetic (rd = rs op rt)
//   - LW, SW: word load/store with base+offset addressing (rt, imm(rs))
//   - BEQ: branch if equal, offset counted in instructions (rs, rt, imm)
//
// Usage:
//
//	prog, err := insts.Parse("lw r2, 0(r0)\nadd r3, r2, r2\n")
//	if err != nil {
//		// *insts.ParseError
//	}
//	fmt.Printf("Op: %v, Rt: %d, Rs: %d\n", prog[0].Op, prog[0].Rt, prog[0].Rs)
package insts
