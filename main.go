// Package main provides the entry point for p5sim.
// p5sim is a cycle-accurate model of a classic 5-stage in-order pipeline
// with forwarding, load-use stalls and branch flushes, built on Akita hooks.
//
// For the full CLI, use: go run ./cmd/p5sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("p5sim - 5-stage pipeline simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: p5sim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to simulation configuration JSON file")
	fmt.Println("  -no-trace    Do not print the per-cycle pipeline trace")
	fmt.Println("  -csv         Export the per-cycle trace table as CSV")
	fmt.Println("  -max-cycles  Stop after this many cycles")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/p5sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/p5sim' instead.")
	}
}
