// Command benchmark runs the pipeline timing benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results as a JSON report
//	-core        Run only the core benchmark subset
//	-max-cycles  Cycle limit per benchmark
//	-v           Print the per-cycle trace of every benchmark
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/p5sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	coreOnly := flag.Bool("core", false, "Run only the core benchmark subset")
	maxCycles := flag.Uint64("max-cycles", benchmarks.DefaultConfig().MaxCycles,
		"Cycle limit per benchmark (0 = unlimited)")
	verbose := flag.Bool("v", false, "Print the per-cycle trace of every benchmark")
	flag.Parse()

	if *csvOutput && *jsonOutput {
		logrus.Error("-csv and -json are mutually exclusive")
		os.Exit(1)
	}

	config := benchmarks.DefaultConfig()
	config.MaxCycles = *maxCycles
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("Pipeline Timing Benchmark Harness")
		fmt.Println("=================================")
		fmt.Printf("Max cycles: %d\n", config.MaxCycles)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *csvOutput:
		harness.PrintCSV(results)
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			logrus.WithError(err).Error("failed to write report")
			os.Exit(1)
		}
	default:
		harness.PrintResults(results)
	}

	failed := 0
	for _, r := range results {
		if !r.Valid {
			logrus.WithFields(logrus.Fields{
				"benchmark": r.Name,
				"reason":    r.ValidationError,
			}).Error("benchmark failed validation")
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
