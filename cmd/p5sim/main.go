// Package main provides the entry point for p5sim, a cycle-accurate
// simulator of a classic 5-stage in-order pipeline.
//
// Usage:
//
//	p5sim [flags] <program.asm>
//
// The program is run to completion, printing the pipeline occupancy of every
// cycle followed by a summary of the final architectural state.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/p5sim/loader"
	"github.com/sarchlab/p5sim/timing/config"
	"github.com/sarchlab/p5sim/timing/core"
	"github.com/sarchlab/p5sim/timing/pipeline"
	"github.com/sarchlab/p5sim/timing/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("p5sim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to simulation configuration JSON file")
	printTrace := fs.Bool("trace", true, "Print the per-cycle pipeline trace")
	noTrace := fs.Bool("no-trace", false, "Do not print the per-cycle pipeline trace")
	showFetch := fs.Bool("fetch", false, "Include the fetched instruction in the trace")
	csvPath := fs.String("csv", "", "Write the per-cycle trace table to this CSV file")
	maxCycles := fs.Uint64("max-cycles", 0, "Stop after this many cycles (0 = unlimited)")
	verbose := fs.Bool("v", false, "Verbose output (debug log of every cycle)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: p5sim [options] <program.asm>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}

	logger := logrus.New()
	logger.Out = stderr
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	programPath := fs.Arg(0)

	cfg := config.DefaultSimConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.WithError(err).Error("failed to load config")
			return 1
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["trace"] {
		cfg.PrintTrace = *printTrace
	}
	if *noTrace {
		cfg.PrintTrace = false
	}
	if set["max-cycles"] {
		cfg.MaxCycles = *maxCycles
	}
	if set["csv"] {
		cfg.TraceCSV = *csvPath
	}

	prog, err := loader.LoadProgram(programPath)
	if err != nil {
		logger.WithError(err).Error("failed to load program")
		return 1
	}

	logger.WithFields(logrus.Fields{
		"program":      programPath,
		"instructions": len(prog),
		"max_cycles":   cfg.MaxCycles,
	}).Debug("loaded")

	var opts []pipeline.PipelineOption
	if cfg.PrintTrace {
		var printerOpts []trace.PrinterOption
		if *showFetch {
			printerOpts = append(printerOpts, trace.WithFetch())
		}
		opts = append(opts, pipeline.WithHook(trace.NewPrinter(stdout, printerOpts...)))
	}

	var recorder *trace.Recorder
	if cfg.TraceCSV != "" {
		recorder = trace.NewRecorder()
		opts = append(opts, pipeline.WithHook(recorder))
	}

	if *verbose {
		opts = append(opts, pipeline.WithHook(trace.NewLogHook(logger)))
	}

	c, err := core.NewCoreFromConfig(prog, cfg, opts...)
	if err != nil {
		logger.WithError(err).Error("failed to initialize state")
		return 1
	}

	result := c.Run()

	if recorder != nil {
		if err := recorder.SaveCSV(cfg.TraceCSV); err != nil {
			logger.WithError(err).Error("failed to save trace")
			return 1
		}
		logger.WithField("path", cfg.TraceCSV).Debug("trace saved")
	}

	if err := trace.WriteReport(stdout, result); err != nil {
		logger.WithError(err).Error("failed to write report")
		return 1
	}

	return 0
}
