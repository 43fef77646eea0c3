package trace

import (
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/p5sim/timing/core"
)

// ReportAddresses are the memory words always shown in a report.
var ReportAddresses = []int32{0, 4, 8, 12}

// reportRegs is how many low registers are always shown.
const reportRegs = 8

// WriteReport prints the end-of-run summary: cycle and retirement counts,
// CPI, registers r0-r7 plus any other non-zero register, and the memory
// words at ReportAddresses plus any other written address.
func WriteReport(w io.Writer, result core.Result) error {
	ew := &errWriter{w: w}

	ew.printf("Done.\n")
	if result.LimitReached {
		ew.printf("Stopped: cycle limit reached\n")
	}
	ew.printf("Cycles: %d\n", result.Cycles)
	ew.printf("Retired (non-bubble): %d\n", result.Instructions)
	if result.Instructions > 0 {
		ew.printf("CPI: %.3f\n", result.CPI)
	}
	ew.printf("Stalls: %d\n", result.Stalls)
	ew.printf("Flushes: %d\n", result.Flushes)

	ew.printf("\nFinal regs (r0..r%d):\n", reportRegs-1)
	for i := 0; i < reportRegs; i++ {
		ew.printf("r%d = %d\n", i, result.Registers[i])
	}
	for i := reportRegs; i < len(result.Registers); i++ {
		if result.Registers[i] != 0 {
			ew.printf("r%d = %d\n", i, result.Registers[i])
		}
	}

	ew.printf("\nFinal mem (addresses 0,4,8,12):\n")
	shown := make(map[int32]bool, len(ReportAddresses))
	for _, a := range ReportAddresses {
		ew.printf("[%d] = %d\n", a, result.Memory[a])
		shown[a] = true
	}

	var others []int32
	for a := range result.Memory {
		if !shown[a] {
			others = append(others, a)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	for _, a := range others {
		ew.printf("[%d] = %d\n", a, result.Memory[a])
	}

	return ew.err
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
