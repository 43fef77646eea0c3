// Package trace provides consumers of the per-cycle pipeline trace. Each
// consumer is an akita hook attached to a pipeline at HookPosCycle.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/p5sim/timing/pipeline"
)

// Printer writes a human-readable block for every cycle.
type Printer struct {
	w         io.Writer
	showFetch bool
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithFetch adds an IF line showing the instruction fetched in the cycle.
func WithFetch() PrinterOption {
	return func(p *Printer) {
		p.showFetch = true
	}
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{w: w}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Func prints the cycle carried by ctx.
func (p *Printer) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycle {
		return
	}

	t, ok := ctx.Item.(pipeline.CycleTrace)
	if !ok {
		return
	}

	_, _ = io.WriteString(p.w, p.Format(t))
}

// Format renders one cycle, followed by a blank line.
func (p *Printer) Format(t pipeline.CycleTrace) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Cycle %d:\n", t.Cycle)
	if p.showFetch {
		writeStage(&b, "IF", t.Fetch)
	}
	writeStage(&b, "ID", t.Decode)
	writeStage(&b, "EX", t.Execute)
	writeStage(&b, "MEM", t.Memory)
	writeStage(&b, "WB", t.Writeback)

	if t.Stall {
		b.WriteString("  [stall] load-use hazard -> bubble inserted\n")
	}
	if t.BranchTaken {
		fmt.Fprintf(&b, "  [branch taken] PC <- %d (flush IF/ID)\n", t.BranchTarget)
	}
	b.WriteString("\n")

	return b.String()
}

func writeStage(b *strings.Builder, label string, slot pipeline.StageSlot) {
	fmt.Fprintf(b, "  %3s : %s\n", label, slot)
}
