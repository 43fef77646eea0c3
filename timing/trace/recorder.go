package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/p5sim/timing/pipeline"
)

// Recorder keeps every cycle trace and exports them as a table with one row
// per cycle.
type Recorder struct {
	traces []pipeline.CycleTrace
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Func records the cycle carried by ctx.
func (r *Recorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycle {
		return
	}

	if t, ok := ctx.Item.(pipeline.CycleTrace); ok {
		r.traces = append(r.traces, t)
	}
}

// Traces returns the recorded cycles in order.
func (r *Recorder) Traces() []pipeline.CycleTrace {
	return r.traces
}

// Len returns the number of recorded cycles.
func (r *Recorder) Len() int {
	return len(r.traces)
}

// Reset drops all recorded cycles.
func (r *Recorder) Reset() {
	r.traces = nil
}

func boolCell(b bool) interface{} {
	if b {
		return int64(1)
	}
	return int64(0)
}

// DataFrame builds the trace table. Columns: cycle, if, id, ex, mem, wb,
// stall, branch_taken, branch_target (empty unless taken), flushed, retired,
// fwd_rs, fwd_rt.
func (r *Recorder) DataFrame() *dataframe.DataFrame {
	n := len(r.traces)
	init := &dataframe.SeriesInit{Capacity: n}

	cycle := dataframe.NewSeriesInt64("cycle", init)
	stages := make([]*dataframe.SeriesString, len(pipeline.StageNames))
	for i, name := range pipeline.StageNames {
		stages[i] = dataframe.NewSeriesString(strings.ToLower(name), init)
	}
	stall := dataframe.NewSeriesInt64("stall", init)
	taken := dataframe.NewSeriesInt64("branch_taken", init)
	target := dataframe.NewSeriesInt64("branch_target", init)
	flushed := dataframe.NewSeriesString("flushed", init)
	retired := dataframe.NewSeriesInt64("retired", init)
	fwdRs := dataframe.NewSeriesString("fwd_rs", init)
	fwdRt := dataframe.NewSeriesString("fwd_rt", init)

	for _, t := range r.traces {
		cycle.Append(int64(t.Cycle))
		for i, slot := range t.Slots() {
			stages[i].Append(slot.String())
		}
		stall.Append(boolCell(t.Stall))
		taken.Append(boolCell(t.BranchTaken))
		if t.BranchTaken {
			target.Append(int64(t.BranchTarget))
		} else {
			target.Append(nil)
		}
		flushed.Append(t.Flushed.String())
		retired.Append(boolCell(t.Retired))
		fwdRs.Append(t.Forwarding.ForwardRs.String())
		fwdRt.Append(t.Forwarding.ForwardRt.String())
	}

	series := []dataframe.Series{cycle}
	for _, s := range stages {
		series = append(series, s)
	}
	series = append(series, stall, taken, target, flushed, retired, fwdRs, fwdRt)

	return dataframe.NewDataFrame(series...)
}

// WriteCSV writes the trace table as CSV. Empty cells are written as empty
// strings.
func (r *Recorder) WriteCSV(w io.Writer) error {
	err := exports.ExportToCSV(context.Background(), w, r.DataFrame(),
		exports.CSVExportOptions{Separator: ',', NullString: &emptyCell})
	if err != nil {
		return fmt.Errorf("failed to export trace: %w", err)
	}
	return nil
}

// SaveCSV writes the trace table to a CSV file.
func (r *Recorder) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer file.Close()

	return r.WriteCSV(file)
}

var emptyCell = ""
