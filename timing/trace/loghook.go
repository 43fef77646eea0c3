package trace

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/p5sim/timing/pipeline"
)

// LogHook logs every cycle at debug level.
type LogHook struct {
	logger logrus.FieldLogger
}

// NewLogHook creates a LogHook. A nil logger means the standard logger.
func NewLogHook(logger logrus.FieldLogger) *LogHook {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogHook{logger: logger}
}

// Func logs the cycle carried by ctx.
func (h *LogHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != pipeline.HookPosCycle {
		return
	}

	t, ok := ctx.Item.(pipeline.CycleTrace)
	if !ok {
		return
	}

	fields := logrus.Fields{
		"cycle": t.Cycle,
		"if":    t.Fetch.String(),
		"id":    t.Decode.String(),
		"ex":    t.Execute.String(),
		"mem":   t.Memory.String(),
		"wb":    t.Writeback.String(),
	}
	if t.Stall {
		fields["stall"] = true
	}
	if t.BranchTaken {
		fields["branch_target"] = t.BranchTarget
	}
	if t.Forwarding.Any() {
		fields["fwd_rs"] = t.Forwarding.ForwardRs.String()
		fields["fwd_rt"] = t.Forwarding.ForwardRt.String()
	}

	h.logger.WithFields(fields).Debug("cycle")
}
