package services

import (
	"context"
	"time"

	"github.com/lclrke/dawa-dashboard/internal/observability"
	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

// SagaStep is one forward action with its compensation. Undo may be nil
// when the step leaves nothing behind.
type SagaStep struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// runSaga executes steps in order. When step k fails, the Undo of every
// completed step k-1..0 runs in reverse. Undo failures are logged and the
// original error from step k is returned unchanged.
func runSaga(ctx context.Context, log *logger.Logger, pipeline string, steps []SagaStep) error {
	for i, step := range steps {
		start := time.Now()
		err := step.Do(ctx)
		if err == nil {
			observability.Current().ObserveStage(pipeline, step.Name, "ok", time.Since(start))
			continue
		}
		observability.Current().ObserveStage(pipeline, step.Name, "failed", time.Since(start))
		log.Warn("Saga step failed, compensating",
			"pipeline", pipeline,
			"step", step.Name,
			"completed_steps", i,
			"error", err,
		)
		compensate(ctx, log, pipeline, steps[:i])
		return err
	}
	return nil
}

func compensate(ctx context.Context, log *logger.Logger, pipeline string, done []SagaStep) {
	// cleanup must run even when the request context is already gone
	undoCtx := context.WithoutCancel(ctx)
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(undoCtx); err != nil {
			observability.Current().IncCompensation(step.Name, "failed")
			log.Error("Saga compensation failed",
				"pipeline", pipeline,
				"step", step.Name,
				"error", err,
			)
			continue
		}
		observability.Current().IncCompensation(step.Name, "ok")
	}
}
