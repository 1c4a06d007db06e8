package saga

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one unit of a multi-write workflow that has no surrounding
// transaction. Compensate undoes Do and may be nil for the final step.
type Step struct {
	Name       string
	Do         func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Run executes steps in order. When a step fails, the compensations of all
// previously completed steps run in reverse order and the step's error is
// returned. A failed compensation cannot be recovered from here, so it is
// logged at error level with the step name for operator follow-up.
func Run(ctx context.Context, logger *slog.Logger, steps ...Step) error {
	if logger == nil {
		logger = slog.Default()
	}

	done := make([]Step, 0, len(steps))
	for _, step := range steps {
		if err := step.Do(ctx); err != nil {
			compensate(ctx, logger, done)
			return fmt.Errorf("saga step %q: %w", step.Name, err)
		}
		done = append(done, step)
	}
	return nil
}

func compensate(ctx context.Context, logger *slog.Logger, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			logger.Error("saga compensation failed, manual cleanup required",
				"step", step.Name,
				"error", err,
			)
		}
	}
}
