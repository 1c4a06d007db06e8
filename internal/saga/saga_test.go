package saga

import (
	"context"
	"errors"
	"testing"
)

func TestRunAllStepsSucceed(t *testing.T) {
	var order []string
	err := Run(context.Background(), nil,
		Step{Name: "first", Do: func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		}},
		Step{Name: "second", Do: func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected execution order %v", order)
	}
}

func TestRunCompensatesInReverseOnFailure(t *testing.T) {
	boom := errors.New("boom")
	var compensated []string

	err := Run(context.Background(), nil,
		Step{
			Name: "a",
			Do:   func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated = append(compensated, "a")
				return nil
			},
		},
		Step{
			Name: "b",
			Do:   func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensated = append(compensated, "b")
				return nil
			},
		},
		Step{Name: "c", Do: func(ctx context.Context) error { return boom }},
	)

	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped step error, got %v", err)
	}
	if len(compensated) != 2 || compensated[0] != "b" || compensated[1] != "a" {
		t.Fatalf("expected reverse compensation [b a], got %v", compensated)
	}
}

func TestRunFailedCompensationDoesNotMaskStepError(t *testing.T) {
	boom := errors.New("insert failed")
	err := Run(context.Background(), nil,
		Step{
			Name:       "insert",
			Do:         func(ctx context.Context) error { return nil },
			Compensate: func(ctx context.Context) error { return errors.New("rollback failed") },
		},
		Step{Name: "options", Do: func(ctx context.Context) error { return boom }},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected original step error, got %v", err)
	}
}
