package progress

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Gateway is the I/O boundary the model depends on. Implementations talk to
// the query/mutation backend and the closing message service.
type Gateway interface {
	// LoadAll fetches every phase and task.
	LoadAll(ctx context.Context) (Snapshot, error)
	// SetTaskCompletion persists a task's completion flag.
	SetTaskCompletion(ctx context.Context, taskID string, isCompleted bool) (Ack, error)
	// FetchClosingMessage fetches the congratulatory message shown once every
	// task is complete.
	FetchClosingMessage(ctx context.Context) (string, error)
}

// Effect is deferred gateway I/O produced by a model operation. The owner of
// the model decides where and when it runs and feeds the Outcome back through
// Model.Apply.
type Effect interface {
	effect()
}

// PersistCompletion asks the gateway to store a task's completion flag. Its
// outcome is logged and never reconciled against local state.
type PersistCompletion struct {
	TaskID      string
	IsCompleted bool
}

// FetchClosingMessage asks the gateway for the closing message.
type FetchClosingMessage struct{}

func (PersistCompletion) effect()   {}
func (FetchClosingMessage) effect() {}

// Outcome is the result of performing one Effect.
type Outcome struct {
	Effect  Effect
	Ack     Ack
	Message string
	Err     error
}

// Perform runs a single effect against gw.
func Perform(ctx context.Context, gw Gateway, e Effect) Outcome {
	switch e := e.(type) {
	case PersistCompletion:
		ack, err := gw.SetTaskCompletion(ctx, e.TaskID, e.IsCompleted)
		return Outcome{Effect: e, Ack: ack, Err: err}
	case FetchClosingMessage:
		msg, err := gw.FetchClosingMessage(ctx)
		return Outcome{Effect: e, Message: msg, Err: err}
	default:
		return Outcome{Effect: e, Err: fmt.Errorf("performing effect: unsupported type %T", e)}
	}
}

// PerformAll runs effects concurrently, at most limit at a time (limit <= 0
// means unbounded), and returns their outcomes in the same order as effects.
// Per-effect failures are reported in the outcomes; the returned error is
// non-nil only when ctx is cancelled before every effect started.
//
// Effects for the same task are not sequenced against each other.
func PerformAll(ctx context.Context, gw Gateway, effects []Effect, limit int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(effects))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, e := range effects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Effect: e, Err: err}
				return err
			}
			outcomes[i] = Perform(gctx, gw, e)
			// Per-effect errors must not cancel the siblings.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, fmt.Errorf("performing effects: %w", err)
	}
	return outcomes, nil
}
