package photosync

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"golang.org/x/sync/errgroup"
)

// Op is the kind of request a task performs.
type Op string

const (
	OpUpload Op = "upload"
	OpDelete Op = "delete"
)

// Task is one request of a batch. Key identifies the item the outcome is
// applied to. Do returns an optional result handed to Sink.Succeeded.
type Task struct {
	Key string
	Op  Op
	Do  func(ctx context.Context) (any, error)
}

// Sink receives outcomes. Calls are serialized per batch.
type Sink interface {
	Succeeded(t Task, result any)
	Failed(t Task, e *ItemError)
	// FirstFailure is called once, before the first Failed of a submission.
	FirstFailure()
	// AuthLost is called once per submission, on the first 401.
	AuthLost(ctx context.Context, err error)
}

// Report summarizes a submission.
type Report struct {
	State     State
	Succeeded int
	Failed    int
	AuthLost  bool
}

// Batch tracks the state of a photo batch across submissions.
type Batch struct {
	limit int

	mu    sync.Mutex
	state State
}

// NewBatch returns an Idle batch running at most limit requests at once.
// A non-positive limit means no bound.
func NewBatch(limit int) *Batch {
	return &Batch{limit: limit}
}

// State returns the current state.
func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Submit runs tasks and blocks until every one has settled. An empty task
// list completes the batch immediately.
func (b *Batch) Submit(ctx context.Context, tasks []Task, sink Sink) (Report, error) {
	b.mu.Lock()
	switch b.state {
	case Submitting:
		b.mu.Unlock()
		return Report{State: Submitting}, ErrInFlight
	case Complete:
		b.mu.Unlock()
		return Report{State: Complete}, ErrComplete
	}
	b.state = Submitting
	b.mu.Unlock()

	var (
		mu        sync.Mutex
		report    Report
		authLost  bool
		anyFailed bool
	)

	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}

	for _, t := range tasks {
		g.Go(func() error {
			res, err := t.Do(ctx)

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				report.Succeeded++
				sink.Succeeded(t, res)
				return nil
			}

			report.Failed++
			if !anyFailed {
				anyFailed = true
				sink.FirstFailure()
			}
			ie := Classify(t.Op, err, authLost)
			if !authLost && client.IsUnauthorized(err) {
				authLost = true
				report.AuthLost = true
				sink.AuthLost(ctx, err)
			}
			sink.Failed(t, ie)
			return nil
		})
	}
	_ = g.Wait()

	final := Complete
	if report.Failed > 0 {
		final = PartiallyFailed
	}

	b.mu.Lock()
	b.state = final
	b.mu.Unlock()

	report.State = final
	return report, nil
}
