// Package views holds the state machines behind the directory screens:
// carousel, detail sections, reviews, admin form and admin table. They
// are driven by the api client and never touch transport details.
package views

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "idle"
	}
}

// ErrSuperseded is returned to a run whose result was dropped because a
// newer run started after it.
var ErrSuperseded = errors.New("superseded by a newer load")

type Snapshot[T any] struct {
	State State
	Value T
	Err   error
}

// Async tracks one dependency-bound load. Every Run bumps the generation
// and cancels the previous context; a completion only lands when its
// generation is still the current one.
type Async[T any] struct {
	mu     sync.Mutex
	snap   Snapshot[T]
	gen    uint64
	cancel context.CancelFunc
}

// Run starts a new load and waits for it.
func (a *Async[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) error {
	return a.RunApply(ctx, fn, nil)
}

// RunApply is Run with a hook that receives the value only when the run is
// still current; it is called with the Async locked.
func (a *Async[T]) RunApply(ctx context.Context, fn func(context.Context) (T, error), apply func(T)) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	gen := a.gen
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.snap.State = Loading
	a.snap.Err = nil
	a.mu.Unlock()

	v, err := fn(runCtx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return ErrSuperseded
	}
	cancel()
	a.cancel = nil
	if err != nil {
		a.snap = Snapshot[T]{State: Errored, Err: err}
		return err
	}
	a.snap = Snapshot[T]{State: Ready, Value: v}
	if apply != nil {
		apply(v)
	}
	return nil
}

// Cancel aborts the in-flight run, if any; its result will be dropped.
func (a *Async[T]) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
	if a.snap.State == Loading {
		a.snap.State = Idle
	}
}

func (a *Async[T]) Snapshot() Snapshot[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// Update mutates the ready value in place (local splices after a mutation).
func (a *Async[T]) Update(fn func(T) T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Value = fn(a.snap.Value)
}
