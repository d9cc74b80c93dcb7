package state

import (
	"context"
	"sync"
)

// Runtime executes units of work against the journaled world. Top level units are
// serialised; a call made from inside a running unit (a re-entrant callback) joins it
// as a nested frame.
type Runtime struct {
	mu      sync.Mutex
	journal *Journal

	// commit orders the hooks of committed units without holding mu
	commit sync.Mutex
}

type frameKey struct{}

// Frame is the unit of work carried by the context of a running operation.
type Frame struct {
	runtime  *Runtime
	depth    int
	onCommit []func()
}

func NewRuntime(journal *Journal) *Runtime {
	if journal == nil {
		journal = NewJournal()
	}
	return &Runtime{journal: journal}
}

func (r *Runtime) Journal() *Journal {
	return r.journal
}

func FrameFrom(ctx context.Context) (*Frame, bool) {
	f, ok := ctx.Value(frameKey{}).(*Frame)
	return f, ok
}

// Depth is 1 for the outermost frame and grows with every re-entrant call.
func (f *Frame) Depth() int {
	return f.depth
}

// Execute runs fn as one all-or-nothing unit. If fn fails or panics every mutation it
// made is reverted. Hooks registered with OnCommit run once the outermost unit succeeds,
// after the world is unlocked and in commit order. A hook must not wait on another
// unit of work.
func (r *Runtime) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if f, ok := FrameFrom(ctx); ok && f.runtime == r {
		return r.nested(ctx, f, fn)
	}

	hooks, err := r.run(ctx, fn)
	if err != nil {
		return err
	}
	defer r.commit.Unlock()

	for _, hook := range hooks {
		hook()
	}

	return nil
}

// run executes the outermost frame under mu. On success it returns holding commit, taken
// before mu is released so the next unit cannot overtake these hooks.
func (r *Runtime) run(ctx context.Context, fn func(ctx context.Context) error) ([]func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := &Frame{runtime: r}
	err := r.nested(context.WithValue(ctx, frameKey{}, f), f, fn)
	r.journal.Reset()
	if err != nil {
		return nil, err
	}

	r.commit.Lock()
	return f.onCommit, nil
}

func (r *Runtime) nested(ctx context.Context, f *Frame, fn func(ctx context.Context) error) (err error) {
	snapshot := r.journal.Snapshot()
	hooks := len(f.onCommit)
	f.depth++

	defer func() {
		f.depth--
		if p := recover(); p != nil {
			r.revert(f, snapshot, hooks)
			panic(p)
		}
		if err != nil {
			r.revert(f, snapshot, hooks)
		}
	}()

	return fn(ctx)
}

func (r *Runtime) revert(f *Frame, snapshot, hooks int) {
	r.journal.RevertTo(snapshot)
	f.onCommit = f.onCommit[:hooks]
}

// Read runs fn with the world locked, or directly when called from inside a unit of work.
func (r *Runtime) Read(ctx context.Context, fn func()) {
	if f, ok := FrameFrom(ctx); ok && f.runtime == r {
		fn()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// OnCommit defers hook until the unit of work in ctx commits. It is dropped if the
// frame that registered it is reverted. Without a unit of work the hook runs now.
func OnCommit(ctx context.Context, hook func()) {
	if f, ok := FrameFrom(ctx); ok {
		f.onCommit = append(f.onCommit, hook)
		return
	}
	hook()
}
