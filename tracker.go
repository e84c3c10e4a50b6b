package mdpipe

import (
	"context"
	"sync"
)

// tracker counts outstanding tasks of one pipeline subtree.
//
// A tracker holds one count on its parent while its own count is non-zero,
// so a parent reaches zero only once every descendant has. The first error
// recorded anywhere propagates to the root and wakes every waiter.
type tracker struct {
	parent *tracker

	mu      sync.Mutex
	n       int
	err     error
	changed chan struct{}
}

func newTracker(parent *tracker) *tracker {
	return &tracker{parent: parent, changed: make(chan struct{})}
}

// add registers one pending task. The parent is counted before add
// returns, so no ancestor can reach zero in between. Locks are taken
// child first, then parent.
func (t *tracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++
	if t.n == 1 && t.parent != nil {
		t.parent.add()
	}
}

// done settles one pending task. A non-nil err fails the whole chain up to
// the root; only the first error is kept.
func (t *tracker) done(err error) {
	if err != nil {
		t.fail(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		t.notifyLocked()
		if t.parent != nil {
			t.parent.done(nil)
		}
	}
}

func (t *tracker) fail(err error) {
	for tr := t; tr != nil; tr = tr.parent {
		tr.mu.Lock()
		if tr.err == nil {
			tr.err = err
			tr.notifyLocked()
		}
		tr.mu.Unlock()
	}
}

// notifyLocked wakes every current waiter. Callers hold t.mu.
func (t *tracker) notifyLocked() {
	close(t.changed)
	t.changed = make(chan struct{})
}

// wait blocks until the count is zero or an error was recorded.
// Tasks added while waiting are awaited too.
func (t *tracker) wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		err, n, changed := t.err, t.n, t.changed
		t.mu.Unlock()

		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *tracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}
