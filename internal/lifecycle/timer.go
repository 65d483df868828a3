package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
)

// Timer is the handle of one background task bound to a single match.
// Cancel is idempotent: the first call stops the task and reports true,
// every later call is a no-op reporting false.
type Timer struct {
	cancel  context.CancelFunc
	stopped atomic.Bool
}

// Start runs fn in its own goroutine with a context that is cancelled by
// Cancel or by the parent.
func Start(parent context.Context, fn func(ctx context.Context)) *Timer {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	t := &Timer{cancel: cancel}

	go func() {
		defer cancel()
		fn(ctx)
	}()

	return t
}

// Cancel stops the task. It reports whether this call did the stopping.
func (t *Timer) Cancel() bool {
	if t == nil || !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.cancel()
	return true
}

// Cancelled reports whether Cancel has been called. The task checks it
// under the owner's lock before every observable step.
func (t *Timer) Cancelled() bool {
	return t == nil || t.stopped.Load()
}

// Wait blocks for d on clock. It returns false if ctx ends first.
func Wait(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(d):
		return true
	}
}

// FormatRemaining renders d as M:SS, truncating to whole seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
