package pane

import (
	"context"
	"log/slog"
	"sync"
)

// Lifecycle collects page cleanup callbacks and runs them once, newest
// first, when the page goes away.
type Lifecycle struct {
	mu        sync.Mutex
	cleanups  []func()
	destroyed bool
}

// NewLifecycle returns a live lifecycle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Add queues fn for teardown and returns it. After Destroy, fn runs
// immediately instead since no later teardown will happen.
func (l *Lifecycle) Add(fn func()) func() {
	if fn == nil {
		return nil
	}
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		runCleanup(fn)
		return fn
	}
	l.cleanups = append(l.cleanups, fn)
	l.mu.Unlock()
	return fn
}

// IsDestroyed reports whether Destroy has run.
func (l *Lifecycle) IsDestroyed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.destroyed
}

// Destroy runs every queued callback in reverse registration order. Later
// calls do nothing.
func (l *Lifecycle) Destroy() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	cleanups := l.cleanups
	l.cleanups = nil
	l.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		runCleanup(cleanups[i])
	}
}

// DestroyOnDone destroys the lifecycle when ctx ends, the server-side
// equivalent of the page being hidden. The callbacks run on another
// goroutine while holding guard, so an owner that holds guard around every
// use of the page never sees it torn down mid-operation. A nil guard is
// only safe when nothing else touches the page.
func (l *Lifecycle) DestroyOnDone(ctx context.Context, guard sync.Locker) {
	stop := context.AfterFunc(ctx, func() {
		if guard != nil {
			guard.Lock()
			defer guard.Unlock()
		}
		l.Destroy()
	})
	l.Add(func() { stop() })
}

func runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("cleanup failed", "panic", r)
		}
	}()
	fn()
}
