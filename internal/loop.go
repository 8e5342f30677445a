package internal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is already running.
	ErrLoopAlreadyRunning = errors.New("loop: already running")

	// ErrCallbackPanic wraps a panic raised by a callback posted to the loop.
	ErrCallbackPanic = errors.New("loop: callback panicked")
)

// EventLoop is the host the scheduler yields to. Post queues a macrotask;
// PostAfter queues one once d has elapsed and returns a function cancelling
// it.
type EventLoop interface {
	Post(fn func())
	PostAfter(d time.Duration, fn func()) (cancel func())
}

// Loop runs posted callbacks one after another on the goroutine calling Run.
//
// Post and PostAfter are safe to call from any goroutine. Everything the
// callbacks touch is owned by the Run goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	buffer  []func() // swapped with queue on each drain
	wake    chan struct{}
	running atomic.Bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) PostAfter(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})

	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Run processes callbacks until ctx is done or a callback panics, in which
// case the panic is returned as an error wrapping ErrCallbackPanic.
func (l *Loop) Run(ctx context.Context) (err error) {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer l.running.Store(false)
	defer releaseRuntime()

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrCallbackPanic, e)
			} else {
				err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
			}
		}
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = l.buffer[:0]
		l.mu.Unlock()

		for i, fn := range batch {
			fn()
			batch[i] = nil
		}
		l.buffer = batch

		l.mu.Lock()
		idle := len(l.queue) == 0
		l.mu.Unlock()
		if !idle {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// ManualLoop queues callbacks until the owner runs them. Timers fire
// against the given clock.
type ManualLoop struct {
	clock  Clock
	queue  []func()
	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func NewManualLoop(clock Clock) *ManualLoop {
	return &ManualLoop{clock: clock}
}

func (l *ManualLoop) Post(fn func()) {
	l.queue = append(l.queue, fn)
}

func (l *ManualLoop) PostAfter(d time.Duration, fn func()) func() {
	l.seq++
	t := &manualTimer{due: l.now() + d, seq: l.seq, fn: fn}
	l.timers = append(l.timers, t)
	return func() { t.cancelled = true }
}

func (l *ManualLoop) now() time.Duration {
	if fc, ok := l.clock.(*FakeClock); ok {
		return fc.Peek()
	}
	return l.clock.Now()
}

// Pending returns the number of callbacks ready to run.
func (l *ManualLoop) Pending() int {
	l.fireTimers()
	return len(l.queue)
}

// RunOnce runs the oldest ready callback and reports whether one ran.
func (l *ManualLoop) RunOnce() bool {
	l.fireTimers()
	if len(l.queue) == 0 {
		return false
	}

	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	fn()

	return true
}

// RunUntilIdle runs ready callbacks, including ones they post, until none
// are left. Timers that are not yet due stay queued.
func (l *ManualLoop) RunUntilIdle() {
	for l.RunOnce() {
	}
}

// Drain runs everything, moving a FakeClock forward to each pending timer.
func (l *ManualLoop) Drain() {
	for {
		l.RunUntilIdle()

		t := l.nextTimer()
		if t == nil {
			return
		}
		fc, ok := l.clock.(*FakeClock)
		if !ok {
			return
		}
		if now := fc.Peek(); t.due > now {
			fc.Advance(t.due - now)
		}
	}
}

func (l *ManualLoop) nextTimer() *manualTimer {
	var next *manualTimer
	for _, t := range l.timers {
		if t.cancelled {
			continue
		}
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (l *ManualLoop) fireTimers() {
	if len(l.timers) == 0 {
		return
	}

	now := l.now()
	var due, rest []*manualTimer
	for _, t := range l.timers {
		switch {
		case t.cancelled:
		case t.due <= now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	l.timers = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		l.queue = append(l.queue, t.fn)
	}
}
