package internal

import (
	"log/slog"
	"time"
)

// Priority is a scheduler priority level. Lower values are more urgent.
type Priority int

const (
	NoPriority Priority = iota
	ImmediatePriority
	UserBlockingPriority
	NormalPriority
	LowPriority
	IdlePriority
)

func (p Priority) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "none"
	}
}

// Callback is the unit of scheduled work. Returning a non-nil callback means
// the work is not finished: the task keeps its place in the queue and the
// returned callback is run when the scheduler gets back to it.
type Callback func(didTimeout bool) Callback

// Task is a scheduled callback.
type Task struct {
	id       uint64
	callback Callback
	priority Priority

	startTime      time.Duration
	expirationTime time.Duration
	sortIndex      time.Duration

	index int // position in its heap, -1 once popped
}

func (t *Task) ID() uint64                    { return t.id }
func (t *Task) Priority() Priority            { return t.priority }
func (t *Task) ExpirationTime() time.Duration { return t.expirationTime }

// Cancelled reports whether the task will not run anymore.
func (t *Task) Cancelled() bool { return t.callback == nil }

type TaskOption func(*taskOptions)

type taskOptions struct {
	delay time.Duration
}

// WithDelay postpones the task's start by d.
func WithDelay(d time.Duration) TaskOption {
	return func(o *taskOptions) { o.delay = d }
}

// Scheduler is a cooperative, time-sliced task queue. All of its methods
// must be called from the goroutine running its event loop.
type Scheduler struct {
	config SchedulerConfig
	clock  Clock
	loop   EventLoop
	logger *slog.Logger

	taskQueue  taskHeap // ready, by expiration time
	timerQueue taskHeap // delayed, by start time
	nextID     uint64

	currentTask     *Task
	currentPriority Priority

	isPerformingWork      bool
	hostCallbackScheduled bool
	messageLoopRunning    bool
	cancelHostTimeout     func()

	sliceStart time.Duration
}

type SchedulerOption func(*Scheduler)

func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

func WithSchedulerConfig(c SchedulerConfig) SchedulerOption {
	return func(s *Scheduler) { s.config = c }
}

func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(loop EventLoop, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		config:          DefaultConfig().Scheduler,
		loop:            loop,
		currentPriority: NormalPriority,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "scheduler")

	return s
}

func (s *Scheduler) Now() time.Duration { return s.clock.Now() }

// CurrentPriority is the priority of the running task, or of the innermost
// RunWithPriority call.
func (s *Scheduler) CurrentPriority() Priority { return s.currentPriority }

// RunWithPriority runs fn with the given priority as the current one.
func (s *Scheduler) RunWithPriority(p Priority, fn func()) {
	prev := s.currentPriority
	s.currentPriority = p
	defer func() { s.currentPriority = prev }()

	fn()
}

// ScheduleCallback queues cb at the given priority. Tasks with a delay wait
// in the delayed queue until their start time.
func (s *Scheduler) ScheduleCallback(p Priority, cb Callback, opts ...TaskOption) *Task {
	var o taskOptions
	for _, opt := range opts {
		opt(&o)
	}

	now := s.clock.Now()
	start := now
	if o.delay > 0 {
		start += o.delay
	}

	s.nextID++
	task := &Task{
		id:             s.nextID,
		callback:       cb,
		priority:       p,
		startTime:      start,
		expirationTime: start + s.config.Timeouts.timeout(p),
		index:          -1,
	}

	if start > now {
		task.sortIndex = start
		s.timerQueue.push(task)

		if s.taskQueue.peek() == nil && task == s.timerQueue.peek() {
			// the new task is now the earliest one to wake up for
			s.requestHostTimeout(start - now)
		}
		return task
	}

	task.sortIndex = task.expirationTime
	s.taskQueue.push(task)

	if !s.hostCallbackScheduled && !s.isPerformingWork {
		s.hostCallbackScheduled = true
		s.requestHostCallback()
	}

	return task
}

// CancelCallback drops the task's callback in place. The work loop skips it
// when it reaches the front of its queue.
func (s *Scheduler) CancelCallback(t *Task) {
	if t != nil {
		t.callback = nil
	}
}

// ShouldYield reports whether the current slice is used up.
func (s *Scheduler) ShouldYield() bool {
	return s.clock.Now()-s.sliceStart >= s.config.FrameInterval
}

// HasPendingWork reports whether any task, ready or delayed, is queued.
func (s *Scheduler) HasPendingWork() bool {
	return len(s.taskQueue) > 0 || len(s.timerQueue) > 0
}

func (s *Scheduler) requestHostCallback() {
	if s.messageLoopRunning {
		return
	}
	s.messageLoopRunning = true
	s.loop.Post(s.performWorkUntilDeadline)
}

func (s *Scheduler) requestHostTimeout(d time.Duration) {
	if s.cancelHostTimeout != nil {
		s.cancelHostTimeout()
	}
	s.cancelHostTimeout = s.loop.PostAfter(d, s.handleTimeout)
}

func (s *Scheduler) clearHostTimeout() {
	if s.cancelHostTimeout != nil {
		s.cancelHostTimeout()
		s.cancelHostTimeout = nil
	}
}

func (s *Scheduler) handleTimeout() {
	s.cancelHostTimeout = nil
	s.advanceTimers(s.clock.Now())

	if s.hostCallbackScheduled {
		return
	}
	if s.taskQueue.peek() != nil {
		s.hostCallbackScheduled = true
		s.requestHostCallback()
	} else if first := s.timerQueue.peek(); first != nil {
		s.requestHostTimeout(first.startTime - s.clock.Now())
	}
}

// performWorkUntilDeadline is one host macrotask: a single time slice.
func (s *Scheduler) performWorkUntilDeadline() {
	s.sliceStart = s.clock.Now()

	hasMoreWork := true
	defer func() {
		if hasMoreWork {
			s.logger.Debug("yielding to host", "ready", len(s.taskQueue))
			schedulerYields.Inc()
			s.loop.Post(s.performWorkUntilDeadline)
		} else {
			s.messageLoopRunning = false
		}
	}()

	hasMoreWork = s.flushWork(s.sliceStart)
}

func (s *Scheduler) flushWork(initialTime time.Duration) bool {
	s.hostCallbackScheduled = false
	s.clearHostTimeout()

	s.isPerformingWork = true
	prevPriority := s.currentPriority
	defer func() {
		s.currentTask = nil
		s.currentPriority = prevPriority
		s.isPerformingWork = false
	}()

	return s.workLoop(initialTime)
}

// workLoop runs ready tasks in deadline order until the slice is spent.
// Overdue tasks run regardless of the slice.
func (s *Scheduler) workLoop(now time.Duration) bool {
	s.advanceTimers(now)

	for s.currentTask = s.taskQueue.peek(); s.currentTask != nil; s.currentTask = s.taskQueue.peek() {
		task := s.currentTask
		if task.expirationTime > now && s.ShouldYield() {
			break
		}

		cb := task.callback
		if cb == nil {
			schedulerCancelled.Inc()
			s.taskQueue.pop()
			continue
		}

		task.callback = nil
		s.currentPriority = task.priority
		didTimeout := task.expirationTime <= now
		schedulerTasks.WithLabelValues(task.priority.String()).Inc()

		continuation := cb(didTimeout)
		now = s.clock.Now()

		if continuation != nil {
			task.callback = continuation
			s.advanceTimers(now)
			return true
		}
		if task == s.taskQueue.peek() {
			s.taskQueue.pop()
		}
		s.advanceTimers(now)
	}

	if s.currentTask != nil {
		return true
	}

	if first := s.timerQueue.peek(); first != nil {
		s.requestHostTimeout(first.startTime - now)
	}
	return false
}

// advanceTimers moves delayed tasks whose start time passed into the ready
// queue and drops cancelled ones.
func (s *Scheduler) advanceTimers(now time.Duration) {
	for t := s.timerQueue.peek(); t != nil; t = s.timerQueue.peek() {
		switch {
		case t.callback == nil:
			s.timerQueue.pop()
		case t.startTime <= now:
			s.timerQueue.pop()
			t.sortIndex = t.expirationTime
			s.taskQueue.push(t)
		default:
			return
		}
	}
}
