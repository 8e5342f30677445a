package fiber

import (
	"time"

	"github.com/AnatoleLucet/fiber/internal"
)

type (
	// Scheduler runs prioritized tasks in time slices on an EventLoop.
	Scheduler = internal.Scheduler

	// Task is a scheduled callback.
	Task = internal.Task

	// Callback is the body of a task. Returning a non-nil callback keeps
	// the task queued with the returned continuation.
	Callback = internal.Callback

	Priority        = internal.Priority
	SchedulerOption = internal.SchedulerOption
	TaskOption      = internal.TaskOption

	// EventLoop runs the scheduler's slices and timers.
	EventLoop = internal.EventLoop

	// Loop is an EventLoop driven by Run on its own goroutine.
	Loop = internal.Loop

	// ManualLoop is an EventLoop that runs only when told to.
	ManualLoop = internal.ManualLoop

	Clock       = internal.Clock
	SystemClock = internal.SystemClock
	FakeClock   = internal.FakeClock

	Config           = internal.Config
	SchedulerConfig  = internal.SchedulerConfig
	ReconcilerConfig = internal.ReconcilerConfig
	LogConfig        = internal.LogConfig
)

const (
	ImmediatePriority    = internal.ImmediatePriority
	UserBlockingPriority = internal.UserBlockingPriority
	NormalPriority       = internal.NormalPriority
	LowPriority          = internal.LowPriority
	IdlePriority         = internal.IdlePriority
)

var (
	ErrLoopAlreadyRunning = internal.ErrLoopAlreadyRunning
	ErrCallbackPanic      = internal.ErrCallbackPanic

	ErrInvalidHookCall    = internal.ErrInvalidHookCall
	ErrHookOrder          = internal.ErrHookOrder
	ErrNestedUpdateLimit  = internal.ErrNestedUpdateLimit
	ErrUnknownElementType = internal.ErrUnknownElementType
)

// NewScheduler creates a scheduler posting its slices to loop.
func NewScheduler(loop EventLoop, opts ...SchedulerOption) *Scheduler {
	return internal.NewScheduler(loop, opts...)
}

func WithClock(c Clock) SchedulerOption {
	return internal.WithClock(c)
}

func WithSchedulerConfig(c SchedulerConfig) SchedulerOption {
	return internal.WithSchedulerConfig(c)
}

// WithDelay keeps a task out of the ready queue for d.
func WithDelay(d time.Duration) TaskOption {
	return internal.WithDelay(d)
}

func NewLoop() *Loop {
	return internal.NewLoop()
}

func NewManualLoop(clock Clock) *ManualLoop {
	return internal.NewManualLoop(clock)
}

func NewSystemClock() *SystemClock {
	return internal.NewSystemClock()
}

func NewFakeClock() *FakeClock {
	return internal.NewFakeClock()
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// LoadConfig reads settings from a YAML or JSON file, if it exists, then
// from FIBER_* environment variables.
func LoadConfig(path string) (Config, error) {
	return internal.LoadConfig(path)
}
