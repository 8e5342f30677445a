package fiber

import (
	"log/slog"

	"github.com/AnatoleLucet/fiber/internal"
	"github.com/google/uuid"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type (
	// Props are the properties of an element. The "children" entry holds
	// its children.
	Props = internal.Props

	// Element describes one node of the tree to render.
	Element = internal.Element

	// Component renders a description of its output from its props.
	Component = internal.Component

	// Ref receives the host object of the element it is passed to.
	Ref = internal.Ref

	// HostConfig creates and mutates the objects a root renders to.
	HostConfig = internal.HostConfig

	// PropChange is one entry of the payload given to HostConfig.CommitUpdate.
	PropChange = internal.PropChange
)

// Fragment groups children without creating a host object.
var Fragment = internal.Fragment

// H creates an element. typ is a host type name, a Component, Fragment, or
// a context Provider or Consumer. The "key" and "ref" props are taken out
// of props and set on the element.
func H(typ any, props Props, children ...any) *Element {
	return internal.NewElement(typ, props, children...)
}

// DiffProps returns the changes between two prop sets, ignoring children.
func DiffProps(oldProps, newProps Props) []PropChange {
	return internal.DiffProps(oldProps, newProps)
}

type Root struct {
	root *internal.Root
}

type RootOption = internal.RootOption

// WithConfig sets the reconciler settings of a root.
func WithConfig(c Config) RootOption {
	return internal.WithRootConfig(c.Reconciler)
}

// WithLogger sets the logger of a root.
func WithLogger(l *slog.Logger) RootOption {
	return internal.WithRootLogger(l)
}

// NewRoot creates a root that renders into container through host, with
// its work scheduled on scheduler.
func NewRoot(container any, host HostConfig, scheduler *Scheduler, opts ...RootOption) *Root {
	return &Root{internal.NewRoot(container, host, scheduler, opts...)}
}

// ID identifies the root in logs.
func (r *Root) ID() uuid.UUID { return r.root.ID() }

// Render schedules tree to be rendered into the container, replacing what
// was rendered before.
func (r *Root) Render(tree any) { r.root.Render(tree) }

// Unmount schedules the removal of the rendered tree.
func (r *Root) Unmount() { r.root.Unmount() }

// FlushSync runs fn, then renders and commits its updates, and any other
// synchronous work, before returning. fn may be nil.
func (r *Root) FlushSync(fn func()) { r.root.FlushSync(fn) }

// StartTransition marks the updates made by fn as non-urgent. They render
// in time slices and are interrupted by urgent updates.
func (r *Root) StartTransition(fn func()) { r.root.StartTransition(fn) }

// ContinuousUpdates gives the updates made by fn the priority of
// continuous input.
func (r *Root) ContinuousUpdates(fn func()) { r.root.ContinuousUpdates(fn) }

// Batch schedules the updates made by fn together, once fn returns.
func (r *Root) Batch(fn func()) { r.root.Batch(fn) }

// FlushPassiveEffects runs the effects of the last commit now instead of in
// a later task.
func (r *Root) FlushPassiveEffects() bool { return r.root.FlushPassiveEffects() }
