package internal

// Runtime is the goroutine-local state hooks and setters consult: the
// dispatcher of the component being rendered, and the lane updates get when
// they are produced.
type Runtime struct {
	dispatcher Dispatcher
	updateLane Lane
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Dispatcher returns the hook implementation for the component being
// rendered, or one that panics outside of rendering.
func (r *Runtime) Dispatcher() Dispatcher {
	if r.dispatcher == nil {
		return invalidDispatcher{}
	}
	return r.dispatcher
}

// IsRendering reports whether a component is being rendered.
func (r *Runtime) IsRendering() bool {
	return r.dispatcher != nil
}

func (r *Runtime) install(d Dispatcher) (restore func()) {
	prev := r.dispatcher
	r.dispatcher = d
	return func() { r.dispatcher = prev }
}

// RunWithLane runs fn so that updates it produces are given lane.
func (r *Runtime) RunWithLane(lane Lane, fn func()) {
	prev := r.updateLane
	r.updateLane = lane
	defer func() { r.updateLane = prev }()

	fn()
}

// UpdateLane is the lane of the innermost RunWithLane, or NoLane.
func (r *Runtime) UpdateLane() Lane {
	return r.updateLane
}
