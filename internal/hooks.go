package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHookCall is raised when a hook runs outside of a component render.
	ErrInvalidHookCall = errors.New("hooks can only be called while a component is rendering")

	// ErrHookOrder is raised when a component calls its hooks in a different
	// order, or a different number of them, than on its previous render.
	ErrHookOrder = errors.New("hook order changed between renders")
)

// Reducer folds an action into a state.
type Reducer func(state, action any) any

// Dispatcher implements hooks for the component being rendered.
type Dispatcher interface {
	UseState(initial any) (any, *Dispatch)
	UseReducer(reducer Reducer, initial any) (any, *Dispatch)
	UseEffect(create func() func(), deps []any)
	UseLayoutEffect(create func() func(), deps []any)
	UseRef(initial any) *Ref
	UseMemo(compute func() any, deps []any) any
	UseContext(ctx *Context) any
}

type hookKind uint8

const (
	hookState hookKind = iota
	hookEffect
	hookRef
	hookMemo
)

func (k hookKind) String() string {
	switch k {
	case hookState:
		return "state"
	case hookEffect:
		return "effect"
	case hookRef:
		return "ref"
	default:
		return "memo"
	}
}

// hook is one positional state slot of a component.
type hook struct {
	kind          hookKind
	memoizedState any
	queue         *UpdateQueue
	dispatch      *Dispatch

	next *hook
}

type memoEntry struct {
	value any
	deps  []any
}

// Dispatch enqueues updates on one state hook. It stays the same across
// renders of the component.
type Dispatch struct {
	root    *Root
	node    *Node
	queue   *UpdateQueue
	reducer Reducer // nil for plain state
}

// Dispatch enqueues a value, or an Updater, and schedules a pass.
func (d *Dispatch) Dispatch(payload any) {
	if d.reducer != nil {
		action := payload
		payload = Updater(func(prev any) any {
			return d.reducer(prev, action)
		})
	}
	d.root.dispatchUpdate(d.node, d.queue, payload)
}

// renderState is the hook cursor of the component a root is rendering.
type renderState struct {
	root        *Root
	node        *Node
	current     *Node
	renderLanes Lanes

	currentHook *hook // position in the previous render's list
	wipHook     *hook // tail of the list being built
	index       int
}

func (rs *renderState) reset() {
	*rs = renderState{root: rs.root}
}

// renderWithHooks calls the component of wip with the dispatcher matching
// whether the component is mounting or updating.
func (rs *renderState) renderWithHooks(current, wip *Node, component Component, props Props, lanes Lanes) any {
	rs.node = wip
	rs.current = current
	rs.renderLanes = lanes

	wip.memoizedState = nil
	wip.updateQueue = nil
	wip.dependencies = nil

	var d Dispatcher
	if current == nil || current.memoizedState == nil {
		d = mountDispatcher{rs}
	} else {
		d = updateDispatcher{rs}
	}

	restore := GetRuntime().install(d)
	defer func() {
		restore()
		rs.reset()
	}()

	children := component(props)

	if current != nil && rs.currentHook != nil && rs.currentHook.next != nil {
		panic(fmt.Errorf("%w: rendered fewer hooks than during the previous render", ErrHookOrder))
	}
	if current != nil && current.memoizedState != nil && rs.currentHook == nil {
		panic(fmt.Errorf("%w: rendered no hooks, previous render had some", ErrHookOrder))
	}

	return children
}

func (rs *renderState) mountHook(kind hookKind) *hook {
	h := &hook{kind: kind}
	if rs.wipHook == nil {
		rs.node.memoizedState = h
	} else {
		rs.wipHook.next = h
	}
	rs.wipHook = h
	rs.index++
	return h
}

// updateHook clones the next hook of the previous render. Hooks are matched
// by position only.
func (rs *renderState) updateHook(kind hookKind) (*hook, *hook) {
	var prev *hook
	if rs.currentHook == nil {
		prev, _ = rs.current.memoizedState.(*hook)
	} else {
		prev = rs.currentHook.next
	}
	if prev == nil {
		panic(fmt.Errorf("%w: rendered more hooks than during the previous render", ErrHookOrder))
	}
	if prev.kind != kind {
		panic(fmt.Errorf("%w: hook %d was a %s hook and is now a %s hook", ErrHookOrder, rs.index, prev.kind, kind))
	}
	rs.currentHook = prev

	h := &hook{
		kind:          kind,
		memoizedState: prev.memoizedState,
		dispatch:      prev.dispatch,
	}
	if prev.queue != nil {
		h.queue = prev.queue.clone()
	}

	if rs.wipHook == nil {
		rs.node.memoizedState = h
	} else {
		rs.wipHook.next = h
	}
	rs.wipHook = h
	rs.index++

	return h, prev
}

func (rs *renderState) effects() *effectList {
	list, _ := rs.node.updateQueue.(*effectList)
	if list == nil {
		list = &effectList{}
		rs.node.updateQueue = list
	}
	return list
}

type mountDispatcher struct{ rs *renderState }

func (d mountDispatcher) UseState(initial any) (any, *Dispatch) {
	return d.UseReducer(nil, initial)
}

func (d mountDispatcher) UseReducer(reducer Reducer, initial any) (any, *Dispatch) {
	h := d.rs.mountHook(hookState)

	if init, ok := initial.(func() any); ok {
		initial = init()
	}
	h.memoizedState = initial
	h.queue = NewUpdateQueue(initial)
	h.dispatch = &Dispatch{
		root:    d.rs.root,
		node:    d.rs.node,
		queue:   h.queue,
		reducer: reducer,
	}

	return initial, h.dispatch
}

func (d mountDispatcher) UseEffect(create func() func(), deps []any) {
	d.mountEffect(Passive, hookPassive, create, deps)
}

func (d mountDispatcher) UseLayoutEffect(create func() func(), deps []any) {
	d.mountEffect(LayoutEffect, hookLayout, create, deps)
}

func (d mountDispatcher) mountEffect(flag Flags, tag hookFlags, create func() func(), deps []any) {
	h := d.rs.mountHook(hookEffect)
	d.rs.node.flags |= flag
	h.memoizedState = d.rs.effects().push(hookHasEffect|tag, create, nil, deps)
}

func (d mountDispatcher) UseRef(initial any) *Ref {
	h := d.rs.mountHook(hookRef)
	ref := &Ref{Current: initial}
	h.memoizedState = ref
	return ref
}

func (d mountDispatcher) UseMemo(compute func() any, deps []any) any {
	h := d.rs.mountHook(hookMemo)
	value := compute()
	h.memoizedState = memoEntry{value: value, deps: deps}
	return value
}

func (d mountDispatcher) UseContext(ctx *Context) any {
	return d.rs.readContext(ctx)
}

type updateDispatcher struct{ rs *renderState }

func (d updateDispatcher) UseState(initial any) (any, *Dispatch) {
	return d.UseReducer(nil, initial)
}

func (d updateDispatcher) UseReducer(reducer Reducer, _ any) (any, *Dispatch) {
	h, prev := d.rs.updateHook(hookState)

	state, skipped := h.queue.Process(d.rs.renderLanes, prev.queue)
	h.memoizedState = state
	h.dispatch.reducer = reducer
	d.rs.node.lanes |= skipped

	return state, h.dispatch
}

func (d updateDispatcher) UseEffect(create func() func(), deps []any) {
	d.updateEffect(Passive, hookPassive, create, deps)
}

func (d updateDispatcher) UseLayoutEffect(create func() func(), deps []any) {
	d.updateEffect(LayoutEffect, hookLayout, create, deps)
}

func (d updateDispatcher) updateEffect(flag Flags, tag hookFlags, create func() func(), deps []any) {
	h, prev := d.rs.updateHook(hookEffect)
	prevEffect := prev.memoizedState.(*effect)

	if deps != nil && areHookInputsEqual(deps, prevEffect.deps) {
		h.memoizedState = d.rs.effects().push(tag, create, prevEffect.destroy, deps)
		return
	}

	d.rs.node.flags |= flag
	h.memoizedState = d.rs.effects().push(hookHasEffect|tag, create, prevEffect.destroy, deps)
}

func (d updateDispatcher) UseRef(_ any) *Ref {
	h, _ := d.rs.updateHook(hookRef)
	return h.memoizedState.(*Ref)
}

func (d updateDispatcher) UseMemo(compute func() any, deps []any) any {
	h, _ := d.rs.updateHook(hookMemo)
	prev := h.memoizedState.(memoEntry)

	if deps != nil && areHookInputsEqual(deps, prev.deps) {
		return prev.value
	}

	value := compute()
	h.memoizedState = memoEntry{value: value, deps: deps}
	return value
}

func (d updateDispatcher) UseContext(ctx *Context) any {
	return d.rs.readContext(ctx)
}

func (rs *renderState) readContext(ctx *Context) any {
	for _, dep := range rs.node.dependencies {
		if dep == ctx {
			return rs.root.contexts.value(ctx)
		}
	}
	rs.node.dependencies = append(rs.node.dependencies, ctx)
	return rs.root.contexts.value(ctx)
}

type invalidDispatcher struct{}

func (invalidDispatcher) UseState(any) (any, *Dispatch)            { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseReducer(Reducer, any) (any, *Dispatch) { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseEffect(func() func(), []any)           { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseLayoutEffect(func() func(), []any)     { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseRef(any) *Ref                          { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseMemo(func() any, []any) any            { panic(ErrInvalidHookCall) }
func (invalidDispatcher) UseContext(*Context) any                  { panic(ErrInvalidHookCall) }

// areHookInputsEqual compares dependency lists entry by entry by identity.
func areHookInputsEqual(next, prev []any) bool {
	if prev == nil || len(next) != len(prev) {
		return false
	}
	for i := range next {
		if !is(next[i], prev[i]) {
			return false
		}
	}
	return true
}
