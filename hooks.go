package fiber

import "github.com/AnatoleLucet/fiber/internal"

func dispatcher() internal.Dispatcher {
	return internal.GetRuntime().Dispatcher()
}

// Deps builds a dependency list. Deps() with no values is an empty list:
// the effect or memo runs once. A nil list runs on every render.
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// Setter updates the state returned by UseState. It is the same value on
// every render of the component.
type Setter[T any] struct {
	dispatch *internal.Dispatch
}

// Set replaces the state.
func (s Setter[T]) Set(v T) {
	s.dispatch.Dispatch(internal.Updater(func(any) any { return v }))
}

// Update derives the next state from the previous one.
func (s Setter[T]) Update(fn func(prev T) T) {
	s.dispatch.Dispatch(internal.Updater(func(prev any) any { return fn(as[T](prev)) }))
}

// UseState returns the current state of the component and its setter.
func UseState[T any](initial T) (T, Setter[T]) {
	v, d := dispatcher().UseState(initial)
	return as[T](v), Setter[T]{d}
}

// UseLazyState is UseState with an initial value computed on mount only.
func UseLazyState[T any](init func() T) (T, Setter[T]) {
	v, d := dispatcher().UseState(func() any { return init() })
	return as[T](v), Setter[T]{d}
}

// Dispatch sends actions to the reducer of UseReducer.
type Dispatch[A any] struct {
	dispatch *internal.Dispatch
}

func (d Dispatch[A]) Dispatch(action A) {
	d.dispatch.Dispatch(action)
}

// UseReducer returns state folded by reducer from the dispatched actions.
func UseReducer[S, A any](reducer func(S, A) S, initial S) (S, Dispatch[A]) {
	v, d := dispatcher().UseReducer(func(state, action any) any {
		return reducer(as[S](state), as[A](action))
	}, initial)
	return as[S](v), Dispatch[A]{d}
}

// UseEffect runs fn after the commit that rendered the component, once the
// host had a chance to paint, and again whenever deps change. The function
// fn returns, if any, runs before the next run and on unmount.
func UseEffect(fn func() func(), deps []any) {
	dispatcher().UseEffect(fn, deps)
}

// UseLayoutEffect is UseEffect run synchronously right after the host was
// mutated, before control returns to the host.
func UseLayoutEffect(fn func() func(), deps []any) {
	dispatcher().UseLayoutEffect(fn, deps)
}

// UseRef returns a ref that stays the same for the lifetime of the
// component.
func UseRef(initial any) *Ref {
	return dispatcher().UseRef(initial)
}

// UseMemo returns the value of compute, recomputed only when deps change.
func UseMemo[T any](compute func() T, deps []any) T {
	return as[T](dispatcher().UseMemo(func() any { return compute() }, deps))
}

// UseCallback returns fn as it was when deps last changed.
func UseCallback[F any](fn F, deps []any) F {
	return as[F](dispatcher().UseMemo(func() any { return fn }, deps))
}
