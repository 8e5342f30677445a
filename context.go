package fiber

import "github.com/AnatoleLucet/fiber/internal"

type Context[T any] struct {
	ctx *internal.Context
}

// NewContext creates a context. Components below no provider read
// defaultValue.
func NewContext[T any](defaultValue T) *Context[T] {
	return &Context[T]{internal.NewContext(defaultValue)}
}

// Provider makes value the context's value for children.
func (c *Context[T]) Provider(value T, children ...any) *Element {
	return internal.NewElement(c.ctx.Provider, Props{"value": value}, children...)
}

// Consumer renders the output of render for the context's value.
func (c *Context[T]) Consumer(render func(T) any) *Element {
	return internal.NewElement(c.ctx.Consumer, nil, func(v any) any {
		return render(as[T](v))
	})
}

// Default returns the value read outside of any provider.
func (c *Context[T]) Default() T {
	return as[T](c.ctx.Default())
}

// UseContext returns the value of the closest provider of c above the
// component. The component renders again when that value changes.
func UseContext[T any](c *Context[T]) T {
	return as[T](dispatcher().UseContext(c.ctx))
}
