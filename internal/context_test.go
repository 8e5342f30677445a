package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useContext(ctx *Context) any {
	return GetRuntime().Dispatcher().UseContext(ctx)
}

func TestContext(t *testing.T) {
	t.Run("default value outside any provider", func(t *testing.T) {
		h := newHarness()
		theme := NewContext("light")
		comp := func(Props) any { return useContext(theme) }

		h.render(el(comp, nil))

		assert.Equal(t, `root("light")`, h.tree())
		assert.Equal(t, "light", theme.Default())
	})

	t.Run("nested providers restore the outer value", func(t *testing.T) {
		h := newHarness()
		ctx := NewContext("default")
		read := func(v any) any { return el("span", nil, v) }

		h.render(el("div", nil,
			el(ctx.Provider, Props{"value": "outer"},
				el(ctx.Consumer, nil, read),
				el(ctx.Provider, Props{"value": "inner"}, el(ctx.Consumer, nil, read)),
				el(ctx.Consumer, nil, read),
			),
			el(ctx.Consumer, nil, read),
		))

		assert.Equal(t, `root(div(span("outer") span("inner") span("outer") span("default")))`, h.tree())
		assert.Equal(t, 0, h.root.contexts.depth())
	})

	t.Run("a new value reaches readers below a bailed out subtree", func(t *testing.T) {
		h := newHarness()
		ctx := NewContext("none")
		renders := 0
		leaf := func(Props) any {
			renders++
			return useContext(ctx)
		}
		// the same element every time, so the span bails out
		constant := el("span", nil, el(leaf, nil))
		app := func(p Props) any {
			return el(ctx.Provider, Props{"value": p["theme"]}, constant)
		}

		h.render(el(app, Props{"theme": "light"}))
		assert.Equal(t, `root(span("light"))`, h.tree())
		h.host.take()

		h.render(el(app, Props{"theme": "dark"}))

		assert.Equal(t, `root(span("dark"))`, h.tree())
		assert.Equal(t, []string{`text "light" -> "dark"`}, h.host.take())
		assert.Equal(t, 2, renders)
	})

	t.Run("an unchanged value leaves bailed out readers alone", func(t *testing.T) {
		h := newHarness()
		ctx := NewContext("none")
		renders := 0
		leaf := func(Props) any {
			renders++
			return useContext(ctx)
		}
		constant := el("span", nil, el(leaf, nil))
		app := func(p Props) any {
			return el(ctx.Provider, Props{"value": "same"}, constant)
		}

		h.render(el(app, Props{"n": 1}))
		h.render(el(app, Props{"n": 2}))

		assert.Equal(t, 1, renders)
	})

	t.Run("a nested provider shields its subtree from changes", func(t *testing.T) {
		h := newHarness()
		ctx := NewContext("none")
		renders := 0
		leaf := func(Props) any {
			renders++
			return useContext(ctx)
		}
		shielded := el(ctx.Provider, Props{"value": "fixed"}, el(leaf, nil))
		app := func(p Props) any {
			return el(ctx.Provider, Props{"value": p["v"]}, shielded)
		}

		h.render(el(app, Props{"v": "a"}))
		h.render(el(app, Props{"v": "b"}))

		assert.Equal(t, `root("fixed")`, h.tree())
		assert.Equal(t, 1, renders)
	})

	t.Run("readers record the contexts they depend on", func(t *testing.T) {
		h := newHarness()
		a, b := NewContext(1), NewContext(2)
		comp := func(Props) any {
			useContext(a)
			useContext(b)
			useContext(a)
			return nil
		}

		h.render(el(comp, nil))

		deps := h.root.Current().Child().dependencies
		require.Len(t, deps, 2)
		assert.Same(t, a, deps[0])
		assert.Same(t, b, deps[1])
	})
}

func TestContextStack(t *testing.T) {
	s := newContextStack()
	ctx := NewContext("d")

	s.push(ctx, "a")
	s.push(ctx, "b")
	assert.Equal(t, "b", s.value(ctx))

	s.pop(ctx)
	assert.Equal(t, "a", s.value(ctx))
	s.pop(ctx)
	assert.Equal(t, "d", s.value(ctx))

	assert.Panics(t, func() { s.pop(ctx) })

	s.push(ctx, "x")
	s.reset()
	assert.Equal(t, 0, s.depth())
	assert.Equal(t, "d", s.value(ctx))
}
