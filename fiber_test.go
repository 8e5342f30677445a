package fiber_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber"
	"github.com/AnatoleLucet/fiber/host/memhost"
)

type testRoot struct {
	*fiber.Root
	loop      *fiber.ManualLoop
	host      *memhost.Host
	container *memhost.Instance
}

func newTestRoot() *testRoot {
	clock := fiber.NewFakeClock()
	loop := fiber.NewManualLoop(clock)
	host := memhost.New()
	container := memhost.NewContainer()

	return &testRoot{
		Root:      fiber.NewRoot(container, host, fiber.NewScheduler(loop, fiber.WithClock(clock))),
		loop:      loop,
		host:      host,
		container: container,
	}
}

func (r *testRoot) render(tree any) {
	r.Render(tree)
	r.loop.Drain()
}

func TestTypedHooks(t *testing.T) {
	t.Run("state setters", func(t *testing.T) {
		r := newTestRoot()
		var setName fiber.Setter[string]
		var setCount fiber.Setter[int]
		comp := func(fiber.Props) any {
			name, sn := fiber.UseState("ada")
			count, sc := fiber.UseState(0)
			setName, setCount = sn, sc
			return fiber.H("p", nil, fmt.Sprintf("%s %d", name, count))
		}
		r.render(fiber.H(comp, nil))

		setName.Set("grace")
		setCount.Update(func(n int) int { return n + 1 })
		setCount.Update(func(n int) int { return n * 10 })
		r.loop.Drain()

		assert.Equal(t, "grace 10", r.container.TextContent())
	})

	t.Run("func values are stored, not called", func(t *testing.T) {
		r := newTestRoot()
		var set fiber.Setter[func() string]
		comp := func(fiber.Props) any {
			fn, s := fiber.UseState(func() string { return "first" })
			set = s
			if fn == nil {
				return "nil"
			}
			return fn()
		}
		r.render(fiber.H(comp, nil))

		set.Set(func() string { return "second" })
		r.loop.Drain()

		assert.Equal(t, "second", r.container.TextContent())
	})

	t.Run("lazy state", func(t *testing.T) {
		r := newTestRoot()
		inits := 0
		var set fiber.Setter[[]string]
		comp := func(fiber.Props) any {
			items, s := fiber.UseLazyState(func() []string {
				inits++
				return []string{"a"}
			})
			set = s
			return strings.Join(items, ",")
		}
		r.render(fiber.H(comp, nil))

		set.Update(func(prev []string) []string { return append(prev, "b") })
		r.loop.Drain()

		assert.Equal(t, 1, inits)
		assert.Equal(t, "a,b", r.container.TextContent())
	})

	t.Run("reducer", func(t *testing.T) {
		r := newTestRoot()
		type move struct{ dx, dy int }
		type point struct{ x, y int }
		var dispatch fiber.Dispatch[move]
		comp := func(fiber.Props) any {
			p, d := fiber.UseReducer(func(p point, m move) point {
				return point{p.x + m.dx, p.y + m.dy}
			}, point{})
			dispatch = d
			return fmt.Sprintf("%d,%d", p.x, p.y)
		}
		r.render(fiber.H(comp, nil))

		dispatch.Dispatch(move{1, 2})
		dispatch.Dispatch(move{3, 4})
		r.loop.Drain()

		assert.Equal(t, "4,6", r.container.TextContent())
	})

	t.Run("memo and callback", func(t *testing.T) {
		r := newTestRoot()
		computed := 0
		var callbacks []func() int
		var setCount fiber.Setter[int]
		comp := func(p fiber.Props) any {
			count, sc := fiber.UseState(0)
			setCount = sc
			label := fiber.UseMemo(func() string {
				computed++
				return fmt.Sprintf("label %v", p["label"])
			}, fiber.Deps(p["label"]))
			callbacks = append(callbacks, fiber.UseCallback(func() int { return count }, fiber.Deps()))
			return label
		}
		r.render(fiber.H(comp, fiber.Props{"label": "x"}))

		setCount.Set(5)
		r.loop.Drain()
		assert.Equal(t, 1, computed)
		require.Len(t, callbacks, 2)
		assert.Equal(t, 0, callbacks[1](), "the first callback is kept")

		r.render(fiber.H(comp, fiber.Props{"label": "y"}))
		assert.Equal(t, 2, computed)
		assert.Equal(t, "label y", r.container.TextContent())
	})

	t.Run("effects and refs", func(t *testing.T) {
		r := newTestRoot()
		log := []string{}
		comp := func(fiber.Props) any {
			ref := fiber.UseRef(nil)
			fiber.UseLayoutEffect(func() func() {
				log = append(log, "layout "+ref.Current.(*memhost.Instance).Label())
				return func() { log = append(log, "layout cleanup") }
			}, fiber.Deps())
			fiber.UseEffect(func() func() {
				log = append(log, "effect")
				return func() { log = append(log, "effect cleanup") }
			}, fiber.Deps())
			return fiber.H("input", fiber.Props{"id": "name", "ref": ref})
		}

		r.render(fiber.H(comp, nil))
		r.Unmount()
		r.loop.Drain()

		assert.Equal(t, []string{"layout input#name", "effect", "layout cleanup", "effect cleanup"}, log)
	})

	t.Run("hooks outside a component", func(t *testing.T) {
		assert.PanicsWithValue(t, fiber.ErrInvalidHookCall, func() { fiber.UseState(0) })
	})

	t.Run("deps", func(t *testing.T) {
		assert.NotNil(t, fiber.Deps())
		assert.Empty(t, fiber.Deps())
		assert.Equal(t, []any{1, "a"}, fiber.Deps(1, "a"))
	})
}

func TestTypedContext(t *testing.T) {
	type theme struct{ fg, bg string }
	ctx := fiber.NewContext(theme{"black", "white"})

	r := newTestRoot()
	reader := func(fiber.Props) any {
		th := fiber.UseContext(ctx)
		return th.fg + "/"
	}
	app := func(p fiber.Props) any {
		return fiber.H("div", nil,
			fiber.H(reader, nil),
			ctx.Provider(p["theme"].(theme),
				fiber.H(reader, nil),
				ctx.Consumer(func(th theme) any { return th.bg }),
			),
		)
	}

	r.render(fiber.H(app, fiber.Props{"theme": theme{"red", "blue"}}))
	assert.Equal(t, "black/red/blue", r.container.TextContent())
	assert.Equal(t, theme{"black", "white"}, ctx.Default())

	r.render(fiber.H(app, fiber.Props{"theme": theme{"green", "gray"}}))
	assert.Equal(t, "black/green/gray", r.container.TextContent())
}

func TestRootScheduling(t *testing.T) {
	t.Run("flush sync commits before returning", func(t *testing.T) {
		r := newTestRoot()

		r.FlushSync(func() { r.Render(fiber.H("p", nil, "now")) })

		assert.Equal(t, "now", r.container.TextContent())
	})

	t.Run("transitions commit once the loop runs", func(t *testing.T) {
		r := newTestRoot()

		r.StartTransition(func() { r.Render(fiber.H("p", nil, "later")) })
		assert.Empty(t, r.container.Children)

		r.loop.Drain()
		assert.Equal(t, "later", r.container.TextContent())
	})

	t.Run("each root has its own id", func(t *testing.T) {
		assert.NotEqual(t, newTestRoot().ID(), newTestRoot().ID())
	})
}

func Example() {
	clock := fiber.NewFakeClock()
	loop := fiber.NewManualLoop(clock)
	host := memhost.New()
	container := memhost.NewContainer()
	root := fiber.NewRoot(container, host, fiber.NewScheduler(loop, fiber.WithClock(clock)))

	root.Render(fiber.H("ul", fiber.Props{"id": "list"},
		fiber.H("li", nil, "one"),
		fiber.H("li", nil, "two"),
	))
	loop.Drain()

	fmt.Print(container)
	// Output:
	// <root>
	//   <ul id="list">
	//     <li>
	//       one
	//     </li>
	//     <li>
	//       two
	//     </li>
	//   </ul>
	// </root>
}

func ExampleUseState() {
	clock := fiber.NewFakeClock()
	loop := fiber.NewManualLoop(clock)
	host := memhost.New()
	container := memhost.NewContainer()
	root := fiber.NewRoot(container, host, fiber.NewScheduler(loop, fiber.WithClock(clock)))

	var increment func()
	counter := func(fiber.Props) any {
		count, setCount := fiber.UseState(0)
		increment = func() { setCount.Update(func(n int) int { return n + 1 }) }
		return fiber.H("span", nil, count)
	}

	root.Render(fiber.H(counter, nil))
	loop.Drain()

	increment()
	increment()
	loop.Drain()

	fmt.Println(strings.Join(host.Log(), "\n"))
	// Output:
	// create text "0"
	// create span
	// append span to root
	// text "0" -> "2"
}
