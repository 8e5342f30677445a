package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringerKey struct{ id int }

func (k stringerKey) String() string { return "k" + string(rune('0'+k.id)) }

func TestNewElement(t *testing.T) {
	t.Run("key and ref leave the props", func(t *testing.T) {
		ref := &Ref{}
		props := Props{"key": "a", "ref": ref, "id": "x"}

		el := NewElement("div", props)

		assert.Equal(t, "a", el.Key)
		assert.Same(t, ref, el.Ref)
		assert.Equal(t, Props{"id": "x"}, el.Props)
		assert.Len(t, props, 3, "the caller's map is left alone")
	})

	t.Run("children", func(t *testing.T) {
		assert.Nil(t, NewElement("div", nil).Props.Children())
		assert.Equal(t, "one", NewElement("div", nil, "one").Props.Children())
		assert.Equal(t, []any{"a", "b"}, NewElement("div", nil, "a", "b").Props.Children())

		el := NewElement("div", Props{"children": "old"}, "new")
		assert.Equal(t, "new", el.Props.Children())
	})
}

func TestTagFor(t *testing.T) {
	component := func(Props) any { return nil }

	cases := []struct {
		typ any
		tag Tag
	}{
		{"div", HostUnit},
		{component, FunctionUnit},
		{Component(component), FunctionUnit},
		{Fragment, FragmentUnit},
	}
	for _, c := range cases {
		tag, err := tagFor(c.typ)
		require.NoError(t, err)
		assert.Equal(t, c.tag, tag)
	}

	_, err := tagFor(42)
	assert.ErrorIs(t, err, ErrUnknownElementType)
}

func TestNormalizeKey(t *testing.T) {
	_, ok := normalizeKey(nil)
	assert.False(t, ok)

	for key, want := range map[any]string{
		"a":            "a",
		7:              "7",
		int64(-3):      "-3",
		uint8(9):       "9",
		stringerKey{2}: "k2",
		1.5:            "1.5",
	} {
		got, ok := normalizeKey(key)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestIs(t *testing.T) {
	fn := func() {}
	m := map[string]int{}
	s := []int{1, 2}

	assert.True(t, is(nil, nil))
	assert.False(t, is(nil, 0))
	assert.True(t, is(1, 1))
	assert.False(t, is(1, int64(1)), "different types")
	assert.True(t, is(math.NaN(), math.NaN()))
	assert.True(t, is("a", "a"))
	assert.True(t, is(fn, fn))
	assert.True(t, is(m, m))
	assert.False(t, is(m, map[string]int{}))
	assert.True(t, is(s, s))
	assert.False(t, is(s, s[:1]))
	assert.False(t, is(s, []int{1, 2}))
	assert.False(t, is(struct{ v any }{[]int{}}, struct{ v any }{[]int{}}))
	assert.False(t, is(0.0, math.Copysign(0, -1)), "+0 and -0")
	assert.True(t, is(math.Copysign(0, -1), math.Copysign(0, -1)))

	counter := func(n int) func() int { return func() int { return n } }
	one := counter(1)
	assert.True(t, is(one, one))
	assert.False(t, is(one, counter(1)), "closures from the same literal")
	assert.False(t, is(counter(1), counter(2)))
}

func TestSameType(t *testing.T) {
	a := func(Props) any { return nil }
	b := func(Props) any { return "b" }

	assert.True(t, sameType("div", "div"))
	assert.False(t, sameType("div", "span"))
	assert.True(t, sameType(a, Component(a)))
	assert.False(t, sameType(a, b))
	assert.False(t, sameType(a, "div"))
	assert.True(t, sameType(Fragment, Fragment))

	labelled := func(label string) Component {
		return func(Props) any { return label }
	}
	c := labelled("c")
	assert.True(t, sameType(c, c))
	assert.True(t, sameType(c, (func(Props) any)(c)))
	assert.False(t, sameType(labelled("a"), labelled("b")))
}

func TestTextOf(t *testing.T) {
	for v, want := range map[any]string{"x": "x", 3: "3", 2.5: "2.5", float32(0.1): "0.1"} {
		got, ok := textOf(v)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := textOf(true)
	assert.False(t, ok)
}
