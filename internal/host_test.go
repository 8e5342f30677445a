package internal

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testInstance struct {
	typ      string
	props    Props
	text     string
	isText   bool
	mounted  bool
	children []*testInstance
}

func (i *testInstance) label() string {
	if i.isText {
		return fmt.Sprintf("%q", i.text)
	}
	if id, ok := i.props["id"]; ok {
		return fmt.Sprintf("%s#%v", i.typ, id)
	}
	return i.typ
}

// dump renders the children of i on one line, e.g. "ul(li#a li#b)".
func (i *testInstance) dump() string {
	if i.isText {
		return i.label()
	}
	if len(i.children) == 0 {
		return i.label()
	}
	parts := make([]string, len(i.children))
	for j, c := range i.children {
		parts[j] = c.dump()
	}
	return i.label() + "(" + strings.Join(parts, " ") + ")"
}

func (i *testInstance) remove(c *testInstance) bool {
	idx := slices.Index(i.children, c)
	if idx < 0 {
		return false
	}
	i.children = slices.Delete(i.children, idx, idx+1)
	return true
}

// testHost records host calls that touch the visible tree.
type testHost struct {
	log []string
}

func (h *testHost) CreateInstance(typ string, props Props) any {
	p := Props{}
	for k, v := range props {
		if k != childrenProp {
			p[k] = v
		}
	}
	i := &testInstance{typ: typ, props: p}
	h.log = append(h.log, "create "+i.label())
	return i
}

func (h *testHost) CreateTextInstance(text string) any {
	h.log = append(h.log, fmt.Sprintf("create text %q", text))
	return &testInstance{text: text, isText: true}
}

func (h *testHost) AppendInitialChild(parent, child any) {
	p := parent.(*testInstance)
	p.children = append(p.children, child.(*testInstance))
}

func (h *testHost) FinalizeInitialChildren(instance any, typ string, props Props) bool {
	autofocus, _ := props["autofocus"].(bool)
	return autofocus
}

func (h *testHost) CommitMount(instance any, typ string, props Props) {
	i := instance.(*testInstance)
	i.mounted = true
	h.log = append(h.log, "mount "+i.label())
}

func (h *testHost) CommitUpdate(instance any, payload []PropChange, typ string, oldProps, newProps Props) {
	i := instance.(*testInstance)
	changes := make([]string, 0, len(payload))
	for _, c := range payload {
		if c.Removed {
			delete(i.props, c.Key)
			changes = append(changes, "-"+c.Key)
			continue
		}
		i.props[c.Key] = c.Value
		changes = append(changes, fmt.Sprintf("%s=%v", c.Key, c.Value))
	}
	h.log = append(h.log, fmt.Sprintf("update %s %s", i.label(), strings.Join(changes, " ")))
}

func (h *testHost) CommitTextUpdate(instance any, oldText, newText string) {
	instance.(*testInstance).text = newText
	h.log = append(h.log, fmt.Sprintf("text %q -> %q", oldText, newText))
}

func (h *testHost) AppendChild(parent, child any) {
	p, c := parent.(*testInstance), child.(*testInstance)
	p.remove(c)
	p.children = append(p.children, c)
	h.log = append(h.log, fmt.Sprintf("append %s to %s", c.label(), p.label()))
}

func (h *testHost) InsertBefore(parent, child, before any) {
	p, c, b := parent.(*testInstance), child.(*testInstance), before.(*testInstance)
	p.remove(c)
	idx := slices.Index(p.children, b)
	if idx < 0 {
		panic("insert before a node that is not a child")
	}
	p.children = slices.Insert(p.children, idx, c)
	h.log = append(h.log, fmt.Sprintf("insert %s before %s", c.label(), b.label()))
}

func (h *testHost) RemoveChild(parent, child any) {
	p, c := parent.(*testInstance), child.(*testInstance)
	if !p.remove(c) {
		panic("remove of a node that is not a child")
	}
	h.log = append(h.log, fmt.Sprintf("remove %s from %s", c.label(), p.label()))
}

func (h *testHost) take() []string {
	log := h.log
	h.log = nil
	return log
}

// harness wires a root to a deterministic loop and clock.
type harness struct {
	clock     *FakeClock
	loop      *ManualLoop
	scheduler *Scheduler
	host      *testHost
	container *testInstance
	root      *Root
}

func newHarness(opts ...RootOption) *harness {
	clock := NewFakeClock()
	loop := NewManualLoop(clock)
	logger := slog.New(slog.DiscardHandler)

	h := &harness{
		clock:     clock,
		loop:      loop,
		scheduler: NewScheduler(loop, WithClock(clock), WithSchedulerLogger(logger)),
		host:      &testHost{},
		container: &testInstance{typ: "root"},
	}
	h.root = NewRoot(h.container, h.host, h.scheduler, append([]RootOption{WithRootLogger(logger)}, opts...)...)
	return h
}

// render renders tree and runs every task it leads to.
func (h *harness) render(tree any) {
	h.root.Render(tree)
	h.loop.Drain()
}

func (h *harness) tree() string {
	return h.container.dump()
}

func TestDiffProps(t *testing.T) {
	t.Run("no changes", func(t *testing.T) {
		assert.Nil(t, DiffProps(Props{"a": 1, "children": "x"}, Props{"a": 1, "children": "y"}))
	})

	t.Run("added changed and removed keys in key order", func(t *testing.T) {
		changes := DiffProps(
			Props{"b": 1, "c": "gone", "d": 4},
			Props{"a": true, "b": 2, "d": 4},
		)

		assert.Equal(t, []PropChange{
			{Key: "a", Value: true},
			{Key: "b", Value: 2},
			{Key: "c", Removed: true},
		}, changes)
	})

	t.Run("functions compare by identity", func(t *testing.T) {
		fn := func() {}
		assert.Nil(t, DiffProps(Props{"onclick": fn}, Props{"onclick": fn}))
	})
}
