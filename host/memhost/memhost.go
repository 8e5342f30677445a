// Package memhost renders fiber trees into plain Go values and records every
// host mutation, for tests and the demo CLI.
package memhost

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/AnatoleLucet/fiber"
)

// Instance is a host object: an element with props and children, or a text
// node.
type Instance struct {
	Type     string
	Props    fiber.Props
	Text     string
	IsText   bool
	Mounted  bool // CommitMount ran
	Parent   *Instance
	Children []*Instance
}

// Host implements fiber.HostConfig over Instances.
type Host struct {
	log    []string
	logger *slog.Logger
}

type Option func(*Host)

// WithLogger logs every mutation at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

func New(opts ...Option) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	h.logger = h.logger.With("component", "memhost")
	return h
}

// NewContainer returns an empty instance to render a root into.
func NewContainer() *Instance {
	return &Instance{Type: "root", Props: fiber.Props{}}
}

// Log returns the mutations recorded since the last Reset.
func (h *Host) Log() []string {
	return slices.Clone(h.log)
}

func (h *Host) Reset() {
	h.log = h.log[:0]
}

func (h *Host) record(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	h.log = append(h.log, entry)
	h.logger.Debug(entry)
}

func (h *Host) CreateInstance(typ string, props fiber.Props) any {
	h.record("create %s", label(typ, props))
	return &Instance{Type: typ, Props: withoutChildren(props)}
}

func (h *Host) CreateTextInstance(text string) any {
	h.record("create text %q", text)
	return &Instance{Text: text, IsText: true}
}

func (h *Host) AppendInitialChild(parent, child any) {
	p, c := parent.(*Instance), child.(*Instance)
	p.appendChild(c)
}

// FinalizeInitialChildren asks for CommitMount when the element has an
// "autofocus" prop set to true.
func (h *Host) FinalizeInitialChildren(instance any, typ string, props fiber.Props) bool {
	autofocus, _ := props["autofocus"].(bool)
	return autofocus
}

func (h *Host) CommitMount(instance any, typ string, props fiber.Props) {
	i := instance.(*Instance)
	i.Mounted = true
	h.record("mount %s", i.Label())
}

func (h *Host) CommitUpdate(instance any, payload []fiber.PropChange, typ string, oldProps, newProps fiber.Props) {
	i := instance.(*Instance)
	changes := make([]string, 0, len(payload))
	for _, c := range payload {
		if c.Removed {
			delete(i.Props, c.Key)
			changes = append(changes, "-"+c.Key)
			continue
		}
		i.Props[c.Key] = c.Value
		changes = append(changes, fmt.Sprintf("%s=%v", c.Key, c.Value))
	}
	h.record("update %s [%s]", i.Label(), strings.Join(changes, " "))
}

func (h *Host) CommitTextUpdate(instance any, oldText, newText string) {
	i := instance.(*Instance)
	i.Text = newText
	h.record("text %q -> %q", oldText, newText)
}

func (h *Host) AppendChild(parent, child any) {
	p, c := parent.(*Instance), child.(*Instance)
	p.removeChild(c)
	p.appendChild(c)
	h.record("append %s to %s", c.Label(), p.Label())
}

func (h *Host) InsertBefore(parent, child, before any) {
	p, c, b := parent.(*Instance), child.(*Instance), before.(*Instance)
	p.removeChild(c)

	idx := slices.Index(p.Children, b)
	if idx < 0 {
		panic(fmt.Sprintf("memhost: %s is not a child of %s", b.Label(), p.Label()))
	}
	c.Parent = p
	p.Children = slices.Insert(p.Children, idx, c)
	h.record("insert %s before %s in %s", c.Label(), b.Label(), p.Label())
}

func (h *Host) RemoveChild(parent, child any) {
	p, c := parent.(*Instance), child.(*Instance)
	if !p.removeChild(c) {
		panic(fmt.Sprintf("memhost: %s is not a child of %s", c.Label(), p.Label()))
	}
	h.record("remove %s from %s", c.Label(), p.Label())
}

func (i *Instance) appendChild(c *Instance) {
	c.Parent = i
	i.Children = append(i.Children, c)
}

func (i *Instance) removeChild(c *Instance) bool {
	idx := slices.Index(i.Children, c)
	if idx < 0 {
		return false
	}
	i.Children = slices.Delete(i.Children, idx, idx+1)
	c.Parent = nil
	return true
}

// Label names the instance in the mutation log: the type, with the "id"
// prop when there is one, or the quoted text.
func (i *Instance) Label() string {
	if i.IsText {
		return fmt.Sprintf("%q", i.Text)
	}
	return label(i.Type, i.Props)
}

func label(typ string, props fiber.Props) string {
	if id, ok := props["id"]; ok {
		return fmt.Sprintf("%s#%v", typ, id)
	}
	return typ
}

// String renders the instance and its descendants as indented markup.
func (i *Instance) String() string {
	var b strings.Builder
	i.write(&b, 0)
	return b.String()
}

func (i *Instance) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)

	if i.IsText {
		fmt.Fprintf(b, "%s%s\n", indent, i.Text)
		return
	}

	fmt.Fprintf(b, "%s<%s", indent, i.Type)
	for _, k := range slices.Sorted(maps.Keys(i.Props)) {
		v := i.Props[k]
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			continue
		}
		fmt.Fprintf(b, " %s=%q", k, fmt.Sprint(v))
	}

	if len(i.Children) == 0 {
		b.WriteString(" />\n")
		return
	}

	b.WriteString(">\n")
	for _, c := range i.Children {
		c.write(b, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, i.Type)
}

// Find returns the first descendant whose "id" prop equals id.
func (i *Instance) Find(id string) *Instance {
	stack := []*Instance{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if v, ok := n.Props["id"]; ok && fmt.Sprint(v) == id {
			return n
		}
		for j := len(n.Children) - 1; j >= 0; j-- {
			stack = append(stack, n.Children[j])
		}
	}
	return nil
}

// TextContent concatenates the text of every text descendant.
func (i *Instance) TextContent() string {
	if i.IsText {
		return i.Text
	}
	var b strings.Builder
	for _, c := range i.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

func withoutChildren(props fiber.Props) fiber.Props {
	out := make(fiber.Props, len(props))
	for k, v := range props {
		if k == "children" {
			continue
		}
		out[k] = v
	}
	return out
}
