package internal

// Context carries a value down the tree to every node below a provider.
type Context struct {
	defaultValue any

	Provider *providerType
	Consumer *consumerType
}

type providerType struct{ ctx *Context }
type consumerType struct{ ctx *Context }

func NewContext(defaultValue any) *Context {
	c := &Context{defaultValue: defaultValue}
	c.Provider = &providerType{c}
	c.Consumer = &consumerType{c}
	return c
}

// Default returns the value seen outside any provider.
func (c *Context) Default() any {
	return c.defaultValue
}

type contextFrame struct {
	ctx      *Context
	previous any
	had      bool
}

// contextStack scopes provider values to their subtree for one root. A
// provider pushes when it is begun and pops when it is completed, so an
// interrupted pass only needs to pop the providers on the path it
// abandoned.
type contextStack struct {
	frames []contextFrame
	values map[*Context]any
}

func newContextStack() *contextStack {
	return &contextStack{values: make(map[*Context]any)}
}

// value returns the innermost provided value of ctx, or its default.
func (s *contextStack) value(ctx *Context) any {
	if v, ok := s.values[ctx]; ok {
		return v
	}
	return ctx.defaultValue
}

func (s *contextStack) push(ctx *Context, value any) {
	previous, had := s.values[ctx]
	s.frames = append(s.frames, contextFrame{ctx: ctx, previous: previous, had: had})
	s.values[ctx] = value
}

func (s *contextStack) pop(ctx *Context) {
	n := len(s.frames) - 1
	if n < 0 || s.frames[n].ctx != ctx {
		panic("context stack: unbalanced pop")
	}

	frame := s.frames[n]
	if frame.had {
		s.values[ctx] = frame.previous
	} else {
		delete(s.values, ctx)
	}
	s.frames[n] = contextFrame{}
	s.frames = s.frames[:n]
}

// reset drops every provided value.
func (s *contextStack) reset() {
	clear(s.frames)
	s.frames = s.frames[:0]
	clear(s.values)
}

func (s *contextStack) depth() int {
	return len(s.frames)
}

func providerContext(n *Node) *Context {
	return n.elementType.(*providerType).ctx
}

func consumerContext(n *Node) *Context {
	return n.elementType.(*consumerType).ctx
}

// propagateContextChange schedules every node below provider that read ctx
// on renderLanes, so that bailouts above them do not hide the new value.
func propagateContextChange(provider *Node, ctx *Context, renderLanes Lanes) {
	node := provider.child
	if node != nil {
		node.parent = provider
	}

	for node != nil {
		var next *Node

		if readsContext(node, ctx) {
			node.lanes |= renderLanes
			if alt := node.alternate; alt != nil {
				alt.lanes |= renderLanes
			}
			scheduleContextWorkOnParentPath(node.parent, renderLanes, provider)
		}

		if node.Tag == ContextProvider && providerContext(node) == ctx {
			// a nested provider of the same context shields its subtree
			next = nil
		} else {
			next = node.child
		}

		if next != nil {
			next.parent = node
		} else {
			next = node
			for next != nil {
				if next == provider {
					next = nil
					break
				}
				if sibling := next.sibling; sibling != nil {
					sibling.parent = next.parent
					next = sibling
					break
				}
				next = next.parent
			}
		}
		node = next
	}
}

func readsContext(n *Node, ctx *Context) bool {
	if n.Tag == ContextConsumer && consumerContext(n) == ctx {
		return true
	}
	for _, dep := range n.dependencies {
		if dep == ctx {
			return true
		}
	}
	return false
}

func scheduleContextWorkOnParentPath(parent *Node, lanes Lanes, until *Node) {
	for node := parent; node != nil; node = node.parent {
		alt := node.alternate
		if IsSubsetOfLanes(node.childLanes, lanes) && (alt == nil || IsSubsetOfLanes(alt.childLanes, lanes)) {
			if node == until {
				return
			}
			continue
		}
		node.childLanes |= lanes
		if alt != nil {
			alt.childLanes |= lanes
		}
		if node == until {
			return
		}
	}
}
