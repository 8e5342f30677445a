package internal

import "iter"

// Tag identifies the kind of a work node.
type Tag uint8

const (
	FunctionUnit Tag = iota
	HostUnit
	HostText
	FragmentUnit
	ContextProvider
	ContextConsumer
	HostRoot
)

func (t Tag) String() string {
	switch t {
	case FunctionUnit:
		return "FunctionUnit"
	case HostUnit:
		return "HostUnit"
	case HostText:
		return "HostText"
	case FragmentUnit:
		return "Fragment"
	case ContextProvider:
		return "ContextProvider"
	case ContextConsumer:
		return "ContextConsumer"
	case HostRoot:
		return "HostRoot"
	default:
		return "Unknown"
	}
}

// Flags are the effects a node needs applied at commit.
type Flags uint32

const (
	NoFlags   Flags = 0
	Placement Flags = 1 << iota
	UpdateFlag
	ChildDeletion
	RefEffect
	Passive
	LayoutEffect
)

const (
	MutationMask = Placement | UpdateFlag | ChildDeletion | RefEffect | LayoutEffect
	LayoutMask   = UpdateFlag | RefEffect | LayoutEffect
	PassiveMask  = Passive | ChildDeletion
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Node is one position of the work tree. Each position is represented by
// at most two nodes, one per buffer, linked through alternate.
type Node struct {
	Tag         Tag
	key         string
	keyed       bool
	elementType any
	stateNode   any // host instance, text instance, or *Root for HostRoot

	parent  *Node
	child   *Node
	sibling *Node
	index   int

	ref any

	pendingProps  Props
	memoizedProps Props
	memoizedState any // *hook list head for FunctionUnit, rendered element for HostRoot
	updateQueue   any // *UpdateQueue for HostRoot, *effectList for FunctionUnit, []PropChange for HostUnit

	flags        Flags
	subtreeFlags Flags
	deletions    []*Node

	lanes      Lanes
	childLanes Lanes

	dependencies []*Context // contexts read during the last render

	alternate *Node
}

func newNode(tag Tag, props Props, key string, keyed bool) *Node {
	return &Node{
		Tag:          tag,
		key:          key,
		keyed:        keyed,
		pendingProps: props,
	}
}

// newNodeFromElement allocates a node for a description.
func newNodeFromElement(el *Element, lanes Lanes) *Node {
	tag, err := tagFor(el.Type)
	if err != nil {
		panic(err)
	}

	key, keyed := normalizeKey(el.Key)
	n := newNode(tag, el.Props, key, keyed)
	n.elementType = el.Type
	n.ref = el.Ref
	n.lanes = lanes

	return n
}

func newTextNode(text string, lanes Lanes) *Node {
	n := newNode(HostText, Props{textProp: text}, "", false)
	n.lanes = lanes
	return n
}

func newFragmentNode(children []any, key string, keyed bool, lanes Lanes) *Node {
	n := newNode(FragmentUnit, Props{childrenProp: children}, key, keyed)
	n.elementType = Fragment
	n.lanes = lanes
	return n
}

// createAlternate returns the work-in-progress twin of current, reusing the
// twin from two passes ago when there is one.
func createAlternate(current *Node, pendingProps Props) *Node {
	wip := current.alternate
	if wip == nil {
		wip = newNode(current.Tag, pendingProps, current.key, current.keyed)
		wip.elementType = current.elementType
		wip.stateNode = current.stateNode

		wip.alternate = current
		current.alternate = wip
	} else {
		wip.pendingProps = pendingProps
		wip.elementType = current.elementType

		wip.flags = NoFlags
		wip.subtreeFlags = NoFlags
		wip.deletions = nil
	}

	wip.lanes = current.lanes
	wip.childLanes = current.childLanes

	wip.child = current.child
	wip.memoizedProps = current.memoizedProps
	wip.memoizedState = current.memoizedState
	wip.updateQueue = current.updateQueue
	wip.dependencies = current.dependencies

	wip.sibling = current.sibling
	wip.index = current.index
	wip.ref = current.ref

	if q, ok := current.updateQueue.(*UpdateQueue); ok {
		wip.updateQueue = q.clone()
	}

	return wip
}

// Children iterates over the direct children of n.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for child := n.child; child != nil; child = child.sibling {
			if !yield(child) {
				return
			}
		}
	}
}

func (n *Node) Key() (string, bool)  { return n.key, n.keyed }
func (n *Node) Parent() *Node        { return n.parent }
func (n *Node) Child() *Node         { return n.child }
func (n *Node) Sibling() *Node       { return n.sibling }
func (n *Node) Index() int           { return n.index }
func (n *Node) Alternate() *Node     { return n.alternate }
func (n *Node) StateNode() any       { return n.stateNode }
func (n *Node) Flags() Flags         { return n.flags }
func (n *Node) SubtreeFlags() Flags  { return n.subtreeFlags }
func (n *Node) Deletions() []*Node   { return n.deletions }
func (n *Node) MemoizedProps() Props { return n.memoizedProps }
func (n *Node) Type() any            { return n.elementType }

// cloneChildNodes gives wip fresh twins of its current children so the
// subtree can be walked again without re-rendering wip itself.
func cloneChildNodes(wip *Node) {
	currentChild := wip.child
	if currentChild == nil {
		return
	}

	newChild := createAlternate(currentChild, currentChild.pendingProps)
	wip.child = newChild
	newChild.parent = wip

	for currentChild.sibling != nil {
		currentChild = currentChild.sibling
		next := createAlternate(currentChild, currentChild.pendingProps)
		newChild.sibling = next
		next.parent = wip
		newChild = next
	}
	newChild.sibling = nil
}

// isHost reports whether the node owns a host object.
func (n *Node) isHost() bool {
	return n.Tag == HostUnit || n.Tag == HostText
}
