package internal

type effectPhase int

const (
	phaseLayout effectPhase = iota
	phasePassive
)

// effectQueue holds callbacks deferred to a later commit phase, such as the
// cleanups of deleted subtrees.
type effectQueue struct {
	effects map[effectPhase][]func()
}

func newEffectQueue() *effectQueue {
	effects := make(map[effectPhase][]func())
	effects[phaseLayout] = make([]func(), 0)
	effects[phasePassive] = make([]func(), 0)

	return &effectQueue{effects}
}

func (q *effectQueue) Enqueue(phase effectPhase, fn func()) {
	q.effects[phase] = append(q.effects[phase], fn)
}

func (q *effectQueue) Len(phase effectPhase) int {
	return len(q.effects[phase])
}

// Run runs and clears the callbacks of phase. Callbacks enqueued while
// running are kept for the next Run.
func (q *effectQueue) Run(phase effectPhase) {
	effects := q.effects[phase]
	q.effects[phase] = make([]func(), 0)

	for _, effect := range effects {
		effect()
	}
}

// nodeQueue collects nodes whose links are cut once the passive phase that
// may still reach them has run.
type nodeQueue struct {
	nodes []*Node
}

func (q *nodeQueue) Enqueue(n *Node) {
	q.nodes = append(q.nodes, n)
}

func (q *nodeQueue) Len() int {
	return len(q.nodes)
}

func (q *nodeQueue) Detach() {
	nodes := q.nodes
	q.nodes = nil

	for _, n := range nodes {
		detachNode(n)
	}
}

// detachNode cuts the links of a deleted subtree root and its twin.
func detachNode(n *Node) {
	if alt := n.alternate; alt != nil {
		n.alternate = nil
		alt.alternate = nil
		detachLinks(alt)
	}
	detachLinks(n)
}

func detachLinks(n *Node) {
	n.parent = nil
	n.child = nil
	n.sibling = nil
	n.deletions = nil
	n.dependencies = nil
	n.stateNode = nil
	n.memoizedState = nil
	n.updateQueue = nil
}
