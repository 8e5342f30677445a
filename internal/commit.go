package internal

import (
	"time"
)

// commitRoot applies the finished tree to the host. It runs to completion:
// mutations, the buffer swap, then layout effects. Passive effects are left
// to a later task.
func (r *Root) commitRoot() {
	finished := r.finishedWork
	lanes := r.finishedLanes
	if finished == nil {
		return
	}
	r.finishedWork = nil
	r.finishedLanes = NoLanes

	start := time.Now()
	r.executing = true
	defer func() { r.executing = false }()

	if r.callbackTask != nil {
		r.scheduler.CancelCallback(r.callbackTask)
	}
	r.callbackTask = nil
	r.callbackPriority = NoPriority

	remaining := finished.lanes | finished.childLanes | r.interleaved
	r.interleaved = NoLanes
	r.lanes.markFinished(remaining)

	hasPassive := (finished.flags|finished.subtreeFlags)&PassiveMask != NoFlags

	if (finished.flags|finished.subtreeFlags)&MutationMask != NoFlags {
		r.commitMutationEffects(finished)
	}

	r.current = finished

	GetRuntime().RunWithLane(SyncLane, func() {
		if (finished.flags|finished.subtreeFlags)&LayoutMask != NoFlags {
			r.commitLayoutEffects(finished)
		}
	})

	if hasPassive || r.deferred.Len(phasePassive) > 0 || r.detached.Len() > 0 {
		r.schedulePassiveFlush(finished)
	}

	if IncludesSomeLane(r.lanes.pending, SyncLane) {
		r.nestedUpdates++
	} else {
		r.nestedUpdates = 0
	}

	commitDuration.Observe(time.Since(start).Seconds())
	r.logger.Debug("committed", "lanes", lanes.String(), "remaining", r.lanes.pending.String())

	r.executing = false
	r.ensureRootIsScheduled()
}

// walkEffects visits the nodes of the finished tree whose subtree may carry
// flags in mask. pre runs before a node's children, post after them. Parent
// links are repaired on the way down, since reused subtrees may still point
// at the other buffer.
func walkEffects(root *Node, mask Flags, pre, post func(*Node)) {
	node := root
	for {
		if pre != nil {
			pre(node)
		}
		if node.subtreeFlags&mask != NoFlags && node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}

		for {
			if post != nil {
				post(node)
			}
			if node == root {
				return
			}
			if sibling := node.sibling; sibling != nil {
				sibling.parent = node.parent
				node = sibling
				break
			}
			node = node.parent
		}
	}
}

// walkSubtree visits root and its descendants, descending into a node only
// when visit returns true.
func walkSubtree(root *Node, visit func(*Node) bool) {
	node := root
	for {
		if visit(node) && node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}

		for {
			if node == root {
				return
			}
			if sibling := node.sibling; sibling != nil {
				sibling.parent = node.parent
				node = sibling
				break
			}
			node = node.parent
		}
	}
}

func (r *Root) commitMutationEffects(finished *Node) {
	walkEffects(finished, MutationMask,
		func(n *Node) {
			for _, deleted := range n.deletions {
				r.commitDeletion(n, deleted)
			}
		},
		r.commitMutationOnNode,
	)
}

func (r *Root) commitMutationOnNode(n *Node) {
	flags := n.flags
	current := n.alternate

	if flags.Has(Placement) {
		r.commitPlacement(n)
		n.flags &^= Placement
	}

	switch n.Tag {
	case FunctionUnit:
		if flags.Has(LayoutEffect) && current != nil {
			commitHookEffectListUnmount(hookLayout|hookHasEffect, n)
		}

	case HostUnit:
		if flags.Has(RefEffect) && current != nil {
			detachRef(current)
		}
		if flags.Has(UpdateFlag) && current != nil && n.stateNode != nil {
			payload, _ := n.updateQueue.([]PropChange)
			n.updateQueue = nil
			if payload != nil {
				r.host.CommitUpdate(n.stateNode, payload, n.elementType.(string), current.memoizedProps, n.memoizedProps)
			}
		}

	case HostText:
		if flags.Has(UpdateFlag) && current != nil {
			oldText, _ := current.memoizedProps[textProp].(string)
			newText, _ := n.memoizedProps[textProp].(string)
			r.host.CommitTextUpdate(n.stateNode, oldText, newText)
		}
	}
}

// commitDeletion removes the host objects of a deleted subtree and runs its
// cleanups: refs and layout effects now, passive effects on the next flush.
func (r *Root) commitDeletion(parent, deleted *Node) {
	hostParent := r.hostInstanceOf(hostParentOf(parent))

	walkSubtree(deleted, func(n *Node) bool {
		if n.isHost() {
			r.host.RemoveChild(hostParent, n.stateNode)
			return false
		}
		return true
	})

	walkSubtree(deleted, func(n *Node) bool {
		switch n.Tag {
		case HostUnit:
			detachRef(n)
		case FunctionUnit:
			commitHookEffectListUnmount(hookLayout, n)
			collectDestroys(hookPassive, n, r.deferred, phasePassive)
		}
		return true
	})

	r.detached.Enqueue(deleted)
}

// hostParentOf returns the closest ancestor of n owning a host object. For
// nodes directly below the root it is the HostRoot.
func hostParentOf(n *Node) *Node {
	for node := n; node != nil; node = node.parent {
		if node.Tag == HostUnit || node.Tag == HostRoot {
			return node
		}
	}
	panic("commit: node has no host parent")
}

func (r *Root) hostInstanceOf(n *Node) any {
	if n.Tag == HostRoot {
		return r.container
	}
	return n.stateNode
}

// commitPlacement inserts the top-most host objects of n into its host
// parent, before the first following host sibling that stays in place.
func (r *Root) commitPlacement(n *Node) {
	parent := r.hostInstanceOf(hostParentOf(n.parent))
	before := hostSibling(n)

	walkSubtree(n, func(node *Node) bool {
		if !node.isHost() {
			return true
		}
		if before != nil {
			r.host.InsertBefore(parent, node.stateNode, before)
		} else {
			r.host.AppendChild(parent, node.stateNode)
		}
		return false
	})
}

// hostSibling finds the host object n must be inserted before. Siblings that
// are themselves being placed are skipped: they are not in the host tree
// yet.
func hostSibling(n *Node) any {
	node := n

siblings:
	for {
		for node.sibling == nil {
			if node.parent == nil || node.parent.Tag == HostUnit || node.parent.Tag == HostRoot {
				return nil
			}
			node = node.parent
		}

		node.sibling.parent = node.parent
		node = node.sibling

		for !node.isHost() {
			if node.flags.Has(Placement) || node.child == nil {
				continue siblings
			}
			node.child.parent = node
			node = node.child
		}

		if !node.flags.Has(Placement) {
			return node.stateNode
		}
	}
}

func (r *Root) commitLayoutEffects(finished *Node) {
	walkEffects(finished, LayoutMask, nil, func(n *Node) {
		flags := n.flags
		current := n.alternate

		switch n.Tag {
		case FunctionUnit:
			if flags.Has(LayoutEffect) {
				commitHookEffectListMount(hookLayout|hookHasEffect, n)
			}

		case HostUnit:
			if flags.Has(UpdateFlag) && current == nil {
				r.host.CommitMount(n.stateNode, n.elementType.(string), n.memoizedProps)
			}
			if flags.Has(RefEffect) {
				attachRef(n)
			}
		}
	})
}

func attachRef(n *Node) {
	switch ref := n.ref.(type) {
	case *Ref:
		ref.Current = n.stateNode
	case func(any):
		ref(n.stateNode)
	}
}

func detachRef(n *Node) {
	switch ref := n.ref.(type) {
	case *Ref:
		ref.Current = nil
	case func(any):
		ref(nil)
	}
}

// schedulePassiveFlush queues the passive effects of finished to run after
// the host had a chance to paint.
func (r *Root) schedulePassiveFlush(finished *Node) {
	r.passiveRoot = finished
	if r.passiveTask != nil {
		return
	}

	r.passiveTask = r.scheduler.ScheduleCallback(NormalPriority, func(bool) Callback {
		r.passiveTask = nil
		r.FlushPassiveEffects()
		return nil
	})
}

// FlushPassiveEffects runs pending passive cleanups, then pending passive
// creates, for the last commit. It reports whether there was anything to
// run.
func (r *Root) FlushPassiveEffects() bool {
	return r.flushPassiveEffects()
}

func (r *Root) flushPassiveEffects() bool {
	root := r.passiveRoot
	if root == nil && r.deferred.Len(phasePassive) == 0 && r.detached.Len() == 0 {
		return false
	}
	r.passiveRoot = nil
	if r.passiveTask != nil {
		r.scheduler.CancelCallback(r.passiveTask)
		r.passiveTask = nil
	}

	r.deferred.Run(phasePassive)

	if root != nil {
		walkEffects(root, PassiveMask, nil, func(n *Node) {
			if n.Tag == FunctionUnit && n.flags.Has(Passive) {
				commitHookEffectListUnmount(hookPassive|hookHasEffect, n)
			}
		})
		walkEffects(root, PassiveMask, nil, func(n *Node) {
			if n.Tag == FunctionUnit && n.flags.Has(Passive) {
				commitHookEffectListMount(hookPassive|hookHasEffect, n)
			}
		})
	}

	r.detached.Detach()
	return true
}
