package internal

// complete finishes wip after all of its children: host objects are created
// or diffed here, and flags and lanes bubble up to the parent.
func (r *Root) complete(current, wip *Node) {
	switch wip.Tag {
	case HostUnit:
		typ := wip.elementType.(string)
		if current != nil && wip.stateNode != nil {
			updateHostUnit(current, wip)
			break
		}

		instance := r.host.CreateInstance(typ, wip.pendingProps)
		r.appendAllChildren(instance, wip)
		wip.stateNode = instance

		if r.host.FinalizeInitialChildren(instance, typ, wip.pendingProps) {
			wip.flags |= UpdateFlag
		}
		if wip.ref != nil {
			wip.flags |= RefEffect
		}

	case HostText:
		text, _ := wip.pendingProps[textProp].(string)
		if current != nil && wip.stateNode != nil {
			if old, _ := current.memoizedProps[textProp].(string); old != text {
				wip.flags |= UpdateFlag
			}
			break
		}
		wip.stateNode = r.host.CreateTextInstance(text)

	case ContextProvider:
		r.contexts.pop(providerContext(wip))
	}

	bubbleProperties(current, wip)
}

// updateHostUnit stores the prop changes of an existing host object as its
// update payload.
func updateHostUnit(current, wip *Node) {
	wip.updateQueue = nil

	if !sameProps(current.memoizedProps, wip.pendingProps) {
		if payload := DiffProps(current.memoizedProps, wip.pendingProps); payload != nil {
			wip.updateQueue = payload
			wip.flags |= UpdateFlag
		}
	}

	if !is(current.ref, wip.ref) {
		wip.flags |= RefEffect
	}
}

// appendAllChildren attaches the top-most host descendants of wip to
// instance, looking through non-host nodes.
func (r *Root) appendAllChildren(instance any, wip *Node) {
	node := wip.child
	for node != nil {
		if node.isHost() {
			r.host.AppendInitialChild(instance, node.stateNode)
		} else if node.child != nil {
			node.child.parent = node
			node = node.child
			continue
		}

		for node.sibling == nil {
			if node.parent == nil || node.parent == wip {
				return
			}
			node = node.parent
		}
		node.sibling.parent = node.parent
		node = node.sibling
	}
}

// bubbleProperties collects the flags and pending lanes of the children of
// wip. A subtree reused as is keeps its committed flags out of the sum.
func bubbleProperties(current, wip *Node) {
	bailedOut := current != nil && current.child == wip.child

	var subtreeFlags Flags
	var childLanes Lanes

	for child := wip.child; child != nil; child = child.sibling {
		childLanes |= child.lanes | child.childLanes
		if !bailedOut {
			subtreeFlags |= child.subtreeFlags | child.flags
		}
		child.parent = wip
	}

	wip.subtreeFlags |= subtreeFlags
	wip.childLanes = childLanes
}
