package internal

// begin renders wip and returns its first child to work on next, or nil
// when wip has no children left to visit in this pass.
func (r *Root) begin(current, wip *Node, lanes Lanes) *Node {
	if current != nil && sameProps(current.memoizedProps, wip.pendingProps) && !IncludesSomeLane(wip.lanes, lanes) {
		return r.bailout(wip, lanes)
	}

	wip.lanes = NoLanes

	switch wip.Tag {
	case HostRoot:
		return r.updateHostRoot(current, wip, lanes)
	case FunctionUnit:
		component, _ := asComponent(wip.elementType)
		children := r.render.renderWithHooks(current, wip, component, wip.pendingProps, lanes)
		return r.reconcileChildren(current, wip, children, lanes)
	case HostUnit, FragmentUnit:
		return r.reconcileChildren(current, wip, wip.pendingProps.Children(), lanes)
	case ContextProvider:
		return r.updateContextProvider(current, wip, lanes)
	case ContextConsumer:
		return r.updateContextConsumer(current, wip, lanes)
	case HostText:
		return nil
	}

	panic("begin: unknown tag " + wip.Tag.String())
}

// bailout reuses the committed children of wip. Providers still push their
// value so descendants that do render read the right one.
func (r *Root) bailout(wip *Node, lanes Lanes) *Node {
	if wip.Tag == ContextProvider {
		r.contexts.push(providerContext(wip), wip.memoizedProps["value"])
	}

	if !IncludesSomeLane(wip.childLanes, lanes) {
		// nothing to do below, skip the subtree
		return nil
	}

	cloneChildNodes(wip)
	return wip.child
}

func (r *Root) updateHostRoot(current, wip *Node, lanes Lanes) *Node {
	q := wip.updateQueue.(*UpdateQueue)
	var currentQueue *UpdateQueue
	if current != nil {
		currentQueue, _ = current.updateQueue.(*UpdateQueue)
	}

	prev := wip.memoizedState
	next, skipped := q.Process(lanes, currentQueue)
	wip.memoizedState = next
	wip.lanes |= skipped

	if current != nil && current.child != nil && is(next, prev) {
		return r.bailout(wip, lanes)
	}
	return r.reconcileChildren(current, wip, next, lanes)
}

func (r *Root) updateContextProvider(current, wip *Node, lanes Lanes) *Node {
	ctx := providerContext(wip)
	value := wip.pendingProps["value"]
	r.contexts.push(ctx, value)

	if current != nil && current.memoizedProps != nil && !is(current.memoizedProps["value"], value) {
		propagateContextChange(wip, ctx, lanes)
	}

	return r.reconcileChildren(current, wip, wip.pendingProps.Children(), lanes)
}

// updateContextConsumer calls the consumer's render function, its children
// prop, with the value of the context.
func (r *Root) updateContextConsumer(current, wip *Node, lanes Lanes) *Node {
	ctx := consumerContext(wip)
	value := r.contexts.value(ctx)
	wip.dependencies = []*Context{ctx}

	var children any
	switch render := wip.pendingProps.Children().(type) {
	case func(any) any:
		children = render(value)
	case Updater:
		children = render(value)
	}

	return r.reconcileChildren(current, wip, children, lanes)
}

// reconcileChildren diffs children against the committed children of wip.
// On first mount the children are not flagged for placement; the closest
// placed ancestor inserts the whole subtree.
func (r *Root) reconcileChildren(current, wip *Node, children any, lanes Lanes) *Node {
	if current == nil {
		wip.child = r.reconcileChildList(wip, nil, children, lanes, false)
	} else {
		wip.child = r.reconcileChildList(wip, current.child, children, lanes, true)
	}
	return wip.child
}
