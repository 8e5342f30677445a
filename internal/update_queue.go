package internal

// Updater derives the next state from the previous one.
type Updater func(prev any) any

// Update is one pending state change.
type Update struct {
	Lane    Lane
	Payload any

	next *Update
}

func (u *Update) apply(state any) any {
	switch fn := u.Payload.(type) {
	case Updater:
		return fn(state)
	case func(any) any:
		return fn(state)
	default:
		return u.Payload
	}
}

// sharedQueue holds updates not yet seen by any pass. Both buffers of a
// node point at the same one.
type sharedQueue struct {
	pending *Update // newest, pending.next is the oldest
	lanes   Lanes
}

// UpdateQueue is a per-buffer view over a shared mailbox of updates.
//
// BaseState and the base queue hold what is left after updates were skipped
// for lack of priority; they are rebased on by the next pass that includes
// the skipped lanes.
type UpdateQueue struct {
	BaseState any

	baseQueue *Update // circular, newest
	shared    *sharedQueue
}

func NewUpdateQueue(base any) *UpdateQueue {
	return &UpdateQueue{
		BaseState: base,
		shared:    &sharedQueue{},
	}
}

// clone returns a queue for the other buffer sharing the same mailbox.
func (q *UpdateQueue) clone() *UpdateQueue {
	return &UpdateQueue{
		BaseState: q.BaseState,
		baseQueue: q.baseQueue,
		shared:    q.shared,
	}
}

// Enqueue inserts at the head of the circular pending list.
func (q *UpdateQueue) Enqueue(u *Update) {
	head := q.shared.pending
	if head == nil {
		u.next = u
	} else {
		u.next = head.next
		head.next = u
	}
	q.shared.pending = u
	q.shared.lanes |= u.Lane
}

// HasPending reports whether updates are waiting in the mailbox.
func (q *UpdateQueue) HasPending() bool {
	return q.shared.pending != nil
}

// PendingLanes returns the union of lanes in the mailbox.
func (q *UpdateQueue) PendingLanes() Lanes {
	return q.shared.lanes
}

// appendCircular splices b after a and returns the new newest update.
func appendCircular(a, b *Update) *Update {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	aFirst := a.next
	a.next = b.next
	b.next = aFirst
	return b
}

// Process folds the queue into a new state, oldest first.
//
// Updates outside renderLanes are skipped and stay in the base queue
// together with every update after them, so they are reapplied in order when
// their lane renders. When current is non-nil the drained updates are also
// appended to its base queue, which keeps them alive if this pass is thrown
// away. The returned lanes are those of skipped updates.
func (q *UpdateQueue) Process(renderLanes Lanes, current *UpdateQueue) (any, Lanes) {
	if pending := q.shared.pending; pending != nil {
		q.shared.pending = nil
		q.shared.lanes = NoLanes

		q.baseQueue = appendCircular(q.baseQueue, pending)
		if current != nil && current != q {
			current.baseQueue = q.baseQueue
		}
	}

	last := q.baseQueue
	if last == nil {
		return q.BaseState, NoLanes
	}

	var (
		newState     = q.BaseState
		newBaseState any
		newBaseQueue *Update
		skipped      Lanes
	)

	first := last.next
	for u := first; ; u = u.next {
		if !IsSubsetOfLanes(renderLanes, u.Lane) {
			clone := &Update{Lane: u.Lane, Payload: u.Payload}
			if newBaseQueue == nil {
				newBaseState = newState
			}
			newBaseQueue = appendCircular(newBaseQueue, selfLoop(clone))
			skipped |= u.Lane
		} else {
			if newBaseQueue != nil {
				// must be reapplied on rebase, whatever lane rebases
				newBaseQueue = appendCircular(newBaseQueue, selfLoop(&Update{Lane: NoLane, Payload: u.Payload}))
			}
			newState = u.apply(newState)
		}

		if u == last {
			break
		}
	}

	if newBaseQueue == nil {
		newBaseState = newState
	}
	q.BaseState = newBaseState
	q.baseQueue = newBaseQueue

	return newState, skipped
}

func selfLoop(u *Update) *Update {
	u.next = u
	return u
}

// ProcessUpdateQueue folds every update of q into base and clears q.
func ProcessUpdateQueue(base any, q *UpdateQueue) any {
	q.BaseState = base
	state, _ := q.Process(AllLanes, nil)
	return state
}
