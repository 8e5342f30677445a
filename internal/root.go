package internal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrNestedUpdateLimit is raised when commits keep scheduling synchronous
// updates on the same root, usually a layout effect setting state
// unconditionally.
var ErrNestedUpdateLimit = errors.New("maximum update depth exceeded")

// Root owns one rendered tree: its committed buffer, its pending lanes and
// the state of the pass in progress.
type Root struct {
	id        uuid.UUID
	container any
	host      HostConfig
	scheduler *Scheduler
	config    ReconcilerConfig
	logger    *slog.Logger

	current *Node
	lanes   *laneBook

	callbackTask     *Task
	callbackPriority Priority

	// pass in progress
	wip         *Node
	wipRoot     *Node
	wipLanes    Lanes
	passActive  bool
	interleaved Lanes // lanes updated while the pass was running
	contexts    *contextStack
	render      renderState

	finishedWork  *Node
	finishedLanes Lanes

	passiveRoot *Node
	passiveTask *Task
	deferred    *effectQueue
	detached    nodeQueue

	batcher       batcher
	executing     bool
	nestedUpdates int
}

type RootOption func(*Root)

func WithRootConfig(c ReconcilerConfig) RootOption {
	return func(r *Root) { r.config = c }
}

func WithRootLogger(l *slog.Logger) RootOption {
	return func(r *Root) { r.logger = l }
}

// NewRoot creates a root rendering into container through host. Work is
// scheduled on scheduler.
func NewRoot(container any, host HostConfig, scheduler *Scheduler, opts ...RootOption) *Root {
	r := &Root{
		id:        uuid.New(),
		container: container,
		host:      host,
		scheduler: scheduler,
		config:    DefaultConfig().Reconciler,
		lanes:     newLaneBook(),
		contexts:  newContextStack(),
		deferred:  newEffectQueue(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("root", r.id.String())
	r.render.root = r

	r.current = newNode(HostRoot, nil, "", false)
	r.current.stateNode = r
	r.current.updateQueue = NewUpdateQueue(nil)

	return r
}

func (r *Root) ID() uuid.UUID         { return r.id }
func (r *Root) Container() any        { return r.container }
func (r *Root) Current() *Node        { return r.current }
func (r *Root) Scheduler() *Scheduler { return r.scheduler }

// PendingLanes returns the lanes with work not yet committed.
func (r *Root) PendingLanes() Lanes { return r.lanes.pending }

// Render schedules tree to replace the rendered tree. It is rendered at
// SyncLane unless called inside a lane scope.
func (r *Root) Render(tree any) {
	lane := GetRuntime().UpdateLane()
	if lane == NoLane {
		lane = SyncLane
	}

	q := r.current.updateQueue.(*UpdateQueue)
	q.Enqueue(&Update{Lane: lane, Payload: tree})
	r.scheduleUpdateOnNode(r.current, lane)
}

// Unmount schedules the removal of everything rendered into the container.
func (r *Root) Unmount() {
	r.Render(nil)
}

// FlushSync runs fn with its updates at SyncLane and renders and commits
// them before returning.
func (r *Root) FlushSync(fn func()) {
	if fn != nil {
		GetRuntime().RunWithLane(SyncLane, func() {
			r.Batch(fn)
		})
	}
	r.flushSyncWork()
}

// StartTransition runs fn with its updates on a transition lane. They are
// rendered in time slices and give way to more urgent updates.
func (r *Root) StartTransition(fn func()) {
	GetRuntime().RunWithLane(r.lanes.claimTransition(), fn)
}

// ContinuousUpdates runs fn with its updates at the priority of continuous
// input such as drags or scrolls.
func (r *Root) ContinuousUpdates(fn func()) {
	GetRuntime().RunWithLane(InputContinuousLane, fn)
}

func (r *Root) flushSyncWork() {
	for !r.executing && IncludesSomeLane(r.lanes.next(), SyncLane) {
		r.performWorkOnRoot(false)
	}
}

func (r *Root) requestUpdateLane() Lane {
	if lane := GetRuntime().UpdateLane(); lane != NoLane {
		return lane
	}
	return DefaultLane
}

// dispatchUpdate enqueues payload on a hook queue of node.
func (r *Root) dispatchUpdate(node *Node, q *UpdateQueue, payload any) {
	lane := r.requestUpdateLane()
	q.Enqueue(&Update{Lane: lane, Payload: payload})
	r.scheduleUpdateOnNode(node, lane)
}

func (r *Root) scheduleUpdateOnNode(node *Node, lane Lane) {
	if limit := r.config.NestedUpdateLimit; limit > 0 && r.nestedUpdates > limit {
		r.nestedUpdates = 0
		panic(fmt.Errorf("%w: more than %d synchronous re-renders", ErrNestedUpdateLimit, limit))
	}

	if markUpdateLaneFromNodeToRoot(node, lane) == nil {
		r.logger.Warn("update on an unmounted node dropped", "tag", node.Tag.String(), "lane", lane.String())
		return
	}

	r.lanes.markUpdated(lane)
	if r.passActive {
		r.interleaved |= lane
	}

	if r.batcher.hold(lane) || r.executing {
		return
	}
	r.ensureRootIsScheduled()
}

// markUpdateLaneFromNodeToRoot records lane on node and on the child lanes
// of its ancestors, in both buffers. It returns the HostRoot reached, or nil
// when node is no longer attached.
func markUpdateLaneFromNodeToRoot(node *Node, lane Lane) *Node {
	node.lanes |= lane
	if alt := node.alternate; alt != nil {
		alt.lanes |= lane
	}

	top := node
	for parent := node.parent; parent != nil; parent = parent.parent {
		parent.childLanes |= lane
		if alt := parent.alternate; alt != nil {
			alt.childLanes |= lane
		}
		top = parent
	}

	if top.Tag == HostRoot {
		return top
	}
	return nil
}

// ensureRootIsScheduled makes sure a task exists for the most urgent
// pending lanes, replacing a task scheduled at another priority.
func (r *Root) ensureRootIsScheduled() {
	r.lanes.markStarved(r.scheduler.Now())
	next := r.lanes.next()

	if next == NoLanes {
		if r.callbackTask != nil {
			r.scheduler.CancelCallback(r.callbackTask)
		}
		r.callbackTask = nil
		r.callbackPriority = NoPriority
		return
	}

	priority := LanesToPriority(next)
	if r.callbackTask != nil && r.callbackPriority == priority {
		return
	}
	if r.callbackTask != nil {
		r.scheduler.CancelCallback(r.callbackTask)
	}

	r.callbackTask = r.scheduler.ScheduleCallback(priority, r.performWorkOnRoot)
	r.callbackPriority = priority
}

// performWorkOnRoot is the scheduler task of a root. Blocking or expired
// lanes are rendered in one go; others yield between units and resume
// through the returned continuation.
func (r *Root) performWorkOnRoot(didTimeout bool) Callback {
	task := r.callbackTask

	if r.flushPassiveEffects() && r.callbackTask != task {
		// passive effects scheduled more urgent work
		return nil
	}

	lanes := r.lanes.next()
	if lanes == NoLanes {
		if r.callbackTask == task {
			r.callbackTask = nil
			r.callbackPriority = NoPriority
		}
		return nil
	}

	timeSliced := !includesBlockingLane(lanes) && !r.lanes.includesExpired(lanes) && !didTimeout

	var done bool
	if timeSliced {
		done = r.renderRootConcurrent(lanes)
	} else {
		r.renderRootSync(lanes)
		done = true
	}

	if done {
		r.commitRoot()
	} else {
		r.ensureRootIsScheduled()
	}

	if task != nil && r.callbackTask == task {
		return r.performWorkOnRoot
	}
	return nil
}

func (r *Root) renderRootSync(lanes Lanes) {
	r.executing = true
	defer func() { r.executing = false }()
	defer r.abortOnPanic()

	if !r.passActive || r.wipLanes != lanes {
		r.prepareFreshStack(lanes)
	}

	for r.wip != nil {
		r.performUnitOfWork(r.wip)
	}
	r.finishPass()
}

func (r *Root) renderRootConcurrent(lanes Lanes) bool {
	r.executing = true
	defer func() { r.executing = false }()
	defer r.abortOnPanic()

	if !r.passActive || r.wipLanes != lanes {
		r.prepareFreshStack(lanes)
	}

	for r.wip != nil && !r.scheduler.ShouldYield() {
		r.performUnitOfWork(r.wip)
	}
	if r.wip != nil {
		renderPasses.WithLabelValues("yielded").Inc()
		return false
	}

	r.finishPass()
	return true
}

// prepareFreshStack throws away any pass in progress and starts a new one
// from the committed tree.
func (r *Root) prepareFreshStack(lanes Lanes) {
	if r.passActive {
		r.logger.Debug("render pass interrupted", "lanes", r.wipLanes.String(), "by", lanes.String())
		renderPasses.WithLabelValues("interrupted").Inc()
	}

	r.contexts.reset()
	r.render.reset()
	r.finishedWork = nil
	r.finishedLanes = NoLanes
	r.interleaved = NoLanes

	r.wipRoot = createAlternate(r.current, r.current.pendingProps)
	r.wip = r.wipRoot
	r.wipLanes = lanes
	r.passActive = true

	r.logger.Debug("render pass started", "lanes", lanes.String())
}

func (r *Root) finishPass() {
	r.finishedWork = r.wipRoot
	r.finishedLanes = r.wipLanes

	r.wip = nil
	r.wipRoot = nil
	r.wipLanes = NoLanes
	r.passActive = false

	renderPasses.WithLabelValues("completed").Inc()
	r.logger.Debug("render pass completed", "lanes", r.finishedLanes.String())
}

// abortOnPanic resets the pass when a component or the host panics, so the
// next pass starts again from the committed tree, and re-panics.
func (r *Root) abortOnPanic() {
	p := recover()
	if p == nil {
		return
	}

	r.contexts.reset()
	r.render.reset()
	r.wip = nil
	r.wipRoot = nil
	r.wipLanes = NoLanes
	r.passActive = false
	r.callbackTask = nil
	r.callbackPriority = NoPriority

	renderPasses.WithLabelValues("aborted").Inc()
	panic(p)
}

func (r *Root) performUnitOfWork(unit *Node) {
	current := unit.alternate
	next := r.begin(current, unit, r.wipLanes)
	unit.memoizedProps = unit.pendingProps
	unitsOfWork.Inc()

	if next == nil {
		r.completeUnitOfWork(unit)
	} else {
		r.wip = next
	}
}

// completeUnitOfWork completes unit and the ancestors it was the last child
// of, then moves to the next sibling to begin.
func (r *Root) completeUnitOfWork(unit *Node) {
	node := unit
	for node != nil {
		r.complete(node.alternate, node)

		if node == r.wipRoot {
			r.wip = nil
			return
		}
		if sibling := node.sibling; sibling != nil {
			r.wip = sibling
			return
		}
		node = node.parent
	}
	r.wip = nil
}
