package internal

import (
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// Lanes is a bitmask of priority channels. Lower bits are more urgent.
type Lanes uint32

// Lane is a Lanes value with exactly one bit set (or none).
type Lane = Lanes

const TotalLanes = 31

const (
	NoLanes Lanes = 0
	NoLane  Lane  = 0

	SyncLane            Lane = 1 << 0
	InputContinuousLane Lane = 1 << 1
	DefaultLane         Lane = 1 << 2

	TransitionLanes  Lanes = 0b0000000_0000_0111_1111_1111_1111_1000
	TransitionLane1  Lane  = 1 << 3
	TransitionLane2  Lane  = 1 << 4
	TransitionLane3  Lane  = 1 << 5
	TransitionLane4  Lane  = 1 << 6
	TransitionLane5  Lane  = 1 << 7
	TransitionLane6  Lane  = 1 << 8
	TransitionLane7  Lane  = 1 << 9
	TransitionLane8  Lane  = 1 << 10
	TransitionLane9  Lane  = 1 << 11
	TransitionLane10 Lane  = 1 << 12
	TransitionLane11 Lane  = 1 << 13
	TransitionLane12 Lane  = 1 << 14
	TransitionLane13 Lane  = 1 << 15
	TransitionLane14 Lane  = 1 << 16
	TransitionLane15 Lane  = 1 << 17
	TransitionLane16 Lane  = 1 << 18

	RetryLanes Lanes = 0b0000000_1111_1000_0000_0000_0000_0000
	RetryLane1 Lane  = 1 << 19
	RetryLane2 Lane  = 1 << 20
	RetryLane3 Lane  = 1 << 21
	RetryLane4 Lane  = 1 << 22
	RetryLane5 Lane  = 1 << 23

	SelectiveHydrationLane Lane = 1 << 24

	NonIdleLanes Lanes = 0b0000001_1111_1111_1111_1111_1111_1111

	IdleLane      Lane = 1 << 28
	OffscreenLane Lane = 1 << 29

	AllLanes Lanes = 0x7fffffff
)

// blocking lanes are rendered without yielding
const blockingLanes = SyncLane | InputContinuousLane | DefaultLane

func MergeLanes(a, b Lanes) Lanes     { return a | b }
func IntersectLanes(a, b Lanes) Lanes { return a & b }
func RemoveLanes(set, subset Lanes) Lanes {
	return set &^ subset
}

func IncludesSomeLane(a, b Lanes) bool { return a&b != NoLanes }

func IsSubsetOfLanes(set, subset Lanes) bool { return set&subset == subset }

// GetHighestPriorityLane isolates the lowest set bit.
func GetHighestPriorityLane(lanes Lanes) Lane {
	return lanes & -lanes
}

// LaneToIndex returns the bit position of a single lane.
func LaneToIndex(lane Lane) int {
	return bits.TrailingZeros32(uint32(lane))
}

func includesBlockingLane(lanes Lanes) bool {
	return lanes&blockingLanes != NoLanes
}

func isTransitionLane(lane Lane) bool { return lane&TransitionLanes != NoLanes }

var laneNames = [TotalLanes]string{
	0:  "Sync",
	1:  "InputContinuous",
	2:  "Default",
	19: "Retry1",
	20: "Retry2",
	21: "Retry3",
	22: "Retry4",
	23: "Retry5",
	24: "SelectiveHydration",
	28: "Idle",
	29: "Offscreen",
}

func (l Lanes) String() string {
	if l == NoLanes {
		return "NoLanes"
	}

	var names []string
	for lanes := l; lanes != NoLanes; {
		lane := GetHighestPriorityLane(lanes)
		lanes &^= lane

		idx := LaneToIndex(lane)
		switch {
		case isTransitionLane(lane):
			names = append(names, "Transition"+strconv.Itoa(idx-2))
		case laneNames[idx] != "":
			names = append(names, laneNames[idx])
		default:
			names = append(names, "Lane"+strconv.Itoa(idx))
		}
	}

	return strings.Join(names, "|")
}

// laneTimeout is how long an update on the lane may wait before it is
// considered starved and rendered without yielding.
func laneTimeout(lane Lane) time.Duration {
	switch {
	case lane&(SyncLane|InputContinuousLane) != NoLanes:
		return 250 * time.Millisecond
	case lane == DefaultLane, isTransitionLane(lane):
		return 5 * time.Second
	default:
		// retries, idle and offscreen never expire
		return -1
	}
}

// LanesToPriority maps the most urgent lane to a scheduler priority.
func LanesToPriority(lanes Lanes) Priority {
	lane := GetHighestPriorityLane(lanes)
	switch {
	case lane == SyncLane:
		return ImmediatePriority
	case lane == InputContinuousLane:
		return UserBlockingPriority
	case lane&NonIdleLanes != NoLanes:
		return NormalPriority
	default:
		return IdlePriority
	}
}

// laneBook tracks the pending lanes of one root.
type laneBook struct {
	pending  Lanes
	expired  Lanes
	expireAt [TotalLanes]time.Duration // -1 when not set

	nextTransition Lane
}

func newLaneBook() *laneBook {
	b := &laneBook{nextTransition: TransitionLane1}
	for i := range b.expireAt {
		b.expireAt[i] = -1
	}
	return b
}

func (b *laneBook) markUpdated(lane Lane) {
	b.pending |= lane
}

// markStarved stamps fresh lanes with an expiration time and moves
// overdue ones into the expired set.
func (b *laneBook) markStarved(now time.Duration) {
	for lanes := b.pending; lanes != NoLanes; {
		lane := GetHighestPriorityLane(lanes)
		lanes &^= lane
		idx := LaneToIndex(lane)

		if b.expireAt[idx] == -1 {
			if timeout := laneTimeout(lane); timeout >= 0 {
				b.expireAt[idx] = now + timeout
			}
			continue
		}
		if b.expireAt[idx] <= now {
			b.expired |= lane
		}
	}
}

// next picks the lanes the following pass should render.
func (b *laneBook) next() Lanes {
	pending := b.pending
	if pending == NoLanes {
		return NoLanes
	}

	candidates := pending & NonIdleLanes
	if candidates == NoLanes {
		candidates = pending
	}

	lane := GetHighestPriorityLane(candidates)
	if isTransitionLane(lane) {
		// transitions are rendered together
		return pending & TransitionLanes
	}
	return lane
}

func (b *laneBook) includesExpired(lanes Lanes) bool {
	return IncludesSomeLane(b.expired, lanes)
}

// markFinished keeps only lanes that still have work after a commit.
func (b *laneBook) markFinished(remaining Lanes) {
	done := b.pending &^ remaining
	b.pending = remaining
	b.expired &= remaining

	for lanes := done; lanes != NoLanes; {
		lane := GetHighestPriorityLane(lanes)
		lanes &^= lane
		b.expireAt[LaneToIndex(lane)] = -1
	}
}

func (b *laneBook) claimTransition() Lane {
	lane := b.nextTransition
	b.nextTransition <<= 1
	if b.nextTransition&TransitionLanes == NoLanes {
		b.nextTransition = TransitionLane1
	}
	return lane
}
