package internal

type hookFlags uint8

const (
	hookHasEffect hookFlags = 1 << iota // deps changed, run this commit
	hookLayout
	hookPassive
)

// effect is one UseEffect or UseLayoutEffect slot. destroy is the cleanup
// returned by the last create that ran.
type effect struct {
	tag     hookFlags
	create  func() func()
	destroy func()
	deps    []any

	next *effect
}

// effectList is a circular list of the effects of one render, in call order.
// last points at the most recent effect; last.next is the first.
type effectList struct {
	last *effect
}

func (l *effectList) push(tag hookFlags, create func() func(), destroy func(), deps []any) *effect {
	e := &effect{tag: tag, create: create, destroy: destroy, deps: deps}

	if l.last == nil {
		e.next = e
	} else {
		e.next = l.last.next
		l.last.next = e
	}
	l.last = e

	return e
}

// each visits effects whose tag includes every bit of flags.
func (l *effectList) each(flags hookFlags, fn func(*effect)) {
	if l == nil || l.last == nil {
		return
	}

	first := l.last.next
	e := first
	for {
		if e.tag&flags == flags {
			fn(e)
		}
		e = e.next
		if e == first {
			return
		}
	}
}

func effectsOf(n *Node) *effectList {
	list, _ := n.updateQueue.(*effectList)
	return list
}

// commitHookEffectListUnmount runs the cleanups of the effects of n matching
// flags.
func commitHookEffectListUnmount(flags hookFlags, n *Node) {
	effectsOf(n).each(flags, func(e *effect) {
		if destroy := e.destroy; destroy != nil {
			e.destroy = nil
			destroy()
		}
	})
}

// commitHookEffectListMount runs the creates of the effects of n matching
// flags and keeps their cleanups.
func commitHookEffectListMount(flags hookFlags, n *Node) {
	effectsOf(n).each(flags, func(e *effect) {
		e.destroy = e.create()
	})
}

// collectDestroys takes every pending cleanup of n matching flags, so that it
// can run after n is gone.
func collectDestroys(flags hookFlags, n *Node, q *effectQueue, phase effectPhase) {
	effectsOf(n).each(flags, func(e *effect) {
		if destroy := e.destroy; destroy != nil {
			e.destroy = nil
			q.Enqueue(phase, destroy)
		}
	})
}
