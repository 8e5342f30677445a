package internal

import (
	"maps"
	"slices"
	"strings"
)

// HostConfig creates and mutates the concrete objects a tree renders to.
// The container a root renders into is treated as one more instance.
//
// Methods may panic; the runtime does not recover host failures.
type HostConfig interface {
	CreateInstance(typ string, props Props) any
	CreateTextInstance(text string) any

	// AppendInitialChild attaches a child to an instance that is not yet
	// part of the visible tree.
	AppendInitialChild(parent, child any)

	// FinalizeInitialChildren runs after all initial children are attached.
	// Returning true asks for CommitMount once the instance is placed.
	FinalizeInitialChildren(instance any, typ string, props Props) bool

	CommitMount(instance any, typ string, props Props)
	CommitUpdate(instance any, payload []PropChange, typ string, oldProps, newProps Props)
	CommitTextUpdate(instance any, oldText, newText string)

	AppendChild(parent, child any)
	InsertBefore(parent, child, before any)
	RemoveChild(parent, child any)
}

// PropChange is one entry of an update payload. Removed is set when the
// property is absent from the new props.
type PropChange struct {
	Key     string
	Value   any
	Removed bool
}

// DiffProps compares props key by key, ignoring children, and returns the
// changes in key order. It returns nil when nothing changed.
func DiffProps(oldProps, newProps Props) []PropChange {
	var changes []PropChange

	for _, k := range slices.Sorted(maps.Keys(oldProps)) {
		if k == childrenProp {
			continue
		}
		if _, ok := newProps[k]; !ok {
			changes = append(changes, PropChange{Key: k, Removed: true})
		}
	}

	for _, k := range slices.Sorted(maps.Keys(newProps)) {
		if k == childrenProp {
			continue
		}
		next := newProps[k]
		if prev, ok := oldProps[k]; ok && is(prev, next) {
			continue
		}
		changes = append(changes, PropChange{Key: k, Value: next})
	}

	if len(changes) > 1 {
		slices.SortStableFunc(changes, func(a, b PropChange) int {
			return strings.Compare(a.Key, b.Key)
		})
	}

	return changes
}
