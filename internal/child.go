package internal

import (
	"fmt"
	"reflect"
)

// childKey identifies a child slot: keyed children by key, unkeyed ones by
// position.
type childKey struct {
	key   string
	keyed bool
	index int
}

func keyOf(key string, keyed bool, index int) childKey {
	if keyed {
		return childKey{key: key, keyed: true}
	}
	return childKey{index: index}
}

// reconcileChildList builds the new child list of parent from children,
// reusing the committed children in currentFirst where key and type match.
// Children that are not reused are scheduled for deletion. When track is
// set, new and moved children are flagged for placement.
func (r *Root) reconcileChildList(parent, currentFirst *Node, children any, lanes Lanes, track bool) *Node {
	list := normalizeChildren(children)

	existing := make(map[childKey]*Node)
	for old := currentFirst; old != nil; old = old.sibling {
		k := keyOf(old.key, old.keyed, old.index)
		if _, ok := existing[k]; !ok {
			existing[k] = old
		}
	}

	reused := make(map[*Node]bool, len(existing))
	var seen map[string]bool
	warned := false

	var first, prev *Node
	lastPlaced := 0

	for i, item := range list {
		if item == nil {
			continue
		}

		if el, ok := item.(*Element); ok && el.Key != nil {
			key, _ := normalizeKey(el.Key)
			if seen == nil {
				seen = make(map[string]bool)
			}
			if seen[key] && !warned && r.config.WarnDuplicateKeys {
				warned = true
				r.logger.Warn("duplicate key among children", "key", key, "parent", parent.Tag.String())
			}
			seen[key] = true
		}

		n := r.reconcileSlot(existing, reused, i, item, lanes)
		n.parent = parent
		n.index = i

		if track {
			lastPlaced = placeChild(n, lastPlaced)
		}

		if prev == nil {
			first = n
		} else {
			prev.sibling = n
		}
		prev = n
	}
	if prev != nil {
		prev.sibling = nil
	}

	for old := currentFirst; old != nil; old = old.sibling {
		if !reused[old] {
			parent.deletions = append(parent.deletions, old)
			parent.flags |= ChildDeletion
		}
	}

	return first
}

// reconcileSlot returns the node for item at position index: a twin of the
// matching committed node when its type is unchanged, a new node otherwise.
func (r *Root) reconcileSlot(existing map[childKey]*Node, reused map[*Node]bool, index int, item any, lanes Lanes) *Node {
	match := func(k childKey, ok func(*Node) bool) *Node {
		old := existing[k]
		if old == nil || reused[old] || !ok(old) {
			return nil
		}
		reused[old] = true
		return old
	}

	if el, ok := item.(*Element); ok {
		key, keyed := normalizeKey(el.Key)
		old := match(keyOf(key, keyed, index), func(old *Node) bool {
			return old.Tag != HostText && sameType(old.elementType, el.Type)
		})
		if old == nil {
			return newNodeFromElement(el, lanes)
		}

		n := createAlternate(old, el.Props)
		n.elementType = el.Type
		n.ref = el.Ref
		return n
	}

	if nested, ok := asList(item); ok {
		old := match(keyOf("", false, index), func(old *Node) bool {
			return old.Tag == FragmentUnit
		})
		if old == nil {
			return newFragmentNode(nested, "", false, lanes)
		}
		return createAlternate(old, Props{childrenProp: nested})
	}

	if text, ok := textOf(item); ok {
		old := match(keyOf("", false, index), func(old *Node) bool {
			return old.Tag == HostText
		})
		if old == nil {
			return newTextNode(text, lanes)
		}
		return createAlternate(old, Props{textProp: text})
	}

	panic(fmt.Errorf("%w: %T as a child", ErrUnknownElementType, item))
}

// placeChild flags n for placement when it is new or moved before a child
// that kept its position, and returns the updated last placed index.
func placeChild(n *Node, lastPlaced int) int {
	current := n.alternate
	if current == nil {
		n.flags |= Placement
		return lastPlaced
	}

	if current.index < lastPlaced {
		n.flags |= Placement
		return lastPlaced
	}
	return current.index
}

// normalizeChildren flattens the children value into a slot list. nil and
// bool entries are holes that keep the positions of their siblings. A
// single unkeyed fragment is unwrapped.
func normalizeChildren(children any) []any {
	if el, ok := children.(*Element); ok && el != nil && el.Key == nil && el.Type == any(Fragment) {
		return normalizeChildren(el.Props.Children())
	}

	var list []any
	if l, ok := asList(children); ok {
		list = l
	} else {
		list = []any{children}
	}

	out := make([]any, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case nil, bool:
		case *Element:
			if v != nil {
				out[i] = v
			}
		default:
			out[i] = v
		}
	}
	return out
}

// asList converts slice and array children to []any.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []any:
		return l, true
	case []*Element:
		out := make([]any, len(l))
		for i, el := range l {
			out[i] = el
		}
		return out, true
	case string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
