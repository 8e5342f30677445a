package internal

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unsafe"
)

var ErrUnknownElementType = errors.New("unknown element type")

// Props is the property set of a description node. The "children" entry
// holds its child descriptions.
type Props map[string]any

const childrenProp = "children"

// textProp holds the content of a text node.
const textProp = "text"

// Children returns the child descriptions held by the props.
func (p Props) Children() any {
	if p == nil {
		return nil
	}
	return p[childrenProp]
}

// Component renders a description from its props.
type Component func(props Props) any

type fragmentType struct{}

// Fragment groups children without a host object of its own.
var Fragment = &fragmentType{}

// Element is an immutable description node.
type Element struct {
	Type  any
	Props Props
	Key   any // string, integer or nil
	Ref   any // *Ref or func(any)
}

// Ref receives the host object of the node it is attached to.
type Ref struct {
	Current any
}

// NewElement builds a description node. Children passed here override any
// "children" entry of props. The props map is copied.
func NewElement(typ any, props Props, children ...any) *Element {
	p := make(Props, len(props)+1)
	var key, ref any
	for k, v := range props {
		switch k {
		case "key":
			key = v
		case "ref":
			ref = v
		default:
			p[k] = v
		}
	}

	switch len(children) {
	case 0:
	case 1:
		p[childrenProp] = children[0]
	default:
		p[childrenProp] = children
	}

	return &Element{Type: typ, Props: p, Key: key, Ref: ref}
}

// normalizeKey turns a key into its string form. ok is false for nil keys.
func normalizeKey(key any) (string, bool) {
	switch k := key.(type) {
	case nil:
		return "", false
	case string:
		return k, true
	case int:
		return strconv.Itoa(k), true
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(k).Int(), 10), true
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(k).Uint(), 10), true
	case fmt.Stringer:
		return k.String(), true
	default:
		return fmt.Sprint(k), true
	}
}

// textOf reports whether v renders as a text node, and its content.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	default:
		return "", false
	}
}

// tagFor resolves the node tag for an element type.
func tagFor(typ any) (Tag, error) {
	switch t := typ.(type) {
	case string:
		return HostUnit, nil
	case Component, func(Props) any:
		return FunctionUnit, nil
	case *fragmentType:
		return FragmentUnit, nil
	case *providerType:
		return ContextProvider, nil
	case *consumerType:
		return ContextConsumer, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnknownElementType, t)
	}
}

// sameType compares element types. Functions compare by code pointer.
func sameType(a, b any) bool {
	fa, okA := asComponent(a)
	fb, okB := asComponent(b)
	if okA || okB {
		return okA && okB && funcIdentity(fa) == funcIdentity(fb)
	}
	return is(a, b)
}

func asComponent(v any) (Component, bool) {
	switch f := v.(type) {
	case Component:
		return f, f != nil
	case func(Props) any:
		return f, f != nil
	}
	return nil, false
}

// funcIdentity returns the closure object behind a func value. Closures
// made from the same literal with different captures have different ones.
func funcIdentity(f any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&f))[1]
}

// is compares two values by identity: comparable values with ==, NaN equal
// to itself, +0 and -0 apart, functions by closure, and maps, slices and
// channels by pointer.
func is(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return funcIdentity(a) == funcIdentity(b)
	case reflect.Map, reflect.Slice, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb && math.Signbit(fa) == math.Signbit(fb)
	}

	if !va.Type().Comparable() {
		return false
	}
	return comparableEqual(a, b)
}

func comparableEqual(a, b any) (eq bool) {
	// structs or arrays holding incomparable dynamic values panic on ==
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// sameProps reports whether two prop maps are the same map.
func sameProps(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).UnsafePointer() == reflect.ValueOf(b).UnsafePointer()
}
