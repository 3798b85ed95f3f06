package domain

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Metadata is a flat set of attributes attached to a binding or used as a request filter.
type Metadata map[string]any

// Clone returns a shallow copy of md.
func (md Metadata) Clone() Metadata {
	if md == nil {
		return Metadata{}
	}
	return maps.Clone(md)
}

// Matches reports whether every key of filter is present in md with an equal value.
func (md Metadata) Matches(filter Metadata) bool {
	for k, want := range filter {
		got, ok := md[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Compatible reports whether md and other agree on every key they share.
// Keys present on only one side are ignored.
func (md Metadata) Compatible(other Metadata) bool {
	for k, a := range md {
		if b, ok := other[k]; ok && !valuesEqual(a, b) {
			return false
		}
	}
	return true
}

// String renders md with sorted keys.
func (md Metadata) String() string {
	keys := slices.Sorted(maps.Keys(md))
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", md[k])
	}
	b.WriteByte('}')
	return b.String()
}

// valuesEqual compares two metadata values shallowly: comparable values by ==,
// reference types by identity.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		if va.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
