package domain

import (
	"fmt"
)

// InjectionKind tells how a dependency slot is filled.
type InjectionKind uint8

const (
	// InjectionRequest is the top-level ask passed to Get.
	InjectionRequest InjectionKind = iota
	// InjectionConstructorParameter is a positional argument resolved by the container.
	InjectionConstructorParameter
	// InjectionUnmanagedParameter is a positional argument produced by a static generator.
	InjectionUnmanagedParameter
	// InjectionProperty is a named value resolved by the container.
	InjectionProperty
)

// String returns the kind name.
func (k InjectionKind) String() string {
	switch k {
	case InjectionRequest:
		return "request"
	case InjectionConstructorParameter:
		return "parameter"
	case InjectionUnmanagedParameter:
		return "unmanaged"
	case InjectionProperty:
		return "property"
	default:
		return fmt.Sprintf("InjectionKind(%d)", k)
	}
}

// InjectOptions qualify a dependency.
type InjectOptions struct {
	Optional bool
	Multiple bool
	Metadata Metadata
}

// InjectOption configures InjectOptions.
type InjectOption func(*InjectOptions)

// Optional resolves to nil (or an empty slice with Multiple) instead of failing when unbound.
func Optional() InjectOption {
	return func(o *InjectOptions) { o.Optional = true }
}

// Multiple resolves every matching binding into a []any.
func Multiple() InjectOption {
	return func(o *InjectOptions) { o.Multiple = true }
}

// Filter restricts matching to bindings whose metadata contains md.
func Filter(md Metadata) InjectOption {
	return func(o *InjectOptions) { o.Metadata = md.Clone() }
}

// WithOptions copies o wholesale. It forwards request options to another container.
func WithOptions(o InjectOptions) InjectOption {
	return func(dst *InjectOptions) {
		*dst = o
		dst.Metadata = o.Metadata.Clone()
	}
}

// NewInjectOptions applies opts to zero options.
func NewInjectOptions(opts ...InjectOption) InjectOptions {
	var o InjectOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Injection describes one dependency slot.
type Injection struct {
	Kind     InjectionKind
	Token    *Token
	Index    int
	Property string
	Options  InjectOptions

	// Generator produces the value of an unmanaged parameter.
	Generator func() (any, error)
}

// Managed reports whether the container resolves the slot.
func (i Injection) Managed() bool {
	return i.Kind != InjectionUnmanagedParameter
}

// Positional reports whether the slot is a constructor argument.
func (i Injection) Positional() bool {
	return i.Kind == InjectionConstructorParameter || i.Kind == InjectionUnmanagedParameter
}

// String renders the injection for diagnostics.
func (i Injection) String() string {
	switch i.Kind {
	case InjectionUnmanagedParameter:
		return fmt.Sprintf("unmanaged[%d]", i.Index)
	case InjectionProperty:
		return fmt.Sprintf("property %s: %s", i.Property, i.Token)
	case InjectionConstructorParameter:
		return fmt.Sprintf("parameter[%d]: %s", i.Index, i.Token)
	default:
		return i.Token.String()
	}
}

// Request creates the top-level injection of a Get call.
func Request(id Identifier, opts ...InjectOption) Injection {
	return Injection{Kind: InjectionRequest, Token: id.Token(), Options: NewInjectOptions(opts...)}
}

// Param declares the constructor parameter at index.
func Param(index int, id Identifier, opts ...InjectOption) Injection {
	return Injection{
		Kind:    InjectionConstructorParameter,
		Token:   id.Token(),
		Index:   index,
		Options: NewInjectOptions(opts...),
	}
}

// Unmanaged declares a constructor parameter whose value comes from gen.
func Unmanaged(index int, gen func() (any, error)) Injection {
	return Injection{Kind: InjectionUnmanagedParameter, Index: index, Generator: gen}
}

// Property declares a named property resolved during construction.
func Property(name string, id Identifier, opts ...InjectOption) Injection {
	return Injection{
		Kind:     InjectionProperty,
		Token:    id.Token(),
		Property: name,
		Options:  NewInjectOptions(opts...),
	}
}

// Dep declares a dependency of a dynamic value or factory. Its position is
// assigned by the binding builder.
func Dep(id Identifier, opts ...InjectOption) Injection {
	return Injection{
		Kind:    InjectionConstructorParameter,
		Token:   id.Token(),
		Options: NewInjectOptions(opts...),
	}
}

// Deps declares plain dependencies on ids, in order.
func Deps(ids ...Identifier) []Injection {
	out := make([]Injection, len(ids))
	for i, id := range ids {
		out[i] = Dep(id)
		out[i].Index = i
	}
	return out
}
