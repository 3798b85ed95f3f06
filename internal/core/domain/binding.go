package domain

import (
	"context"
	"fmt"
)

// BindingKind tags the implementation of a binding.
type BindingKind uint8

const (
	// BindingStatic holds a precomputed value.
	BindingStatic BindingKind = iota
	// BindingDynamic computes its value from resolved dependencies.
	BindingDynamic
	// BindingFactory builds a DynamicFunc from the request context first.
	BindingFactory
	// BindingConstructor instantiates a class.
	BindingConstructor
)

// String returns the kind name.
func (k BindingKind) String() string {
	switch k {
	case BindingStatic:
		return "constant"
	case BindingDynamic:
		return "dynamic"
	case BindingFactory:
		return "factory"
	case BindingConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("BindingKind(%d)", k)
	}
}

// DynamicFunc produces a value from the resolved dependencies of a binding.
type DynamicFunc func(ctx context.Context, deps []any) (any, error)

// FactoryFunc returns the generator used for one resolution.
type FactoryFunc func(fc FactoryContext) (DynamicFunc, error)

// Resolver is the part of a container visible to factories and child containers.
type Resolver interface {
	Get(ctx context.Context, id Identifier, opts ...InjectOption) (any, error)
	Has(id Identifier) (bool, error)
}

// FactoryContext is handed to a FactoryFunc on every resolution.
type FactoryContext struct {
	Container Resolver
	Metadata  Metadata
	Token     *Token
}

// ModuleInfo identifies the module that created a binding.
type ModuleInfo struct {
	Name string
	URL  string
}

// String returns the module name.
func (m *ModuleInfo) String() string {
	if m == nil {
		return "<root>"
	}
	return m.Name
}

// Binding is a registered recipe for producing a value for a token.
type Binding struct {
	ID       uint64
	Kind     BindingKind
	Token    *Token
	Scope    Scope
	Metadata Metadata
	Module   *ModuleInfo

	Value        any
	Dynamic      DynamicFunc
	Factory      FactoryFunc
	Dependencies []Injection
	Class        *Class
	// Context is set on bindings synthesized by autobinding.
	Context *Context
}

// Deferred reports whether the binding computes its metadata per request.
func (b *Binding) Deferred() bool {
	return b.Kind == BindingFactory && b.Scope == ScopeTransient && b.Token.RequiresMetadata()
}

// Matches reports whether the binding satisfies the metadata filter of a request.
// Deferred bindings match unless a key present on both sides differs.
func (b *Binding) Matches(filter Metadata) bool {
	if b.Deferred() {
		return b.Metadata.Compatible(filter)
	}
	return b.Metadata.Matches(filter)
}

// Validate checks the binding invariants.
func (b *Binding) Validate() error {
	if b.Token == nil {
		return ErrBindingConfiguration
	}
	switch b.Kind {
	case BindingDynamic:
		if b.Dynamic == nil {
			return fmt.Errorf("%w: dynamic binding of %s has no function", ErrBindingConfiguration, b.Token)
		}
	case BindingFactory:
		if b.Factory == nil {
			return fmt.Errorf("%w: factory binding of %s has no function", ErrBindingConfiguration, b.Token)
		}
	case BindingConstructor:
		if b.Class == nil {
			return fmt.Errorf("%w: constructor binding of %s has no class", ErrBindingConfiguration, b.Token)
		}
	}
	if b.Deferred() {
		return nil
	}
	return b.Token.CheckMetadata(b.Metadata)
}

// String renders the binding for diagnostics.
func (b *Binding) String() string {
	s := fmt.Sprintf("%s %s (%s)", b.Kind, b.Token, b.Scope)
	if b.Kind == BindingConstructor && b.Class.Token() != b.Token {
		s += " -> " + b.Class.Name()
	}
	if len(b.Metadata) > 0 {
		s += " " + b.Metadata.String()
	}
	return s
}
