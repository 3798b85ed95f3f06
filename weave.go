// Package weave is an inversion of control container. It binds identifiers
// (tokens, typed keys and classes) to values and resolves them with their
// transitive dependencies, honoring scopes, metadata constraints, child
// containers and class autobinding.
//
// A minimal program:
//
//	greeting := weave.NewToken("greeting")
//	c := weave.New()
//	_ = c.Bind(greeting).ToConstantValue("hi")
//	v, err := weave.Get[string](ctx, c, greeting)
package weave

import (
	"context"

	"go.trai.ch/weave/internal/container"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

type (
	// Container resolves identifiers to values.
	Container = container.Container
	// Option configures a Container.
	Option = container.Option
	// BindingBuilder finishes a binding started with Bind or Rebind.
	BindingBuilder = container.BindingBuilder
	// Module groups bindings under a name.
	Module = container.Module
	// ModuleFunc registers the bindings of a module.
	ModuleFunc = container.ModuleFunc
	// Binder is the restricted view of a container handed to a ModuleFunc.
	Binder = container.Binder

	Identifier     = domain.Identifier
	Token          = domain.Token
	Class          = domain.Class
	Constructor    = domain.Constructor
	Inputs         = domain.Inputs
	Context        = domain.Context
	Registry       = domain.Registry
	RegisterOption = domain.RegisterOption
	Metadata       = domain.Metadata
	MetadataGuard  = domain.MetadataGuard
	Scope          = domain.Scope
	Injection      = domain.Injection
	InjectOption   = domain.InjectOption
	DynamicFunc    = domain.DynamicFunc
	FactoryFunc    = domain.FactoryFunc
	FactoryContext = domain.FactoryContext
	Plan           = domain.Plan
	LogLevel       = domain.LogLevel

	// ResolutionError reports a failed request together with the token path that led to it.
	ResolutionError = domain.ResolutionError

	Logger = ports.Logger
	Tracer = ports.Tracer
)

// Key is a token carrying the type of the values bound to it.
type Key[T any] = domain.Key[T]

// Scopes.
const (
	Transient = domain.ScopeTransient
	Request   = domain.ScopeRequest
	Singleton = domain.ScopeSingleton
)

// Errors. Test with errors.Is.
var (
	ErrBindingConfiguration = domain.ErrBindingConfiguration
	ErrMetadataRequired     = domain.ErrMetadataRequired
	ErrRecursiveResolution  = domain.ErrRecursiveResolution
	ErrUnboundToken         = domain.ErrUnboundToken
	ErrAmbiguousBinding     = domain.ErrAmbiguousBinding
	ErrInvalidOperation     = domain.ErrInvalidOperation
	ErrIncompleteBinding    = domain.ErrIncompleteBinding
	ErrMissingInjectable    = domain.ErrMissingInjectable
	ErrNotAClass            = domain.ErrNotAClass
	ErrTokenNotBound        = domain.ErrTokenNotBound
	ErrPropertyUnavailable  = domain.ErrPropertyUnavailable
	ErrValidationFailed     = domain.ErrValidationFailed
	ErrInternalConsistency  = domain.ErrInternalConsistency
)

// New creates a root container.
func New(opts ...Option) *Container { return container.New(opts...) }

// NewModule creates a module.
func NewModule(name string, load ModuleFunc) Module { return container.NewModule(name, load) }

// NewToken creates a token. Every call returns a distinct identity.
func NewToken(name string) *Token { return domain.NewToken(name) }

// NewMetadataToken creates a token whose bindings must carry metadata accepted by guard.
func NewMetadataToken(name string, guard MetadataGuard) *Token {
	return domain.NewMetadataToken(name, guard)
}

// NewKey creates a typed key.
func NewKey[T any](name string) Key[T] { return domain.NewKey[T](name) }

// NewClass creates a class built by construct.
func NewClass(name string, construct Constructor) *Class { return domain.NewClass(name, construct) }

// NewContext creates a context for autobinding.
func NewContext(name string) *Context { return domain.NewContext(name) }

// NewRegistry creates an empty class registry.
func NewRegistry() *Registry { return domain.NewRegistry() }

// Register declares the injections of class in the default registry.
func Register(class *Class, injections []Injection, opts ...RegisterOption) error {
	return domain.DefaultRegistry.Register(class, injections, opts...)
}

// MustRegister is Register that panics on error.
func MustRegister(class *Class, injections []Injection, opts ...RegisterOption) *Class {
	return domain.DefaultRegistry.MustRegister(class, injections, opts...)
}

// InContexts restricts autobinding of a class to ctxs.
func InContexts(ctxs ...*Context) RegisterOption { return domain.InContexts(ctxs...) }

// InNoContext excludes a class from autobinding.
func InNoContext() RegisterOption { return domain.InNoContext() }

// Param injects id as the constructor argument at index.
func Param(index int, id Identifier, opts ...InjectOption) Injection {
	return domain.Param(index, id, opts...)
}

// Unmanaged fills the constructor argument at index with gen.
func Unmanaged(index int, gen func() (any, error)) Injection { return domain.Unmanaged(index, gen) }

// Property injects id as the named property.
func Property(name string, id Identifier, opts ...InjectOption) Injection {
	return domain.Property(name, id, opts...)
}

// Dep is a dependency of a dynamic value or factory.
func Dep(id Identifier, opts ...InjectOption) Injection { return domain.Dep(id, opts...) }

// Deps is Dep without options for each of ids.
func Deps(ids ...Identifier) []Injection { return domain.Deps(ids...) }

// Optional resolves to nil, or an empty list, when nothing is bound.
func Optional() InjectOption { return domain.Optional() }

// Multiple resolves every matching binding into a list.
func Multiple() InjectOption { return domain.Multiple() }

// Filter restricts the candidate bindings to those whose metadata contains md.
func Filter(md Metadata) InjectOption { return domain.Filter(md) }

// Container options.
var (
	WithAutobindClasses      = container.WithAutobindClasses
	WithContexts             = container.WithContexts
	WithDefaultScope         = container.WithDefaultScope
	WithExcludeGlobalContext = container.WithExcludeGlobalContext
	WithLogger               = container.WithLogger
	WithLogLevel             = container.WithLogLevel
	WithTracer               = container.WithTracer
	WithRegistry             = container.WithRegistry
)

// Get resolves id and asserts the value to T.
func Get[T any](ctx context.Context, c *Container, id Identifier, opts ...InjectOption) (T, error) {
	return container.Get[T](ctx, c, id, opts...)
}

// GetKey resolves a typed key.
func GetKey[T any](ctx context.Context, c *Container, key Key[T], opts ...InjectOption) (T, error) {
	return container.GetKey(ctx, c, key, opts...)
}

// GetAll resolves every binding of id.
func GetAll[T any](ctx context.Context, c *Container, id Identifier, opts ...InjectOption) ([]T, error) {
	return container.GetAll[T](ctx, c, id, opts...)
}
