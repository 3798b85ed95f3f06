package container

import (
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

// BindingBuilder accumulates a binding. Scope methods may be chained; exactly one
// terminal method (To, ToSelf, ToConstantValue, ToDynamicValue, ToFactory) must be
// called to register it.
type BindingBuilder struct {
	c        *Container
	id       domain.Identifier
	token    *domain.Token
	scope    domain.Scope
	metadata domain.Metadata
	module   *domain.ModuleInfo
	done     bool
}

// InSingletonScope caches the value for the lifetime of the container chain.
func (b *BindingBuilder) InSingletonScope() *BindingBuilder {
	b.scope = domain.ScopeSingleton
	return b
}

// InTransientScope produces a new value on every resolution.
func (b *BindingBuilder) InTransientScope() *BindingBuilder {
	b.scope = domain.ScopeTransient
	return b
}

// InRequestScope shares the value within one Get call.
func (b *BindingBuilder) InRequestScope() *BindingBuilder {
	b.scope = domain.ScopeRequest
	return b
}

// InScope sets the scope explicitly.
func (b *BindingBuilder) InScope(scope domain.Scope) *BindingBuilder {
	b.scope = scope
	return b
}

// WithMetadata attaches metadata used by filtered requests.
func (b *BindingBuilder) WithMetadata(md domain.Metadata) *BindingBuilder {
	b.metadata = md.Clone()
	return b
}

// To binds the identifier to instances of class.
func (b *BindingBuilder) To(class *domain.Class) error {
	if class == nil {
		return b.fail(zerr.With(zerr.Wrap(domain.ErrBindingConfiguration, "cannot bind to a nil class"), "token", b.token.String()))
	}
	return b.finish(&domain.Binding{Kind: domain.BindingConstructor, Class: class})
}

// ToSelf binds a class identifier to its own class.
func (b *BindingBuilder) ToSelf() error {
	class := b.token.Class()
	if class == nil {
		return b.fail(invalidOperation(domain.ErrNotAClass, "toSelf requires a class identifier", b.token))
	}
	return b.To(class)
}

// ToConstantValue binds the identifier to v.
func (b *BindingBuilder) ToConstantValue(v any) error {
	return b.finish(&domain.Binding{Kind: domain.BindingStatic, Value: v})
}

// ToDynamicValue binds the identifier to fn, called with the resolved deps in order.
func (b *BindingBuilder) ToDynamicValue(deps []domain.Injection, fn domain.DynamicFunc) error {
	positional, err := b.positional(deps)
	if err != nil {
		return b.fail(err)
	}
	return b.finish(&domain.Binding{Kind: domain.BindingDynamic, Dynamic: fn, Dependencies: positional})
}

// ToFactory binds the identifier to the generator fn returns for each resolution.
func (b *BindingBuilder) ToFactory(deps []domain.Injection, fn domain.FactoryFunc) error {
	positional, err := b.positional(deps)
	if err != nil {
		return b.fail(err)
	}
	return b.finish(&domain.Binding{Kind: domain.BindingFactory, Factory: fn, Dependencies: positional})
}

// positional numbers deps in order. Only container-resolved dependencies are allowed.
func (b *BindingBuilder) positional(deps []domain.Injection) ([]domain.Injection, error) {
	out := make([]domain.Injection, len(deps))
	for i, dep := range deps {
		if dep.Token == nil || dep.Kind == domain.InjectionProperty || dep.Kind == domain.InjectionUnmanagedParameter {
			return nil, zerr.With(zerr.Wrap(domain.ErrBindingConfiguration, "dependencies must be tokens resolved by the container"), "token", b.token.String())
		}
		dep.Kind = domain.InjectionConstructorParameter
		dep.Index = i
		out[i] = dep
	}
	return out, nil
}

func (b *BindingBuilder) finish(binding *domain.Binding) error {
	if b.done {
		return zerr.With(zerr.Wrap(domain.ErrInvalidOperation, "binding was already finished"), "token", b.token.String())
	}
	b.done = true

	binding.Token = b.token
	binding.Scope = b.scope
	binding.Metadata = b.metadata
	binding.Module = b.module
	return b.c.register(b, binding)
}

// fail drops the builder from the pending set; the caller gets err instead.
func (b *BindingBuilder) fail(err error) error {
	if !b.done {
		b.done = true
		b.c.abandon(b)
	}
	return err
}
