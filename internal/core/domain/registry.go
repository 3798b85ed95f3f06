package domain

import (
	"fmt"
	"slices"
	"sync"

	"go.trai.ch/zerr"
)

// Context is a named partition of the injection registry that controls which
// containers may autobind a class.
type Context struct {
	name string
}

// NewContext creates a new context. Contexts compare by identity.
func NewContext(name string) *Context {
	return &Context{name: name}
}

// Name returns the context name.
func (c *Context) Name() string { return c.name }

// String returns the context name.
func (c *Context) String() string {
	if c == nil {
		return "<none>"
	}
	return c.name
}

// GlobalContext is included by every container unless it opts out.
var GlobalContext = NewContext("global")

// RegisterOptions configure a class registration.
type RegisterOptions struct {
	contexts  []*Context
	noContext bool
}

// RegisterOption configures RegisterOptions.
type RegisterOption func(*RegisterOptions)

// InContexts registers the class for autobinding in the given contexts.
func InContexts(ctxs ...*Context) RegisterOption {
	return func(o *RegisterOptions) {
		o.contexts = append(o.contexts, ctxs...)
	}
}

// InNoContext makes the class resolvable only through an explicit binding.
func InNoContext() RegisterOption {
	return func(o *RegisterOptions) { o.noContext = true }
}

type registration struct {
	injections []Injection
	contexts   []*Context
}

// Registry maps classes to their declared injections and contexts.
type Registry struct {
	mu      sync.RWMutex
	classes map[*Class]*registration
	order   []*Class
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[*Class]*registration)}
}

// DefaultRegistry is the process-wide registry used by containers that are not
// given one explicitly. Registrations are never removed.
var DefaultRegistry = NewRegistry()

// Register declares the injections of class. Without options the class is
// registered in the global context. Registering a class again replaces its
// previous registration.
func (r *Registry) Register(class *Class, injections []Injection, opts ...RegisterOption) error {
	if class == nil {
		return zerr.Wrap(ErrInvalidOperation, "cannot register a nil class")
	}
	var o RegisterOptions
	for _, opt := range opts {
		opt(&o)
	}

	sorted, err := orderInjections(class, injections)
	if err != nil {
		return err
	}

	reg := &registration{injections: sorted}
	switch {
	case o.noContext:
	case len(o.contexts) == 0:
		reg.contexts = []*Context{GlobalContext}
	default:
		for _, c := range o.contexts {
			if !slices.Contains(reg.contexts, c) {
				reg.contexts = append(reg.contexts, c)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[class]; !exists {
		r.order = append(r.order, class)
	}
	r.classes[class] = reg
	return nil
}

// MustRegister is Register for package-level class declarations. It panics on error.
func (r *Registry) MustRegister(class *Class, injections []Injection, opts ...RegisterOption) *Class {
	if err := r.Register(class, injections, opts...); err != nil {
		panic(err)
	}
	return class
}

// Injections returns the declared injections of class: parameters by index,
// then properties in declaration order.
func (r *Registry) Injections(class *Class) ([]Injection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.classes[class]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrMissingInjectable, "class was never registered"), "class", class.String())
	}
	return slices.Clone(reg.injections), nil
}

// IsRegistered reports whether class has a registration.
func (r *Registry) IsRegistered(class *Class) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[class]
	return ok
}

// InContext reports whether class is registered for autobinding in ctx.
func (r *Registry) InContext(class *Class, ctx *Context) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.classes[class]
	return ok && slices.Contains(reg.contexts, ctx)
}

// Classes returns the classes registered in ctx, in registration order.
func (r *Registry) Classes(ctx *Context) []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Class
	for _, c := range r.order {
		if slices.Contains(r.classes[c].contexts, ctx) {
			out = append(out, c)
		}
	}
	return out
}

// orderInjections checks that positional injections cover 0..n-1 exactly once and
// that property names are unique.
func orderInjections(class *Class, injections []Injection) ([]Injection, error) {
	var params, props []Injection
	seen := make(map[string]bool)
	for _, inj := range injections {
		switch inj.Kind {
		case InjectionConstructorParameter, InjectionUnmanagedParameter:
			if inj.Kind == InjectionConstructorParameter && inj.Token == nil {
				return nil, zerr.With(zerr.Wrap(ErrBindingConfiguration, "parameter has no token"), "class", class.String())
			}
			if inj.Kind == InjectionUnmanagedParameter && inj.Generator == nil {
				return nil, zerr.With(zerr.Wrap(ErrBindingConfiguration, "unmanaged parameter has no generator"), "class", class.String())
			}
			params = append(params, inj)
		case InjectionProperty:
			if inj.Token == nil || inj.Property == "" {
				return nil, zerr.With(zerr.Wrap(ErrBindingConfiguration, "property needs a name and a token"), "class", class.String())
			}
			if seen[inj.Property] {
				return nil, zerr.With(zerr.With(zerr.Wrap(ErrBindingConfiguration, "duplicate property"), "class", class.String()), "property", inj.Property)
			}
			seen[inj.Property] = true
			props = append(props, inj)
		default:
			return nil, zerr.With(zerr.Wrap(ErrBindingConfiguration, fmt.Sprintf("%s injection cannot be registered", inj.Kind)), "class", class.String())
		}
	}

	slices.SortStableFunc(params, func(a, b Injection) int { return a.Index - b.Index })
	for i, p := range params {
		if p.Index != i {
			return nil, zerr.With(zerr.With(zerr.Wrap(ErrBindingConfiguration, "constructor parameters must be indexed 0..n-1"), "class", class.String()), "index", p.Index)
		}
	}
	return append(params, props...), nil
}
