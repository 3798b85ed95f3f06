package domain

import (
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// Constructor builds an instance of a class from its resolved inputs.
type Constructor func(in *Inputs) (any, error)

// Class is a nominal constructible type.
// Each class owns exactly one token, created with the class, so a class used as
// an identifier always resolves to the same token.
type Class struct {
	name      string
	construct Constructor
	token     *Token
}

// NewClass creates a class with the given constructor.
func NewClass(name string, construct Constructor) *Class {
	c := &Class{name: name, construct: construct}
	c.token = &Token{id: uuid.New(), name: NewInternedString(name), class: c}
	return c
}

// Token implements Identifier.
func (c *Class) Token() *Token { return c.token }

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// String returns the class name.
func (c *Class) String() string { return c.name }

// New invokes the constructor. The inputs are closed when the constructor returns,
// including when it panics.
func (c *Class) New(in *Inputs) (any, error) {
	defer in.close()
	if c.construct == nil {
		return nil, zerr.With(zerr.Wrap(ErrBindingConfiguration, "class has no constructor"), "class", c.name)
	}
	return c.construct(in)
}

// Inputs is the construction context handed to a Constructor.
// It holds the positional arguments and the injected property values of one
// constructor call.
type Inputs struct {
	args  []any
	props map[string]any

	mu     sync.RWMutex
	closed bool
}

// NewInputs creates construction inputs.
func NewInputs(args []any, props map[string]any) *Inputs {
	if props == nil {
		props = make(map[string]any)
	}
	return &Inputs{args: args, props: props}
}

// Len returns the number of positional arguments.
func (in *Inputs) Len() int { return len(in.args) }

// Arg returns the positional argument at index i, or nil when out of range.
func (in *Inputs) Arg(i int) any {
	if i < 0 || i >= len(in.args) {
		return nil
	}
	return in.args[i]
}

// Args returns a copy of the positional arguments.
func (in *Inputs) Args() []any {
	out := make([]any, len(in.args))
	copy(out, in.args)
	return out
}

// Property returns an injected property value.
// Properties are only readable while the constructor is running.
func (in *Inputs) Property(name string) (any, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if in.closed {
		return nil, zerr.With(zerr.Wrap(ErrPropertyUnavailable, "construction already finished"), "property", name)
	}
	v, ok := in.props[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrPropertyUnavailable, "property was not declared"), "property", name)
	}
	return v, nil
}

func (in *Inputs) close() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.closed = true
}

// ArgAs returns the positional argument at index i asserted to T.
func ArgAs[T any](in *Inputs, i int) (T, bool) {
	v, ok := in.Arg(i).(T)
	return v, ok
}

// PropertyAs returns the named property asserted to T.
func PropertyAs[T any](in *Inputs, name string) (T, error) {
	var zero T
	v, err := in.Property(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok && v != nil {
		return zero, zerr.With(zerr.Wrap(ErrPropertyUnavailable, "property has unexpected type"), "property", name)
	}
	return typed, nil
}
