package domain

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// StepKind tags a plan step.
type StepKind uint8

const (
	// StepFetchFromCache pushes a cached value and skips the steps that would recompute it.
	StepFetchFromCache StepKind = iota
	// StepCreate invokes a binding, or synthesizes the default of an optional request.
	StepCreate
	// StepAggregate collects the values of several bindings into a slice.
	StepAggregate
	// StepRequestFromParent delegates the whole request to the parent container.
	StepRequestFromParent
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepFetchFromCache:
		return "fetch"
	case StepCreate:
		return "create"
	case StepAggregate:
		return "aggregate"
	case StepRequestFromParent:
		return "parent"
	default:
		return fmt.Sprintf("StepKind(%d)", k)
	}
}

// Step is one instruction of a plan.
type Step struct {
	Kind  StepKind
	Token *Token
	// Path is the resolution path from the requested token down to Token.
	Path []*Token

	// Binding is nil for the default value of an unbound optional request.
	Binding *Binding
	// Inputs are the injections of Binding, in declaration order. Managed inputs are
	// popped from the request stack.
	Inputs []Injection
	// Cache is the scope the value is fetched from or stored into.
	Cache Scope
	// Wrap pushes the value as a one-element slice.
	Wrap bool

	Skip  int
	Count int

	// Options are the options of the injection this step satisfies.
	Options InjectOptions
}

// String renders the step on one line.
func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	b.WriteString(s.Token.String())
	switch s.Kind {
	case StepFetchFromCache:
		fmt.Fprintf(&b, " from %s cache, skip %d", s.Cache, s.Skip)
	case StepCreate:
		if s.Binding == nil {
			if s.Options.Multiple {
				b.WriteString(" as empty list")
			} else {
				b.WriteString(" as nil")
			}
			break
		}
		fmt.Fprintf(&b, " via %s", s.Binding.Kind)
		if s.Binding.Kind == BindingConstructor {
			b.WriteString(" " + s.Binding.Class.Name())
		}
		if s.Cache.Cached() {
			fmt.Fprintf(&b, ", store in %s cache", s.Cache)
		}
	case StepAggregate:
		fmt.Fprintf(&b, " of %d bindings", s.Count)
	}
	if s.Wrap {
		b.WriteString(", as list")
	}
	return b.String()
}

// Plan is the ordered, side-effect-free list of steps that satisfies one request.
type Plan struct {
	Target  *Token
	Request Injection
	Steps   []Step
}

// String renders one step per line.
func (p *Plan) String() string {
	var b strings.Builder
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, s)
	}
	return b.String()
}

// Digest returns a stable hash of the plan rendering.
func (p *Plan) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(p.String()))
}

// Tokens returns the tokens created by the plan, in step order.
func (p *Plan) Tokens() []*Token {
	var out []*Token
	for _, s := range p.Steps {
		if s.Kind == StepCreate || s.Kind == StepRequestFromParent {
			out = append(out, s.Token)
		}
	}
	return out
}
