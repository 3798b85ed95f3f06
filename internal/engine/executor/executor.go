// Package executor interprets resolution plans.
package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// Env is what a plan executes against.
type Env struct {
	// Singletons is shared by a container and its descendants.
	Singletons *SingletonCache
	// Parent receives StepRequestFromParent delegations.
	Parent domain.Resolver
	// Container is handed to factory bindings.
	Container domain.Resolver
	// Tracer gets one span per executed step. Optional.
	Tracer ports.Tracer
}

// Execute runs the steps of plan in order and returns the value of its target.
// Steps never run concurrently.
func Execute(ctx context.Context, plan *domain.Plan, env Env) (any, error) {
	x := &execution{env: env, req: NewRequest()}

	for i := 0; i < len(plan.Steps); i++ {
		step := &plan.Steps[i]
		switch step.Kind {
		case domain.StepFetchFromCache:
			if x.fetch(ctx, step) {
				i += step.Skip
			}
		case domain.StepCreate:
			if err := x.create(ctx, step); err != nil {
				return nil, err
			}
		case domain.StepAggregate:
			if err := x.aggregate(step); err != nil {
				return nil, err
			}
		case domain.StepRequestFromParent:
			if err := x.delegate(ctx, step); err != nil {
				return nil, err
			}
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "unknown step kind"), "step", step.Kind.String())
		}
	}

	v, ok := x.req.pop(plan.Target)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "plan did not produce its target"), "token", plan.Target.String())
	}
	if left := x.req.leftovers(); len(left) > 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "plan left unconsumed values"), "leftover", strings.Join(left, ", "))
	}
	return v, nil
}

type execution struct {
	env Env
	req *Request
}

func (x *execution) fetch(ctx context.Context, step *domain.Step) bool {
	var (
		v  any
		ok bool
	)
	switch step.Cache {
	case domain.ScopeSingleton:
		v, ok = x.env.Singletons.Get(step.Binding.ID)
	case domain.ScopeRequest:
		v, ok = x.req.cache[step.Binding.ID]
	}
	if !ok {
		return false
	}

	_, span := x.startSpan(ctx, "fetch "+step.Token.String())
	span.SetAttribute(ports.AttrCached, true)
	span.SetAttribute("weave.scope", string(step.Cache))
	span.End()

	x.push(step, v)
	return true
}

func (x *execution) create(ctx context.Context, step *domain.Step) error {
	if step.Binding == nil {
		if step.Options.Multiple {
			x.req.push(step.Token, []any{})
		} else {
			x.req.push(step.Token, nil)
		}
		return nil
	}

	args, props, err := x.inputs(step)
	if err != nil {
		return err
	}

	ctx, span := x.startSpan(ctx, "create "+step.Token.String())
	defer span.End()
	span.SetAttribute("weave.binding", step.Binding.Kind.String())
	span.SetAttribute("weave.scope", string(step.Cache))

	build := func(ctx context.Context) (any, error) {
		return x.invoke(ctx, step, args, props)
	}

	var v any
	switch step.Cache {
	case domain.ScopeSingleton:
		v, err = x.env.Singletons.GetOrCreate(ctx, step.Binding.ID, build)
	case domain.ScopeRequest:
		if v, err = build(ctx); err == nil {
			x.req.cache[step.Binding.ID] = v
		}
	default:
		v, err = build(ctx)
	}
	if err != nil {
		err = domain.NewResolutionError(step.Path, err)
		span.RecordError(err)
		return err
	}

	x.push(step, v)
	return nil
}

// inputs pops the managed inputs of step in reverse order, so that each consumer
// takes the values produced by its own subtree.
func (x *execution) inputs(step *domain.Step) ([]any, map[string]any, error) {
	values := make([]any, len(step.Inputs))
	for i := len(step.Inputs) - 1; i >= 0; i-- {
		inj := step.Inputs[i]
		if !inj.Managed() {
			v, err := generate(inj)
			if err != nil {
				return nil, nil, domain.NewResolutionError(step.Path, err)
			}
			values[i] = v
			continue
		}
		v, ok := x.req.pop(inj.Token)
		if !ok {
			return nil, nil, zerr.With(
				zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "input was not produced"), "token", step.Token.String()),
				"input", inj.Token.String(),
			)
		}
		values[i] = v
	}

	var args []any
	var props map[string]any
	for i, inj := range step.Inputs {
		if inj.Kind == domain.InjectionProperty {
			if props == nil {
				props = make(map[string]any)
			}
			props[inj.Property] = values[i]
			continue
		}
		args = append(args, values[i])
	}
	return args, props, nil
}

func (x *execution) invoke(ctx context.Context, step *domain.Step, args []any, props map[string]any) (v any, err error) {
	defer recoverPanic(&err)

	b := step.Binding
	switch b.Kind {
	case domain.BindingStatic:
		return b.Value, nil
	case domain.BindingDynamic:
		return b.Dynamic(ctx, args)
	case domain.BindingFactory:
		fn, err := b.Factory(domain.FactoryContext{
			Container: x.env.Container,
			Metadata:  step.Options.Metadata.Clone(),
			Token:     step.Token,
		})
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrBindingConfiguration, "factory returned no generator"), "token", step.Token.String())
		}
		return fn(ctx, args)
	case domain.BindingConstructor:
		return b.Class.New(domain.NewInputs(args, props))
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "unknown binding kind"), "kind", b.Kind.String())
	}
}

func (x *execution) aggregate(step *domain.Step) error {
	values := make([]any, step.Count)
	for i := step.Count - 1; i >= 0; i-- {
		v, ok := x.req.pop(step.Token)
		if !ok {
			return zerr.With(
				zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "too few values to aggregate"), "token", step.Token.String()),
				"expected", step.Count,
			)
		}
		values[i] = v
	}
	x.req.push(step.Token, values)
	return nil
}

func (x *execution) delegate(ctx context.Context, step *domain.Step) error {
	if x.env.Parent == nil {
		return zerr.With(zerr.Wrap(domain.ErrInternalConsistency, "no parent to delegate to"), "token", step.Token.String())
	}
	v, err := x.env.Parent.Get(ctx, step.Token, domain.WithOptions(step.Options))
	if err != nil {
		var resErr *domain.ResolutionError
		if errors.As(err, &resErr) {
			path := append(slices.Clone(step.Path[:len(step.Path)-1]), resErr.Path...)
			return domain.NewResolutionError(path, resErr.Unwrap())
		}
		return err
	}
	x.req.push(step.Token, v)
	return nil
}

func (x *execution) push(step *domain.Step, v any) {
	if step.Wrap {
		v = []any{v}
	}
	x.req.push(step.Token, v)
}

func (x *execution) startSpan(ctx context.Context, name string) (context.Context, ports.Span) {
	if x.env.Tracer == nil {
		return ctx, nopSpan{}
	}
	return x.env.Tracer.Start(ctx, name)
}

func generate(inj domain.Injection) (v any, err error) {
	defer recoverPanic(&err)
	return inj.Generator()
}

// recoverPanic turns a panic in user code into an error.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = fmt.Errorf("panic: %w", e)
			return
		}
		*err = fmt.Errorf("panic: %v", r)
	}
}

type nopSpan struct{}

func (nopSpan) End()                     {}
func (nopSpan) RecordError(error)        {}
func (nopSpan) SetAttribute(string, any) {}
