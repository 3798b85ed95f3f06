// Package planner computes resolution plans.
package planner

import (
	"errors"
	"slices"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

// Source supplies the bindings and injections a plan is built from.
// Implementations must not run user code.
type Source interface {
	// Bindings returns the local bindings matching inj, in declaration order.
	Bindings(inj domain.Injection) ([]*domain.Binding, error)
	// Injections returns the declared injections of b.
	Injections(b *domain.Binding) ([]domain.Injection, error)
	// HasParent reports whether unresolved requests can be delegated upward.
	HasParent() bool
}

// Calculate builds the plan for request. Dependencies always precede their
// dependents, so executing the steps in order satisfies every input.
func Calculate(src Source, request domain.Injection) (*domain.Plan, error) {
	p := &planner{src: src}
	if err := p.plan(request, nil); err != nil {
		return nil, err
	}
	return &domain.Plan{
		Target:  request.Token,
		Request: request,
		Steps:   p.steps,
	}, nil
}

type planner struct {
	src   Source
	steps []domain.Step
}

func (p *planner) plan(inj domain.Injection, path []*domain.Token) error {
	token := inj.Token
	if slices.Contains(path, token) {
		return cycleError(path, token)
	}
	path = append(slices.Clone(path), token)

	bindings, err := p.src.Bindings(inj)
	if err != nil {
		return wrap(path, err)
	}

	switch {
	case len(bindings) == 0:
		return p.planUnbound(inj, path)
	case len(bindings) == 1:
		return p.planBinding(inj, bindings[0], path, inj.Options.Multiple)
	case !inj.Options.Multiple:
		return domain.NewResolutionError(path, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrAmbiguousBinding, "more than one binding matches"), "token", token.String()),
			"bindings", len(bindings),
		))
	}

	for _, b := range bindings {
		if err := p.planBinding(inj, b, path, false); err != nil {
			return err
		}
	}
	p.steps = append(p.steps, domain.Step{
		Kind:    domain.StepAggregate,
		Token:   token,
		Path:    path,
		Count:   len(bindings),
		Options: inj.Options,
	})
	return nil
}

func (p *planner) planUnbound(inj domain.Injection, path []*domain.Token) error {
	switch {
	case p.src.HasParent():
		p.steps = append(p.steps, domain.Step{
			Kind:    domain.StepRequestFromParent,
			Token:   inj.Token,
			Path:    path,
			Options: inj.Options,
		})
		return nil
	case inj.Options.Optional:
		p.steps = append(p.steps, domain.Step{
			Kind:    domain.StepCreate,
			Token:   inj.Token,
			Path:    path,
			Options: inj.Options,
		})
		return nil
	default:
		return domain.NewResolutionError(path, zerr.With(
			zerr.Wrap(domain.ErrUnboundToken, "no binding found"), "token", inj.Token.String(),
		))
	}
}

func (p *planner) planBinding(inj domain.Injection, b *domain.Binding, path []*domain.Token, wrapValue bool) error {
	injections, err := p.src.Injections(b)
	if err != nil {
		return wrap(path, err)
	}

	start := len(p.steps)
	cached := b.Scope.Cached()
	if cached {
		p.steps = append(p.steps, domain.Step{
			Kind:    domain.StepFetchFromCache,
			Token:   inj.Token,
			Path:    path,
			Binding: b,
			Cache:   b.Scope,
			Wrap:    wrapValue,
			Options: inj.Options,
		})
	}

	for _, dep := range injections {
		if !dep.Managed() {
			continue
		}
		if err := p.plan(dep, path); err != nil {
			return err
		}
	}

	p.steps = append(p.steps, domain.Step{
		Kind:    domain.StepCreate,
		Token:   inj.Token,
		Path:    path,
		Binding: b,
		Inputs:  injections,
		Cache:   b.Scope,
		Wrap:    wrapValue,
		Options: inj.Options,
	})

	if cached {
		p.steps[start].Skip = len(p.steps) - start - 1
	}
	return nil
}

// cycleError reports the cycle closed by token, starting from the requested token.
func cycleError(path []*domain.Token, token *domain.Token) error {
	cycle := append(slices.Clone(path), token)
	return domain.NewResolutionError(cycle, zerr.With(
		zerr.Wrap(domain.ErrRecursiveResolution, "dependency cycle detected"),
		"cycle", strings.Join(domain.Names(cycle), " -> "),
	))
}

func wrap(path []*domain.Token, err error) error {
	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		return err
	}
	return domain.NewResolutionError(path, err)
}
