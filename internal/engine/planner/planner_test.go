package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/engine/planner"
)

type stubSource struct {
	bindings map[*domain.Token][]*domain.Binding
	parent   bool
	calls    int
}

func newStubSource() *stubSource {
	return &stubSource{bindings: make(map[*domain.Token][]*domain.Binding)}
}

func (s *stubSource) add(b *domain.Binding) *domain.Binding {
	if b.Scope == "" {
		b.Scope = domain.ScopeTransient
	}
	s.bindings[b.Token] = append(s.bindings[b.Token], b)
	return b
}

func (s *stubSource) Bindings(inj domain.Injection) ([]*domain.Binding, error) {
	var out []*domain.Binding
	for _, b := range s.bindings[inj.Token] {
		if b.Matches(inj.Options.Metadata) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubSource) Injections(b *domain.Binding) ([]domain.Injection, error) {
	s.calls++
	return b.Dependencies, nil
}

func (s *stubSource) HasParent() bool { return s.parent }

func dynamic(token *domain.Token, deps ...domain.Injection) *domain.Binding {
	return &domain.Binding{
		Kind:         domain.BindingDynamic,
		Token:        token,
		Dependencies: deps,
		Dynamic: func(_ context.Context, _ []any) (any, error) {
			panic("planning must not run user code")
		},
	}
}

func kinds(plan *domain.Plan) []domain.StepKind {
	out := make([]domain.StepKind, len(plan.Steps))
	for i, s := range plan.Steps {
		out[i] = s.Kind
	}
	return out
}

func TestCalculate_DependenciesFirst(t *testing.T) {
	src := newStubSource()
	greeting := domain.NewToken("greeting")
	out := domain.NewToken("out")
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: greeting, Value: "hi"})
	src.add(dynamic(out, domain.Dep(greeting)))

	plan, err := planner.Calculate(src, domain.Request(out))
	require.NoError(t, err)

	require.Len(t, plan.Steps, 2)
	assert.Same(t, greeting, plan.Steps[0].Token)
	assert.Same(t, out, plan.Steps[1].Token)
	assert.Equal(t, []*domain.Token{out, greeting}, plan.Steps[0].Path)
	assert.Same(t, out, plan.Target)
}

func TestCalculate_CacheStepSkipsSubtree(t *testing.T) {
	src := newStubSource()
	leaf := domain.NewToken("leaf")
	mid := domain.NewToken("mid")
	root := domain.NewToken("root")
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: leaf, Value: 1, Scope: domain.ScopeRequest})
	src.add(&domain.Binding{Kind: domain.BindingDynamic, Token: mid, Scope: domain.ScopeSingleton, Dependencies: domain.Deps(leaf)})
	src.add(dynamic(root, domain.Dep(mid)))

	plan, err := planner.Calculate(src, domain.Request(root))
	require.NoError(t, err)

	assert.Equal(t, []domain.StepKind{
		domain.StepFetchFromCache, // mid
		domain.StepFetchFromCache, // leaf
		domain.StepCreate,         // leaf
		domain.StepCreate,         // mid
		domain.StepCreate,         // root
	}, kinds(plan))
	assert.Equal(t, 3, plan.Steps[0].Skip)
	assert.Equal(t, domain.ScopeSingleton, plan.Steps[0].Cache)
	assert.Equal(t, 1, plan.Steps[1].Skip)
	assert.Equal(t, domain.ScopeRequest, plan.Steps[1].Cache)
}

func TestCalculate_Ambiguous(t *testing.T) {
	src := newStubSource()
	tok := domain.NewToken("weapon")
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok, Value: "sword"})
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok, Value: "bow"})

	_, err := planner.Calculate(src, domain.Request(tok))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAmbiguousBinding)

	var resErr *domain.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, []string{"weapon"}, resErr.PathNames())
}

func TestCalculate_MultipleAggregates(t *testing.T) {
	src := newStubSource()
	tok := domain.NewToken("weapon")
	first := src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok, Value: "sword"})
	second := src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok, Value: "bow", Scope: domain.ScopeSingleton})

	plan, err := planner.Calculate(src, domain.Request(tok, domain.Multiple()))
	require.NoError(t, err)

	assert.Equal(t, []domain.StepKind{
		domain.StepCreate,
		domain.StepFetchFromCache,
		domain.StepCreate,
		domain.StepAggregate,
	}, kinds(plan))
	assert.Same(t, first, plan.Steps[0].Binding)
	assert.Same(t, second, plan.Steps[2].Binding)
	assert.False(t, plan.Steps[0].Wrap)
	assert.Equal(t, 2, plan.Steps[3].Count)
}

func TestCalculate_SingleBindingWithMultipleWraps(t *testing.T) {
	src := newStubSource()
	tok := domain.NewToken("weapon")
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok, Value: "sword"})

	plan, err := planner.Calculate(src, domain.Request(tok, domain.Multiple()))
	require.NoError(t, err)

	require.Len(t, plan.Steps, 1)
	assert.True(t, plan.Steps[0].Wrap)
}

func TestCalculate_Unbound(t *testing.T) {
	src := newStubSource()
	missing := domain.NewToken("missing")
	root := domain.NewToken("root")
	src.add(dynamic(root, domain.Dep(missing)))

	_, err := planner.Calculate(src, domain.Request(root))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnboundToken)

	var resErr *domain.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, []string{"root", "missing"}, resErr.PathNames())
	assert.Same(t, missing, resErr.Token)
}

func TestCalculate_Optional(t *testing.T) {
	src := newStubSource()
	missing := domain.NewToken("missing")

	plan, err := planner.Calculate(src, domain.Request(missing, domain.Optional()))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.StepCreate, plan.Steps[0].Kind)
	assert.Nil(t, plan.Steps[0].Binding)
}

func TestCalculate_DelegatesToParent(t *testing.T) {
	src := newStubSource()
	src.parent = true
	missing := domain.NewToken("missing")

	plan, err := planner.Calculate(src, domain.Request(missing, domain.Multiple()))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, domain.StepRequestFromParent, plan.Steps[0].Kind)
	assert.True(t, plan.Steps[0].Options.Multiple)
}

func TestCalculate_Cycles(t *testing.T) {
	a := domain.NewToken("A")
	b := domain.NewToken("B")

	tests := []struct {
		name string
		dep  func(*domain.Token) domain.Injection
	}{
		{"constructor parameter", func(t *domain.Token) domain.Injection { return domain.Param(0, t) }},
		{"property", func(t *domain.Token) domain.Injection { return domain.Property("next", t) }},
		{"dynamic dependency", func(t *domain.Token) domain.Injection { return domain.Dep(t) }},
		{"optional dependency", func(t *domain.Token) domain.Injection { return domain.Dep(t, domain.Optional()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newStubSource()
			src.add(dynamic(a, tt.dep(b)))
			src.add(dynamic(b, tt.dep(a)))

			_, err := planner.Calculate(src, domain.Request(a))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrRecursiveResolution)

			var resErr *domain.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, []string{"A", "B", "A"}, resErr.PathNames())
		})
	}
}

func TestCalculate_SkipsUnmanagedInputs(t *testing.T) {
	src := newStubSource()
	tok := domain.NewToken("svc")
	src.add(dynamic(tok, domain.Unmanaged(0, func() (any, error) { return 1, nil })))

	plan, err := planner.Calculate(src, domain.Request(tok))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Len(t, plan.Steps[0].Inputs, 1)
}

type failingSource struct{ *stubSource }

func (failingSource) Injections(*domain.Binding) ([]domain.Injection, error) {
	return nil, domain.ErrMissingInjectable
}

func TestCalculate_InjectionLookupFailure(t *testing.T) {
	src := newStubSource()
	tok := domain.NewToken("svc")
	src.add(&domain.Binding{Kind: domain.BindingStatic, Token: tok})

	_, err := planner.Calculate(failingSource{src}, domain.Request(tok))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingInjectable))

	var resErr *domain.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, []string{"svc"}, resErr.PathNames())
}
