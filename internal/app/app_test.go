package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/weave/internal/core/ports/mocks"
)

const path = "weave.yaml"

func greetingsManifest() *domain.Manifest {
	return &domain.Manifest{
		Settings: domain.ManifestSettings{DefaultScope: domain.ScopeTransient, LogLevel: domain.LogLevelDebug},
		Modules: []domain.ManifestModule{{
			Info: domain.ModuleInfo{Name: "greetings"},
			Bindings: []domain.ManifestBinding{
				{Token: "greeting", Constant: "hi"},
				{Token: "out", DependsOn: []string{"greeting"}, Template: "{{ .greeting }} world"},
				{Token: "db", Constant: "primary-conn", Metadata: domain.Metadata{"name": "primary"}},
				{Token: "db", Constant: "replica-conn", Metadata: domain.Metadata{"name": "replica"}},
				{Token: "name", Constant: "a", Scope: domain.ScopeSingleton},
				{Token: "name", Constant: "b"},
			},
		}},
	}
}

func newApp(t *testing.T, m *domain.Manifest, tracers map[string]ports.Tracer) *app.App {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockManifestLoader(ctrl)
	loader.EXPECT().Load(path).Return(m, nil).AnyTimes()
	return app.New(loader, nil, tracers)
}

func TestApp_Resolve(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, greetingsManifest(), nil)

	tests := []struct {
		name string
		req  app.Request
		want any
	}{
		{"template", app.Request{Token: "out"}, "hi world"},
		{"constant", app.Request{Token: "greeting"}, "hi"},
		{"filter", app.Request{Token: "db", Filter: domain.Metadata{"name": "replica"}}, "replica-conn"},
		{"multiple", app.Request{Token: "name", Multiple: true}, []any{"a", "b"}},
		{"optional unknown", app.Request{Token: "nope", Optional: true}, nil},
		{"optional unknown multiple", app.Request{Token: "nope", Optional: true, Multiple: true}, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := a.Resolve(ctx, path, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestApp_ResolveErrors(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, greetingsManifest(), nil)

	_, err := a.Resolve(ctx, path, app.Request{Token: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnboundToken)

	_, err = a.Resolve(ctx, path, app.Request{Token: "name"})
	assert.ErrorIs(t, err, domain.ErrAmbiguousBinding)
}

func TestApp_Plan(t *testing.T) {
	a := newApp(t, greetingsManifest(), nil)

	plan, err := a.Plan(context.Background(), path, app.Request{Token: "out"})
	require.NoError(t, err)
	assert.Equal(t, "  1. create greeting via constant\n  2. create out via dynamic\n", plan.String())
}

func TestApp_Validate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, newApp(t, greetingsManifest(), nil).Validate(ctx, path, false))

	m := greetingsManifest()
	m.Modules[0].Bindings = append(m.Modules[0].Bindings, domain.ManifestBinding{
		Token: "report", DependsOn: []string{"missing"}, Template: "{{ .missing }}",
	})
	err := newApp(t, m, nil).Validate(ctx, path, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, err.Error(), "report depends on missing, which is not bound")
}

func TestApp_BuildErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockManifestLoader(ctrl)
	cause := errors.New("disk on fire")
	loader.EXPECT().Load(path).Return(nil, cause)

	_, err := app.New(loader, nil, nil).Build(ctx, path)
	assert.ErrorIs(t, err, cause)

	m := &domain.Manifest{Modules: []domain.ManifestModule{{
		Info:     domain.ModuleInfo{Name: "tagged"},
		Bindings: []domain.ManifestBinding{{Token: "db", Constant: 1, Metadata: domain.Metadata{"name": "a"}}, {Token: "db", Constant: 2}},
	}}}
	_, err = newApp(t, m, nil).Build(ctx, path)
	assert.ErrorIs(t, err, domain.ErrMetadataRequired)
}

func TestApp_UseTracer(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	a := newApp(t, greetingsManifest(), map[string]ports.Tracer{app.TracerOTel: tracer})

	err := a.UseTracer("jaeger")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	require.NoError(t, a.UseTracer(app.TracerOTel))
	tracer.EXPECT().Start(gomock.Any(), "get greeting").Return(context.Background(), span)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), span).AnyTimes()
	tracer.EXPECT().EmitPlan(gomock.Any(), gomock.Any()).Times(1)
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().End().AnyTimes()

	v, err := a.Resolve(context.Background(), path, app.Request{Token: "greeting"})
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	require.NoError(t, a.UseTracer(app.TracerNone))
}
