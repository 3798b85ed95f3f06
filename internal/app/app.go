// Package app implements the weave use cases: building a container from a
// manifest, and planning, resolving and validating against it.
package app

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"text/template"

	"go.trai.ch/weave/internal/container"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// Tracer names accepted by UseTracer.
const (
	TracerNone     = "none"
	TracerOTel     = "otel"
	TracerProgrock = "progrock"
)

// App represents the main application logic.
type App struct {
	loader  ports.ManifestLoader
	logger  ports.Logger
	tracers map[string]ports.Tracer
	tracer  ports.Tracer
}

// New creates a new App instance. tracers are selectable by name with UseTracer.
func New(loader ports.ManifestLoader, logger ports.Logger, tracers map[string]ports.Tracer) *App {
	return &App{loader: loader, logger: logger, tracers: tracers}
}

// UseTracer selects the tracer handed to containers built from now on.
func (a *App) UseTracer(name string) error {
	if name == "" || name == TracerNone {
		a.tracer = nil
		return nil
	}
	t, ok := a.tracers[name]
	if !ok {
		return zerr.With(
			zerr.Wrap(domain.ErrInvalidOperation, "unknown tracer"),
			"available", slices.Sorted(maps.Keys(a.tracers)),
		)
	}
	a.tracer = t
	return nil
}

// Session is a container built from a manifest, together with its tokens by name.
type Session struct {
	Container *container.Container
	Manifest  *domain.Manifest
	tokens    map[string]*domain.Token
}

// Token returns the token declared or referenced under name.
func (s *Session) Token(name string) (*domain.Token, error) {
	t, ok := s.tokens[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnboundToken, "token is not declared in the manifest"), "token", name)
	}
	return t, nil
}

// Build loads the manifest at path into a new container.
func (a *App) Build(ctx context.Context, path string) (*Session, error) {
	m, err := a.loader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}

	c := container.New(
		container.WithDefaultScope(m.Settings.DefaultScope),
		container.WithLogLevel(m.Settings.LogLevel),
		container.WithAutobindClasses(m.Settings.AutobindClasses),
		container.WithExcludeGlobalContext(m.Settings.ExcludeGlobalContext),
		container.WithLogger(a.logger),
		container.WithTracer(a.tracer),
	)
	s := &Session{Container: c, Manifest: m, tokens: declareTokens(m)}

	modules := make([]container.Module, 0, len(m.Modules))
	for _, mod := range m.Modules {
		modules = append(modules, container.Module{Info: mod.Info, Load: s.moduleFunc(mod)})
	}
	if err := c.Load(ctx, modules...); err != nil {
		return nil, err
	}
	return s, nil
}

// declareTokens creates one token per name. A name bound with metadata anywhere
// in the manifest gets a metadata token.
func declareTokens(m *domain.Manifest) map[string]*domain.Token {
	withMetadata := make(map[string]bool)
	var names []string
	for _, mod := range m.Modules {
		for _, b := range mod.Bindings {
			names = append(names, b.Token)
			names = append(names, b.DependsOn...)
			if len(b.Metadata) > 0 {
				withMetadata[b.Token] = true
			}
		}
	}

	tokens := make(map[string]*domain.Token, len(names))
	for _, name := range names {
		if _, ok := tokens[name]; ok {
			continue
		}
		if withMetadata[name] {
			tokens[name] = domain.NewMetadataToken(name, nil)
		} else {
			tokens[name] = domain.NewToken(name)
		}
	}
	return tokens
}

func (s *Session) moduleFunc(mod domain.ManifestModule) container.ModuleFunc {
	return func(_ context.Context, b *container.Binder) error {
		for _, mb := range mod.Bindings {
			builder := b.Bind(s.tokens[mb.Token])
			if mb.Scope != "" {
				builder.InScope(mb.Scope)
			}
			if len(mb.Metadata) > 0 {
				builder.WithMetadata(mb.Metadata)
			}

			var err error
			if mb.Template == "" {
				err = builder.ToConstantValue(mb.Constant)
			} else {
				err = s.bindTemplate(builder, mb)
			}
			if err != nil {
				return zerr.With(err, "token", mb.Token)
			}
		}
		return nil
	}
}

// bindTemplate binds a dynamic value rendering mb.Template with the resolved
// dependencies, keyed by token name.
func (s *Session) bindTemplate(builder *container.BindingBuilder, mb domain.ManifestBinding) error {
	tmpl, err := template.New(mb.Token).Option("missingkey=error").Parse(mb.Template)
	if err != nil {
		return zerr.Wrap(err, "invalid template")
	}
	deps := make([]domain.Injection, len(mb.DependsOn))
	for i, name := range mb.DependsOn {
		deps[i] = domain.Dep(s.tokens[name])
	}
	names := slices.Clone(mb.DependsOn)

	return builder.ToDynamicValue(deps, func(_ context.Context, values []any) (any, error) {
		data := make(map[string]any, len(names))
		for i, name := range names {
			data[name] = values[i]
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, zerr.Wrap(err, "template rendering failed")
		}
		return buf.String(), nil
	})
}

// Request describes what to resolve.
type Request struct {
	Token    string
	Optional bool
	Multiple bool
	Filter   domain.Metadata
}

func (s *Session) injection(req Request) (*domain.Token, []domain.InjectOption, error) {
	token, err := s.Token(req.Token)
	if err != nil {
		if !req.Optional {
			return nil, nil, err
		}
		// An optional request for an unknown name resolves like any unbound token.
		token = domain.NewToken(req.Token)
	}
	var opts []domain.InjectOption
	if req.Optional {
		opts = append(opts, domain.Optional())
	}
	if req.Multiple {
		opts = append(opts, domain.Multiple())
	}
	if len(req.Filter) > 0 {
		opts = append(opts, domain.Filter(req.Filter))
	}
	return token, opts, nil
}

// Plan computes the resolution plan of req without running any binding.
func (a *App) Plan(ctx context.Context, path string, req Request) (*domain.Plan, error) {
	s, err := a.Build(ctx, path)
	if err != nil {
		return nil, err
	}
	token, opts, err := s.injection(req)
	if err != nil {
		return nil, err
	}
	return s.Container.Plan(token, opts...)
}

// Resolve resolves req.
func (a *App) Resolve(ctx context.Context, path string, req Request) (any, error) {
	s, err := a.Build(ctx, path)
	if err != nil {
		return nil, err
	}
	token, opts, err := s.injection(req)
	if err != nil {
		return nil, err
	}
	return s.Container.Get(ctx, token, opts...)
}

// Validate checks that every dependency declared in the manifest is bound.
func (a *App) Validate(ctx context.Context, path string, autobind bool) error {
	s, err := a.Build(ctx, path)
	if err != nil {
		return err
	}
	return s.Container.Validate(autobind)
}
