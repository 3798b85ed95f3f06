package container

import (
	"slices"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

type config struct {
	autobind      bool
	contexts      []*domain.Context
	defaultScope  domain.Scope
	excludeGlobal bool
	logger        ports.Logger
	logLevel      domain.LogLevel
	tracer        ports.Tracer
	registry      *domain.Registry
}

func defaultConfig() config {
	return config{
		defaultScope: domain.ScopeTransient,
		logger:       nopLogger{},
		logLevel:     domain.LogLevelDebug,
		registry:     domain.DefaultRegistry,
	}
}

// searchContexts returns the contexts searched for autobinding, in order.
func (c config) searchContexts() []*domain.Context {
	out := slices.Clone(c.contexts)
	if !c.excludeGlobal && !slices.Contains(out, domain.GlobalContext) {
		out = append(out, domain.GlobalContext)
	}
	return out
}

// Option configures a Container.
type Option func(*config)

// WithAutobindClasses lets registered classes resolve without an explicit binding.
func WithAutobindClasses(enabled bool) Option {
	return func(c *config) { c.autobind = enabled }
}

// WithContexts sets the contexts searched for autobinding, before the global one.
func WithContexts(ctxs ...*domain.Context) Option {
	return func(c *config) { c.contexts = slices.Clone(ctxs) }
}

// WithDefaultScope sets the scope of bindings that do not choose one.
func WithDefaultScope(scope domain.Scope) Option {
	return func(c *config) { c.defaultScope = scope }
}

// WithExcludeGlobalContext stops the global context from being searched.
func WithExcludeGlobalContext(exclude bool) Option {
	return func(c *config) { c.excludeGlobal = exclude }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l ports.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = nopLogger{}
		}
		c.logger = l
	}
}

// WithLogLevel sets the level resolution plans are logged at.
func WithLogLevel(level domain.LogLevel) Option {
	return func(c *config) { c.logLevel = level }
}

// WithTracer sets the tracer that receives plans and step spans.
func WithTracer(t ports.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// WithRegistry replaces the default class registry.
func WithRegistry(r *domain.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

type nopLogger struct{}

func (nopLogger) Log(domain.LogLevel, string, ...any) {}
func (nopLogger) Error(error)                         {}
