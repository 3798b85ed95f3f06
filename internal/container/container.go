// Package container implements the dependency injection container: binding
// registration, modules, child containers, resolution and validation.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/engine/executor"
	"go.trai.ch/weave/internal/engine/planner"
	"go.trai.ch/zerr"
)

// Container resolves identifiers to values.
type Container struct {
	cfg        config
	parent     *Container
	singletons *executor.SingletonCache
	ids        *atomic.Uint64

	mu       sync.RWMutex
	bindings []*domain.Binding
	pending  map[*BindingBuilder]struct{}
}

// New creates a root container.
func New(opts ...Option) *Container {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Container{
		cfg:        cfg,
		singletons: executor.NewSingletonCache(),
		ids:        new(atomic.Uint64),
		pending:    make(map[*BindingBuilder]struct{}),
	}
}

// CreateChild returns a container that inherits this container's configuration,
// delegates unresolved requests to it and shares its singleton cache.
func (c *Container) CreateChild(opts ...Option) *Container {
	cfg := c.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Container{
		cfg:        cfg,
		parent:     c,
		singletons: c.singletons,
		ids:        c.ids,
		pending:    make(map[*BindingBuilder]struct{}),
	}
}

// Parent returns the parent container, or nil for a root container.
func (c *Container) Parent() *Container { return c.parent }

// Get resolves id. Every call plans and executes a fresh request.
func (c *Container) Get(ctx context.Context, id domain.Identifier, opts ...domain.InjectOption) (any, error) {
	if err := c.checkPending(); err != nil {
		return nil, err
	}

	plan, err := planner.Calculate(source{c}, domain.Request(id, opts...))
	if err != nil {
		c.cfg.logger.Log(c.cfg.logLevel, "resolution planning failed", "token", id.Token().String(), "error", err)
		return nil, err
	}
	c.cfg.logger.Log(c.cfg.logLevel, "resolution plan",
		"token", plan.Target.String(),
		"digest", plan.Digest(),
		"steps", len(plan.Steps),
		"plan", plan.String(),
	)

	if c.cfg.tracer == nil {
		return c.execute(ctx, plan)
	}
	ctx, span := c.cfg.tracer.Start(ctx, "get "+plan.Target.String())
	defer span.End()
	c.cfg.tracer.EmitPlan(ctx, plan)

	v, err := c.execute(ctx, plan)
	if err != nil {
		span.RecordError(err)
	}
	return v, err
}

func (c *Container) execute(ctx context.Context, plan *domain.Plan) (any, error) {
	env := executor.Env{
		Singletons: c.singletons,
		Container:  c,
		Tracer:     c.cfg.tracer,
	}
	if c.parent != nil {
		env.Parent = c.parent
	}

	v, err := executor.Execute(ctx, plan, env)
	if err != nil {
		if errors.Is(err, domain.ErrInternalConsistency) {
			c.cfg.logger.Error(err)
		}
		return nil, err
	}
	return v, nil
}

// Plan computes the resolution plan of id without executing it.
func (c *Container) Plan(id domain.Identifier, opts ...domain.InjectOption) (*domain.Plan, error) {
	if err := c.checkPending(); err != nil {
		return nil, err
	}
	return planner.Calculate(source{c}, domain.Request(id, opts...))
}

// Has reports whether id is bound locally, bound in an ancestor, or can be autobound.
func (c *Container) Has(id domain.Identifier) (bool, error) {
	if err := c.checkPending(); err != nil {
		return false, err
	}
	return c.has(id.Token())
}

func (c *Container) has(token *domain.Token) (bool, error) {
	if c.hasLocal(token) || c.autobindContext(token) != nil {
		return true, nil
	}
	if c.parent != nil {
		return c.parent.has(token)
	}
	return false, nil
}

func (c *Container) hasLocal(token *domain.Token) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.bindings {
		if b.Token == token {
			return true
		}
	}
	return false
}

// Bind starts a binding of id. The binding is registered by one of the
// builder's terminal methods; until then the container refuses to resolve.
func (c *Container) Bind(id domain.Identifier) *BindingBuilder {
	return c.bind(id, nil)
}

// Unbind removes every binding of id and purges their cached singletons.
func (c *Container) Unbind(id domain.Identifier) error {
	if c.unbind(id.Token()) == 0 {
		return invalidOperation(domain.ErrTokenNotBound, "cannot unbind a token that is not bound", id.Token())
	}
	return nil
}

// Rebind removes every binding of id, if any, and starts a new one.
func (c *Container) Rebind(id domain.Identifier) *BindingBuilder {
	c.unbind(id.Token())
	return c.bind(id, nil)
}

func (c *Container) unbind(token *domain.Token) int {
	c.mu.Lock()
	var removed []uint64
	kept := c.bindings[:0]
	for _, b := range c.bindings {
		if b.Token == token {
			removed = append(removed, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	clear(c.bindings[len(kept):])
	c.bindings = kept
	c.mu.Unlock()

	if len(removed) > 0 {
		c.singletons.Purge(removed...)
		c.cfg.logger.Log(c.cfg.logLevel, "binding removed", "token", token.String(), "count", len(removed))
	}
	return len(removed)
}

func (c *Container) bind(id domain.Identifier, module *domain.ModuleInfo) *BindingBuilder {
	b := &BindingBuilder{
		c:      c,
		id:     id,
		token:  id.Token(),
		scope:  c.cfg.defaultScope,
		module: module,
	}
	c.mu.Lock()
	c.pending[b] = struct{}{}
	c.mu.Unlock()
	return b
}

func (c *Container) register(builder *BindingBuilder, b *domain.Binding) error {
	c.mu.Lock()
	delete(c.pending, builder)
	if err := b.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	b.ID = c.ids.Add(1)
	c.bindings = append(c.bindings, b)
	c.mu.Unlock()

	c.cfg.logger.Log(c.cfg.logLevel, "binding registered", "binding", b.String(), "module", b.Module.String())
	return nil
}

func (c *Container) checkPending() error {
	tokens := c.pendingTokens(nil)
	if len(tokens) == 0 {
		return nil
	}
	return zerr.With(
		zerr.Wrap(domain.ErrIncompleteBinding, "bindings were started but never finished"),
		"tokens", strings.Join(tokens, ", "),
	)
}

// pendingTokens returns the tokens of unfinished builders, restricted to module when set.
func (c *Container) pendingTokens(module *domain.ModuleInfo) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for b := range c.pending {
		if module == nil || b.module == module {
			out = append(out, b.token.String())
		}
	}
	return out
}

func (c *Container) snapshot() []*domain.Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domain.Binding, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// Get resolves id and asserts the value to T.
func Get[T any](ctx context.Context, c *Container, id domain.Identifier, opts ...domain.InjectOption) (T, error) {
	var zero T
	v, err := c.Get(ctx, id, opts...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, zerr.With(
			zerr.Wrap(domain.ErrInvalidOperation, fmt.Sprintf("resolved value has type %T, not %T", v, zero)),
			"token", id.Token().String(),
		)
	}
	return typed, nil
}

// GetKey resolves a typed key.
func GetKey[T any](ctx context.Context, c *Container, key domain.Key[T], opts ...domain.InjectOption) (T, error) {
	return Get[T](ctx, c, key, opts...)
}

// GetAll resolves every binding of id and asserts each value to T.
func GetAll[T any](ctx context.Context, c *Container, id domain.Identifier, opts ...domain.InjectOption) ([]T, error) {
	v, err := c.Get(ctx, id, append(opts, domain.Multiple())...)
	if err != nil {
		return nil, err
	}
	values, _ := v.([]any)
	out := make([]T, 0, len(values))
	for _, item := range values {
		typed, ok := item.(T)
		if !ok {
			return nil, zerr.With(
				zerr.Wrap(domain.ErrInvalidOperation, fmt.Sprintf("resolved value has type %T", item)),
				"token", id.Token().String(),
			)
		}
		out = append(out, typed)
	}
	return out, nil
}

func invalidOperation(cause error, msg string, token *domain.Token) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidOperation, zerr.With(zerr.Wrap(cause, msg), "token", token.String()))
}

func (c *Container) abandon(builder *BindingBuilder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, builder)
}
