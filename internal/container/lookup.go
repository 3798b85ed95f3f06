package container

import (
	"go.trai.ch/weave/internal/core/domain"
)

// source exposes a container to the planner.
type source struct {
	c *Container
}

// Bindings returns the local bindings matching inj. When the token has no local
// binding at all, a registered class may be autobound: the synthesized binding is
// kept for later requests. A request whose filter an autobound binding could never
// satisfy leaves the binding list untouched.
func (s source) Bindings(inj domain.Injection) ([]*domain.Binding, error) {
	c := s.c
	if matched := c.match(inj); len(matched) > 0 {
		return matched, nil
	}
	if c.hasLocal(inj.Token) || !(domain.Metadata{}).Matches(inj.Options.Metadata) {
		return nil, nil
	}

	ctx := c.autobindContext(inj.Token)
	if ctx == nil {
		return nil, nil
	}
	if c.parent != nil {
		has, err := c.parent.has(inj.Token)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, nil
		}
	}

	return []*domain.Binding{c.autobind(inj.Token, ctx)}, nil
}

// Injections returns the declared injections of b.
func (s source) Injections(b *domain.Binding) ([]domain.Injection, error) {
	if b.Kind == domain.BindingConstructor {
		return s.c.cfg.registry.Injections(b.Class)
	}
	return b.Dependencies, nil
}

// HasParent reports whether the container has a parent.
func (s source) HasParent() bool {
	return s.c.parent != nil
}

func (c *Container) match(inj domain.Injection) []*domain.Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*domain.Binding
	for _, b := range c.bindings {
		if b.Token == inj.Token && b.Matches(inj.Options.Metadata) {
			out = append(out, b)
		}
	}
	return out
}

// autobindContext returns the first searched context the class of token is
// registered in, or nil when the token cannot be autobound.
func (c *Container) autobindContext(token *domain.Token) *domain.Context {
	class := token.Class()
	if !c.cfg.autobind || class == nil {
		return nil
	}
	for _, ctx := range c.cfg.searchContexts() {
		if c.cfg.registry.InContext(class, ctx) {
			return ctx
		}
	}
	return nil
}

// autobind registers a constructor binding of token's class bound to ctx, unless
// one appeared concurrently.
func (c *Container) autobind(token *domain.Token, ctx *domain.Context) *domain.Binding {
	c.mu.Lock()
	for _, b := range c.bindings {
		if b.Token == token && b.Context != nil {
			c.mu.Unlock()
			return b
		}
	}
	b := &domain.Binding{
		ID:       c.ids.Add(1),
		Kind:     domain.BindingConstructor,
		Token:    token,
		Scope:    c.cfg.defaultScope,
		Metadata: domain.Metadata{},
		Class:    token.Class(),
		Context:  ctx,
	}
	c.bindings = append(c.bindings, b)
	c.mu.Unlock()

	c.cfg.logger.Log(c.cfg.logLevel, "class autobound", "class", b.Class.Name(), "context", ctx.Name())
	return b
}
