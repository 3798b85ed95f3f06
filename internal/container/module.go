package container

import (
	"context"
	"strings"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

// ModuleFunc registers bindings through b. It runs to completion before Load returns.
type ModuleFunc func(ctx context.Context, b *Binder) error

// Module is a named group of bindings.
type Module struct {
	Info domain.ModuleInfo
	Load ModuleFunc
}

// NewModule creates a module.
func NewModule(name string, load ModuleFunc) Module {
	return Module{Info: domain.ModuleInfo{Name: name}, Load: load}
}

// Binder is the view of a container handed to a module. Every binding it
// creates is stamped with the module.
type Binder struct {
	c      *Container
	module *domain.ModuleInfo
}

// Bind starts a binding owned by the module.
func (b *Binder) Bind(id domain.Identifier) *BindingBuilder {
	return b.c.bind(id, b.module)
}

// Unbind removes every binding of id, whichever module created it.
func (b *Binder) Unbind(id domain.Identifier) error {
	return b.c.Unbind(id)
}

// Rebind replaces every binding of id with a new one owned by the module.
func (b *Binder) Rebind(id domain.Identifier) *BindingBuilder {
	b.c.unbind(id.Token())
	return b.c.bind(id, b.module)
}

// Has reports whether id can be resolved. Unfinished bindings of the module are ignored.
func (b *Binder) Has(id domain.Identifier) (bool, error) {
	return b.c.has(id.Token())
}

// Module returns the module info.
func (b *Binder) Module() domain.ModuleInfo {
	return *b.module
}

// Load runs modules in order. A module that fails, or that leaves bindings
// unfinished, stops the load.
func (c *Container) Load(ctx context.Context, modules ...Module) error {
	for i := range modules {
		m := modules[i]
		info := m.Info
		binder := &Binder{c: c, module: &info}

		c.cfg.logger.Log(c.cfg.logLevel, "loading module", "module", info.Name)
		if m.Load == nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidOperation, "module has no load function"), "module", info.Name)
		}
		if err := m.Load(ctx, binder); err != nil {
			return zerr.With(zerr.Wrap(err, "module failed to load"), "module", info.Name)
		}
		if tokens := c.pendingTokens(binder.module); len(tokens) > 0 {
			return zerr.With(
				zerr.With(zerr.Wrap(domain.ErrIncompleteBinding, "module left bindings unfinished"), "module", info.Name),
				"tokens", strings.Join(tokens, ", "),
			)
		}
	}
	return nil
}
