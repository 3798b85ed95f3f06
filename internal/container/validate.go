package container

import (
	"errors"
	"fmt"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/zerr"
)

// Validate checks that every managed, non-optional injection of every binding can
// be resolved. With checkAutobindings, every class that could be autobound is
// checked too. All violations are reported together, followed by the parent's.
func (c *Container) Validate(checkAutobindings bool) error {
	if err := c.checkPending(); err != nil {
		return err
	}

	var errs []error
	for _, b := range c.snapshot() {
		injections, err := source{c}.Injections(b)
		if err != nil {
			errs = append(errs, zerr.With(err, "binding", b.String()))
			continue
		}
		errs = append(errs, c.validateInjections(dependentName(b), injections)...)
	}

	if checkAutobindings && c.cfg.autobind {
		seen := make(map[*domain.Class]bool)
		for _, ctx := range c.cfg.searchContexts() {
			for _, class := range c.cfg.registry.Classes(ctx) {
				if seen[class] || c.hasLocal(class.Token()) {
					continue
				}
				seen[class] = true
				if c.parent != nil {
					// The parent reports classes it can resolve itself.
					has, err := c.parent.has(class.Token())
					if err != nil {
						errs = append(errs, err)
						continue
					}
					if has {
						continue
					}
				}
				injections, err := c.cfg.registry.Injections(class)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				errs = append(errs, c.validateInjections(class.Name(), injections)...)
			}
		}
	}

	if c.parent != nil {
		if err := c.parent.Validate(checkAutobindings); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	c.cfg.logger.Log(domain.LogLevelWarn, "container validation failed", "violations", len(errs))
	return fmt.Errorf("%w:\n%w", domain.ErrValidationFailed, errors.Join(errs...))
}

func (c *Container) validateInjections(dependent string, injections []domain.Injection) []error {
	var errs []error
	for _, inj := range injections {
		if !inj.Managed() || inj.Options.Optional {
			continue
		}
		ok, err := c.has(inj.Token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			errs = append(errs, zerr.With(
				zerr.With(
					zerr.Wrap(domain.ErrUnboundToken, fmt.Sprintf("%s depends on %s, which is not bound", dependent, inj.Token)),
					"dependent", dependent,
				),
				"token", inj.Token.String(),
			))
		}
	}
	return errs
}

func dependentName(b *domain.Binding) string {
	if b.Kind == domain.BindingConstructor && b.Class.Token() != b.Token {
		return fmt.Sprintf("%s (%s)", b.Token, b.Class.Name())
	}
	return b.Token.String()
}
