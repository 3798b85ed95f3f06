package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Scope is the caching policy of a binding's value.
type Scope string

const (
	// ScopeTransient produces a new value on every resolution.
	ScopeTransient Scope = "transient"
	// ScopeRequest shares one value within a single Get call.
	ScopeRequest Scope = "request"
	// ScopeSingleton shares one value for the lifetime of the container chain.
	ScopeSingleton Scope = "singleton"
)

// Cached reports whether values of this scope are cached at all.
func (s Scope) Cached() bool {
	return s == ScopeRequest || s == ScopeSingleton
}

// String returns the scope name.
func (s Scope) String() string { return string(s) }

// ParseScope converts a scope name, case-insensitively.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeTransient:
		return ScopeTransient, nil
	case ScopeRequest:
		return ScopeRequest, nil
	case ScopeSingleton:
		return ScopeSingleton, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrBindingConfiguration, "unknown scope"), "scope", s)
	}
}
