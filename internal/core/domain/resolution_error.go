package domain

import (
	"strings"
)

// ResolutionError reports a failure to resolve a token, with the path of tokens
// visited from the requested one down to the failure point.
type ResolutionError struct {
	Token *Token
	Path  []*Token
	cause error
}

// NewResolutionError wraps cause.
func NewResolutionError(path []*Token, cause error) *ResolutionError {
	e := &ResolutionError{Path: path, cause: cause}
	if len(path) > 0 {
		e.Token = path[len(path)-1]
	}
	return e
}

// Error implements error.
func (e *ResolutionError) Error() string {
	if e.cause == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.cause.Error()
}

// Message describes the failure without the cause.
func (e *ResolutionError) Message() string {
	var b strings.Builder
	b.WriteString("failed to resolve ")
	b.WriteString(e.Token.String())
	if len(e.Path) > 1 {
		b.WriteString(" (")
		b.WriteString(strings.Join(Names(e.Path), " -> "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *ResolutionError) Unwrap() error { return e.cause }

// PathNames returns the names of the tokens on the path.
func (e *ResolutionError) PathNames() []string { return Names(e.Path) }
