// Package domain holds the identifier, binding, injection and plan model of the container.
package domain

import (
	"fmt"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// Identifier is anything that can be resolved by a container.
// Tokens, classes and typed keys all identify exactly one Token.
type Identifier interface {
	Token() *Token
}

// MetadataGuard validates the metadata attached to a binding of a metadata token.
type MetadataGuard func(Metadata) error

// SourceInfo describes where a token or module was declared.
// It is used for diagnostics only and never affects resolution.
type SourceInfo struct {
	Name string
	URL  string
}

// Token is the identity of an injectable value.
// Two tokens are the same only if they are the same pointer; names are labels.
type Token struct {
	id    uuid.UUID
	name  InternedString
	guard MetadataGuard
	class *Class
	info  *SourceInfo
}

// NewToken creates a new plain token.
func NewToken(name string) *Token {
	return &Token{id: uuid.New(), name: NewInternedString(name)}
}

// NewMetadataToken creates a token whose bindings must carry metadata accepted by guard.
// A nil guard accepts any non-empty metadata.
func NewMetadataToken(name string, guard MetadataGuard) *Token {
	if guard == nil {
		guard = func(Metadata) error { return nil }
	}
	return &Token{id: uuid.New(), name: NewInternedString(name), guard: guard}
}

// Token implements Identifier.
func (t *Token) Token() *Token { return t }

// ID returns the process-unique identifier of the token.
func (t *Token) ID() uuid.UUID { return t.id }

// Name returns the human-readable name of the token.
func (t *Token) Name() string { return t.name.String() }

// String returns the token name.
func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name.String()
}

// Class returns the class identified by this token, or nil for plain tokens.
func (t *Token) Class() *Class { return t.class }

// IsClass reports whether the token identifies a class.
func (t *Token) IsClass() bool { return t.class != nil }

// RequiresMetadata reports whether bindings of this token must carry metadata.
func (t *Token) RequiresMetadata() bool { return t.guard != nil }

// CheckMetadata runs the token guard against md.
func (t *Token) CheckMetadata(md Metadata) error {
	if t.guard == nil {
		return nil
	}
	if len(md) == 0 {
		return zerr.With(zerr.Wrap(ErrMetadataRequired, "binding carries no metadata"), "token", t.name.String())
	}
	if err := t.guard(md); err != nil {
		return zerr.With(fmt.Errorf("%w: metadata rejected by token guard: %w", ErrBindingConfiguration, err), "token", t.name.String())
	}
	return nil
}

// Info returns the declaration info attached with WithInfo, if any.
func (t *Token) Info() (SourceInfo, bool) {
	if t.info == nil {
		return SourceInfo{}, false
	}
	return *t.info, true
}

// WithInfo attaches declaration info to the token and returns it.
func (t *Token) WithInfo(info SourceInfo) *Token {
	t.info = &info
	return t
}

// Key is a token that also carries the Go type of the value it resolves to.
type Key[T any] struct {
	tok *Token
}

// NewKey creates a typed token.
func NewKey[T any](name string) Key[T] {
	return Key[T]{tok: NewToken(name)}
}

// Token returns the underlying token.
func (k Key[T]) Token() *Token { return k.tok }

// String returns the token name.
func (k Key[T]) String() string { return k.tok.String() }

// Names returns the names of tokens, in order.
func Names(tokens []*Token) []string {
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = t.String()
	}
	return names
}
