package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/weave/internal/core/domain"
)

func TestBinding_MetadataMatching(t *testing.T) {
	tagged := domain.NewMetadataToken("tagged", nil)
	factory := func(domain.FactoryContext) (domain.DynamicFunc, error) { return nil, nil }

	tests := []struct {
		name    string
		binding *domain.Binding
		filter  domain.Metadata
		want    bool
	}{
		{
			name:    "static binding without filter",
			binding: &domain.Binding{Kind: domain.BindingStatic, Token: tagged, Scope: domain.ScopeTransient, Metadata: domain.Metadata{"name": "a"}},
			want:    true,
		},
		{
			name:    "static binding missing key",
			binding: &domain.Binding{Kind: domain.BindingStatic, Token: tagged, Scope: domain.ScopeTransient, Metadata: domain.Metadata{"name": "a"}},
			filter:  domain.Metadata{"zone": "eu"},
			want:    false,
		},
		{
			name:    "transient factory without metadata defers",
			binding: &domain.Binding{Kind: domain.BindingFactory, Factory: factory, Token: tagged, Scope: domain.ScopeTransient},
			filter:  domain.Metadata{"name": "a"},
			want:    true,
		},
		{
			name:    "transient factory with disjoint metadata defers",
			binding: &domain.Binding{Kind: domain.BindingFactory, Factory: factory, Token: tagged, Scope: domain.ScopeTransient, Metadata: domain.Metadata{"zone": "eu"}},
			filter:  domain.Metadata{"name": "a"},
			want:    true,
		},
		{
			name:    "transient factory with conflicting metadata",
			binding: &domain.Binding{Kind: domain.BindingFactory, Factory: factory, Token: tagged, Scope: domain.ScopeTransient, Metadata: domain.Metadata{"name": "b"}},
			filter:  domain.Metadata{"name": "a"},
			want:    false,
		},
		{
			name:    "singleton factory does not defer",
			binding: &domain.Binding{Kind: domain.BindingFactory, Factory: factory, Token: tagged, Scope: domain.ScopeSingleton, Metadata: domain.Metadata{"zone": "eu"}},
			filter:  domain.Metadata{"name": "a"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.binding.Matches(tt.filter))
		})
	}
}

func TestBinding_Validate(t *testing.T) {
	tagged := domain.NewMetadataToken("tagged", nil)

	b := &domain.Binding{Kind: domain.BindingStatic, Token: tagged, Scope: domain.ScopeSingleton}
	assert.ErrorIs(t, b.Validate(), domain.ErrMetadataRequired)

	b.Metadata = domain.Metadata{"name": "a"}
	assert.NoError(t, b.Validate())

	deferred := &domain.Binding{
		Kind:    domain.BindingFactory,
		Token:   tagged,
		Scope:   domain.ScopeTransient,
		Factory: func(domain.FactoryContext) (domain.DynamicFunc, error) { return nil, nil },
	}
	assert.NoError(t, deferred.Validate())

	missing := &domain.Binding{Kind: domain.BindingDynamic, Token: domain.NewToken("x"), Scope: domain.ScopeTransient}
	assert.ErrorIs(t, missing.Validate(), domain.ErrBindingConfiguration)
}

func TestParseScope(t *testing.T) {
	s, err := domain.ParseScope(" Singleton ")
	assert.NoError(t, err)
	assert.Equal(t, domain.ScopeSingleton, s)
	assert.True(t, s.Cached())
	assert.False(t, domain.ScopeTransient.Cached())

	_, err = domain.ParseScope("session")
	assert.ErrorIs(t, err, domain.ErrBindingConfiguration)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  domain.LogLevel
	}{
		{"debug", domain.LogLevelDebug},
		{"INFO", domain.LogLevelInfo},
		{"warning", domain.LogLevelWarn},
		{"error", domain.LogLevelError},
		{"", domain.LogLevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseLogLevel(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}

	_, err := domain.ParseLogLevel("loud")
	assert.Error(t, err)
}
