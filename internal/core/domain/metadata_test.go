package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.trai.ch/weave/internal/core/domain"
)

func TestMetadata_Matches(t *testing.T) {
	shared := []string{"a"}
	md := domain.Metadata{"name": "primary", "weight": 3, "tags": shared}

	tests := []struct {
		name   string
		filter domain.Metadata
		want   bool
	}{
		{"empty filter", nil, true},
		{"equal value", domain.Metadata{"name": "primary"}, true},
		{"two keys", domain.Metadata{"name": "primary", "weight": 3}, true},
		{"different value", domain.Metadata{"name": "replica"}, false},
		{"different type", domain.Metadata{"weight": int64(3)}, false},
		{"missing key", domain.Metadata{"zone": "eu"}, false},
		{"same slice", domain.Metadata{"tags": shared}, true},
		{"equal but distinct slice", domain.Metadata{"tags": []string{"a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, md.Matches(tt.filter))
		})
	}
}

func TestMetadata_Compatible(t *testing.T) {
	md := domain.Metadata{"name": "primary"}

	assert.True(t, md.Compatible(nil))
	assert.True(t, domain.Metadata(nil).Compatible(md))
	assert.True(t, md.Compatible(domain.Metadata{"zone": "eu"}))
	assert.True(t, md.Compatible(domain.Metadata{"name": "primary"}))
	assert.False(t, md.Compatible(domain.Metadata{"name": "replica"}))
}

func TestMetadata_StringIsSorted(t *testing.T) {
	md := domain.Metadata{"b": 2, "a": "x"}
	assert.Equal(t, "{a=x, b=2}", md.String())
}

func TestMetadata_Clone(t *testing.T) {
	md := domain.Metadata{"a": 1}
	c := md.Clone()
	c["a"] = 2

	assert.Equal(t, 1, md["a"])
	assert.NotNil(t, domain.Metadata(nil).Clone())
}
