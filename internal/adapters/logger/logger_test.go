package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"go.trai.ch/weave/internal/adapters/logger"
	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
)

var _ ports.Logger = (*logger.Logger)(nil)

func newLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Log(t *testing.T) {
	lg, buf := newLogger(t)

	lg.Log(domain.LogLevelInfo, "binding registered", "token", "greeting")
	assert.Equal(t, "binding registered token=greeting\n", buf.String())

	buf.Reset()
	lg.Log(domain.LogLevelWarn, "container validation failed", "violations", 2)
	assert.Equal(t, "! container validation failed violations=2\n", buf.String())
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newLogger(t)

	lg.Log(domain.LogLevelDebug, "hidden")
	assert.Empty(t, buf.String())

	lg.SetLevel(domain.LogLevelDebug)
	lg.Log(domain.LogLevelDebug, "shown")
	assert.Equal(t, "○ shown\n", buf.String())
}

func TestLogger_MultilineAttr(t *testing.T) {
	lg, buf := newLogger(t)

	lg.Log(domain.LogLevelInfo, "resolution plan", "plan", "  1. a\n  2. b\n")
	assert.Equal(t, "resolution plan plan=\n  1. a\n  2. b\n", buf.String())
}

func TestLogger_Error(t *testing.T) {
	lg, buf := newLogger(t)

	cause := zerr.With(zerr.Wrap(domain.ErrUnboundToken, "no binding found"), "token", "B")
	lg.Error(domain.NewResolutionError([]*domain.Token{domain.NewToken("A"), domain.NewToken("B")}, cause))

	want := "✗ Error: failed to resolve B (A -> B)\n\n" +
		"  Caused by:\n" +
		"    → no binding found\n" +
		"      token: B\n" +
		"    → unbound token\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newLogger(t)
	lg.SetJSON(true)

	lg.Log(domain.LogLevelInfo, "binding registered", "token", "greeting")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "binding registered", rec["msg"])
	assert.Equal(t, "greeting", rec["token"])

	buf.Reset()
	lg.Error(zerr.With(zerr.Wrap(domain.ErrRecursiveResolution, "dependency cycle detected"), "cycle", "A -> B -> A"))
	rec = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "A -> B -> A", rec["cycle"])
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []logger.ErrorEntry
	}{
		{
			name: "standard error",
			err:  errors.New("simple"),
			want: []logger.ErrorEntry{{Message: "simple"}},
		},
		{
			name: "zerr chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle"), "outer"),
			want: []logger.ErrorEntry{
				{Message: "outer", Metadata: map[string]any{}},
				{Message: "middle", Metadata: map[string]any{}},
				{Message: "root cause"},
			},
		},
		{
			name: "metadata on plain error",
			err:  zerr.With(errors.New("disk full"), "path", "/tmp"),
			want: []logger.ErrorEntry{{Message: "disk full", Metadata: map[string]any{"path": "/tmp"}}},
		},
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.CollectErrorEntries(tt.err))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{"single", []logger.ErrorEntry{{Message: "boom"}}, "Error: boom"},
		{
			"causes",
			[]logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			"Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			"sorted metadata",
			[]logger.ErrorEntry{{Message: "e", Metadata: map[string]any{"b": 2, "a": 1}}},
			"Error: e\n       a: 1\n       b: 2",
		},
		{
			"multiline",
			[]logger.ErrorEntry{{Message: "main"}, {Message: "line1\nline2"}},
			"Error: main\n\n  Caused by:\n    → line1\n      line2",
		},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
