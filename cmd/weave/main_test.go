package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weave/internal/app"
)

const manifest = `version: "1"
settings:
  defaultScope: singleton
modules:
  - name: greetings
    bindings:
      - token: greeting
        constant: hi
      - token: out
        dependsOn: [greeting]
        template: "{{ .greeting }} world"
`

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		content      string
		args         []string
		expectedExit int
	}{
		{"resolve", manifest, []string{"weave", "resolve", "out"}, 0},
		{"plan", manifest, []string{"weave", "plan", "out"}, 0},
		{"validate", manifest, []string{"weave", "validate"}, 0},
		{"progrock tracer", manifest, []string{"weave", "--trace", "progrock", "resolve", "out"}, 0},
		{"unbound token", manifest, []string{"weave", "resolve", "missing"}, 1},
		{"invalid manifest", "version: \"9\"\n", []string{"weave", "validate"}, 1},
		{"unknown command", manifest, []string{"weave", "build"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "weave.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			os.Args = append(tt.args, "-f", path)

			exitCode := run(func(a *app.App) {
				require.NoError(t, a.UseTracer(app.TracerNone))
			})
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
