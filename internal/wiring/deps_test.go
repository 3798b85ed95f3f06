package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/weave/internal/app"
	"go.trai.ch/weave/internal/core/ports"
	_ "go.trai.ch/weave/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid infers the dependency ID from the package name of
	// the interface used in Dep[T], so every ports.X dependency looks like "ports".
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

func TestGraph_BuildsApp(t *testing.T) {
	a, results, err := graft.ExecuteFor[*app.App](context.Background())
	require.NoError(t, err)
	assert.NotNil(t, a)

	log, err := graft.Result[ports.Logger](results)
	require.NoError(t, err)
	assert.NotNil(t, log)

	tracer, err := graft.Result[ports.Tracer](results)
	require.NoError(t, err)
	assert.NotNil(t, tracer)
}
