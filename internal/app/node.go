package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weave/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/telemetry/progrock"
	"go.trai.ch/weave/internal/core/ports"
)

// AppNodeID is the unique identifier for the main App Graft node.
const AppNodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			progrock.NodeID,
		},
		Run: runAppNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	otelTracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*progrock.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, map[string]ports.Tracer{
		TracerOTel:     otelTracer,
		TracerProgrock: recorder,
	}), nil
}
