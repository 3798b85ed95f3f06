package ports

import "go.trai.ch/weave/internal/core/domain"

// ManifestLoader reads a container manifest.
//
//go:generate mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads the manifest at path and returns its settings and modules.
	Load(path string) (*domain.Manifest, error)
}
