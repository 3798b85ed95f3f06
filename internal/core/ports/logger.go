// Package ports defines the interfaces the container core depends on.
package ports

import "go.trai.ch/weave/internal/core/domain"

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Log writes msg with key/value attributes at the given level.
	Log(level domain.LogLevel, msg string, args ...any)
	// Error logs a failure, including any structured error metadata.
	Error(err error)
}
