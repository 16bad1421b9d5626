// Package logger builds the structured logger shared by every subsystem of
// the store. It is the single place that knows how to turn a bare service
// name into a configured zap logger, so internal packages only ever depend
// on *zap.SugaredLogger and never on zap's construction details.
package logger

import "go.uber.org/zap"

// New builds a production-configured, sugared logger tagged with service.
// Falls back to zap's no-op logger if the production config fails to build,
// since a logging failure must never prevent the store from opening.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}

// NewDevelopment builds a human-friendlier logger for local use and tests.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}
