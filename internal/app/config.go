package app

import (
	"boardline/config"
	"boardline/internal/domain"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// Settings carries the loaded runtime configuration.
	Settings *config.Config

	// Owner is the local user the wiring is built for.
	Owner domain.UserID

	// SelfName is the display name offered in announcement payloads.
	SelfName string

	// Engine is the caller-provided session engine for Owner, already
	// restored from its state blob. The Wire wraps it in the single-writer
	// guard; nothing else may touch it afterwards.
	Engine domain.SessionEngine

	// StateName and StatePassphrase locate Owner's encrypted state blob.
	StateName       string
	StatePassphrase string

	// Events receives the application-level callbacks. Optional fields.
	Events domain.Events
}
