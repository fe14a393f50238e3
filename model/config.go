package model

import "time"

// Config stores the application configuration.
type Config struct {
	BotToken string
	// TestingGuildID scopes slash command registration to a single guild
	// when set. Commands are registered globally otherwise.
	TestingGuildID string
	DatabasePath   string
	// ReconcileInterval is how often the role reconciler runs. The default
	// is short for development; deployments are expected to use something
	// much coarser.
	ReconcileInterval time.Duration
	// GrantRetention is how long the meatball role stays assigned, measured
	// from the moment it was granted.
	GrantRetention time.Duration
}
