// Package config defines the configuration options for the GateSync client, and how they
// are loaded from a file or from environment variables.
package config

import (
	"time"

	ct "github.com/launchdarkly/go-configtypes"
)

const (
	// DefaultBaseURI is the default value for the base URI of the GateSync control service.
	DefaultBaseURI = "https://api.gatesync.io/v1"

	// DefaultPollInterval is the default value for MainConfig.PollInterval if not specified.
	DefaultPollInterval = time.Minute

	// DefaultFlushInterval is the default value for EventsConfig.FlushInterval if not specified.
	DefaultFlushInterval = time.Minute

	// DefaultEventsBatchSize is the default value for EventsConfig.BatchSize if not specified.
	DefaultEventsBatchSize = 500
)

// Config describes the full configuration for a GateSync client instance.
//
// If you are configuring the client programmatically, start from the zero value and set only
// the fields you need; any undefined optional field falls back to its documented default.
type Config struct {
	Main   MainConfig
	Events EventsConfig
}

// MainConfig contains global configuration options for the client.
//
// This corresponds to the [Main] section in the configuration file.
type MainConfig struct {
	SDKKey       SDKKey                   `conf:"SDK_KEY"`
	BaseURI      ct.OptURLAbsolute        `conf:"BASE_URI"`
	PollInterval ct.OptDuration           `conf:"POLL_INTERVAL"`
	OfflineFile  string                   `conf:"OFFLINE_FILE"`
	StatusPort   ct.OptIntGreaterThanZero `conf:"STATUS_PORT"`
	LogLevel     OptLogLevel              `conf:"LOG_LEVEL"`
}

// EventsConfig contains configuration options for exposure event delivery.
//
// This corresponds to the [Events] section in the configuration file.
type EventsConfig struct {
	FlushInterval ct.OptDuration           `conf:"FLUSH_INTERVAL"`
	BatchSize     ct.OptIntGreaterThanZero `conf:"EVENTS_BATCH_SIZE"`
}
