// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env holds the bridge's runtime settings. Every knob has a default so a
// bare environment works; only the account entry requires prior setup.
type Env struct {
	// ListenAddr is the bind address of the HTTP API.
	ListenAddr string `env:"TIDALBRIDGE_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`

	// PollInterval is how often the library is refreshed.
	PollInterval time.Duration `env:"TIDALBRIDGE_POLL_INTERVAL" envDefault:"30s"`

	// EntryPath overrides where the account entry is stored. Empty means
	// the default under the user config dir.
	EntryPath string `env:"TIDALBRIDGE_ENTRY_PATH"`

	// MCPAddr is the bind address of the MCP server's HTTP transport.
	MCPAddr string `env:"TIDALBRIDGE_MCP_ADDR" envDefault:"localhost:8081"`

	// OTelEndpoint enables trace export when set.
	OTelEndpoint string `env:"TIDALBRIDGE_OTEL_ENDPOINT"`
}

// Load parses the environment into an Env.
func Load() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
