package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL targets an already running server. Empty means the
	// suite wires an in-process server on a random port.
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	// E2E_DEBUG_JSON dumps every envelope seen by the test clients
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
