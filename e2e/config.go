package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR points at a running server, e.g. "localhost:8080".
	// The suite skips itself when unset.
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// TOKEN_SECRET must match the server's signing secret so the suite
	// can mint its own access tokens.
	TokenSecret string `envconfig:"TOKEN_SECRET"`
	// E2E_USER_A / E2E_USER_B are identities provisioned via userctl
	// before the run.
	UserA string `envconfig:"E2E_USER_A" default:"alice"`
	UserB string `envconfig:"E2E_USER_B" default:"bob"`
	// E2E_DEBUG_FRAMES dumps every frame the suite reads
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
