package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// FixtureEnv names the environment variable consulted when --fixture is
// not given.
const FixtureEnv = "ITEMVIEW_FIXTURE"

// EnvConfig holds settings read from the environment.
type EnvConfig struct {
	Fixture string `env:"ITEMVIEW_FIXTURE"`
}

// ParseEnv loads EnvConfig from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// fixturePath returns flag, or the FixtureEnv value when flag is empty.
func fixturePath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := ParseEnv()
	if err != nil {
		return "", err
	}
	if cfg.Fixture != "" {
		return cfg.Fixture, nil
	}
	return "", fmt.Errorf("use --fixture or set %s", FixtureEnv)
}
