// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is the prefix shared by every rgsimulator environment variable.
const EnvPrefix = "RGSIM_"

// ParseEnv loads configuration from environment variables into target.
//
// Struct tags name variables without the shared prefix, so a field tagged
// `env:"MAP"` reads RGSIM_MAP.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
