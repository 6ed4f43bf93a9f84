package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Validator is implemented by configs that check their own invariants after
// environment values have been applied.
type Validator interface {
	Validate() error
}

// ParseEnv loads configuration from environment variables into target.
//
// Fields are read from their `env` tags; unset variables fall back to
// `envDefault`. When target implements Validator, Validate runs after parsing.
func ParseEnv(target any) error {
	return ParseEnvWithPrefix(target, "")
}

// ParseEnvWithPrefix loads configuration like ParseEnv, prepending prefix to
// every variable name. It lets tests and secondary binaries share one config
// struct while reading from an isolated namespace.
func ParseEnvWithPrefix(target any, prefix string) error {
	if target == nil {
		return fmt.Errorf("parse env: target is required")
	}
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate env: %w", err)
		}
	}
	return nil
}
