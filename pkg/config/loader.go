package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Option adjusts how Load reads the environment.
type Option func(*env.Options)

// WithEnvironment reads variables from environ instead of the process
// environment.
func WithEnvironment(environ map[string]string) Option {
	return func(o *env.Options) {
		o.Environment = environ
	}
}

// Load parses environment variables into the struct pointed to by cfg, using
// its `env` and `envDefault` tags:
//
//	type Config struct {
//	    Port    int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
//	    Driver  string `env:"STORAGE_DRIVER" envDefault:"memory"`
//	}
//
// Every failing variable is reported, separated by "; ".
func Load(cfg any, opts ...Option) error {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}

	if err := env.ParseWithOptions(cfg, o); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) && len(agg.Errors) > 1 {
			msgs := make([]string, 0, len(agg.Errors))
			for _, e := range agg.Errors {
				msgs = append(msgs, e.Error())
			}
			return fmt.Errorf("parse config: %s: %w", strings.Join(msgs, "; "), err)
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
