package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables overriding file settings.
const (
	EnvLogLevel = "LINESTATE_LOG_LEVEL"
	EnvWatch    = "LINESTATE_WATCH"
	EnvCacheTTL = "LINESTATE_CACHE_TTL"
)

// ApplyEnv overlays environment variables onto c. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}

	if v, ok := lookup(EnvWatch); ok && v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrValidationFailed, EnvWatch, v)
		}
		c.Watch = watch
	}

	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", ErrValidationFailed, EnvCacheTTL, v)
		}
		c.Cache.TTL = Duration(ttl)
	}
	return nil
}
