package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/linestate/internal/highlight/loader"
	"github.com/dshills/linestate/internal/logging"
)

// Config holds all linestate settings.
type Config struct {
	Log      LogConfig       `toml:"log" yaml:"log"`
	Cache    CacheConfig     `toml:"cache" yaml:"cache"`
	Watch    bool            `toml:"watch" yaml:"watch"`
	Grammars []GrammarConfig `toml:"grammars" yaml:"grammars"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
}

// CacheConfig configures the point-query memo.
type CacheConfig struct {
	TTL             Duration `toml:"ttl" yaml:"ttl"`
	CleanupInterval Duration `toml:"cleanup_interval" yaml:"cleanup_interval"`
}

// GrammarConfig declares a grammar implemented by a Lua script.
type GrammarConfig struct {
	Language   string   `toml:"language" yaml:"language"`
	ScopeName  string   `toml:"scope_name" yaml:"scope_name"`
	Script     string   `toml:"script" yaml:"script"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Cache: CacheConfig{
			TTL:             Duration(30 * time.Second),
			CleanupInterval: Duration(time.Minute),
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if !logging.ValidLevel(c.Log.Level) {
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Cache.TTL <= 0 {
		problems = append(problems, "cache.ttl must be positive")
	}
	if c.Cache.CleanupInterval < 0 {
		problems = append(problems, "cache.cleanup_interval must not be negative")
	}

	seen := make(map[string]bool, len(c.Grammars))
	for i, g := range c.Grammars {
		switch {
		case g.Language == "":
			problems = append(problems, fmt.Sprintf("grammars[%d].language is required", i))
		case seen[g.Language]:
			problems = append(problems, fmt.Sprintf("grammars[%d].language %q is declared twice", i, g.Language))
		}
		seen[g.Language] = true

		if g.Script == "" {
			problems = append(problems, fmt.Sprintf("grammars[%d].script is required", i))
		}
		if g.Timeout < 0 {
			problems = append(problems, fmt.Sprintf("grammars[%d].timeout must not be negative", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

// ScriptGrammars returns the configured grammars in loader form.
func (c *Config) ScriptGrammars() []loader.ScriptGrammar {
	out := make([]loader.ScriptGrammar, len(c.Grammars))
	for i, g := range c.Grammars {
		out[i] = loader.ScriptGrammar{
			Language:   g.Language,
			ScopeName:  g.ScopeName,
			Script:     g.Script,
			Extensions: g.Extensions,
			Timeout:    g.Timeout.Std(),
		}
	}
	return out
}
