package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/highlight/lua"
	"github.com/dshills/linestate/internal/logging"
)

// ScriptGrammar describes a grammar implemented by a Lua script.
type ScriptGrammar struct {
	Language   string
	ScopeName  string
	Script     string
	Extensions []string
	Timeout    time.Duration
}

// Grammar returns the registry entry for tok.
func (g ScriptGrammar) Grammar(tok highlight.Tokenizer) highlight.Grammar {
	return highlight.Grammar{
		Language:   g.Language,
		ScopeName:  tok.ScopeName(),
		Extensions: g.Extensions,
		Tokenizer:  tok,
		Source:     g.Script,
	}
}

// Open loads the script synchronously.
func (g ScriptGrammar) Open(logger *log.Logger) (*lua.Tokenizer, error) {
	opts := []lua.Option{lua.WithLogger(logger)}
	if g.Language != "" {
		opts = append(opts, lua.WithLanguage(g.Language))
	}
	if g.ScopeName != "" {
		opts = append(opts, lua.WithScopeName(g.ScopeName))
	}
	if g.Timeout > 0 {
		opts = append(opts, lua.WithTimeout(g.Timeout))
	}

	tok, err := lua.LoadFile(g.Script, opts...)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.Language, err)
	}
	return tok, nil
}

// LoadScript loads g in the background.
func LoadScript(ctx context.Context, g ScriptGrammar) *Handle {
	logger := logging.FromContext(ctx)
	return Load(ctx, func(ctx context.Context) (highlight.Tokenizer, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := g.Open(logger)
		if err != nil {
			logger.Warn("grammar unavailable",
				logging.FieldLanguage, g.Language,
				logging.FieldPath, g.Script,
				logging.FieldError, err)
			return nil, err
		}
		logger.Debug("grammar loaded",
			logging.FieldLanguage, g.Language,
			logging.FieldScope, tok.ScopeName())
		return tok, nil
	})
}
