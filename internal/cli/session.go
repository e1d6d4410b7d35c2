package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/highlight/loader"
	"github.com/dshills/linestate/internal/highlight/service"
	"github.com/dshills/linestate/internal/highlight/statecache"
	"github.com/dshills/linestate/internal/logging"
	"github.com/dshills/linestate/internal/lsp"
)

// loadTimeout bounds how long a command waits for a scripted grammar.
const loadTimeout = 10 * time.Second

// session is one file attached to a service.
type session struct {
	path     string
	language string
	svc      *service.Service
	doc      *buffer.Document
	ctrl     *statecache.Controller
}

func (g *globals) newService() (*service.Service, error) {
	return service.New(
		service.WithLogger(logging.Default()),
		service.WithScripts(g.cfg.ScriptGrammars()...),
		service.WithWatch(g.cfg.Watch),
		service.WithMemo(g.cfg.Cache.TTL.Std(), g.cfg.Cache.CleanupInterval.Std()),
	)
}

// open reads path, attaches it and waits for its tokenizer. lang overrides
// language detection.
func (g *globals) open(ctx context.Context, path, lang string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	svc, err := g.newService()
	if err != nil {
		return nil, err
	}

	opts := []buffer.Option{buffer.WithURI(string(lsp.FilePathToURI(path)))}
	if lang != "" {
		opts = append(opts, buffer.WithLanguageID(lang))
	}
	doc := buffer.NewDocument(string(data), opts...)

	ctrl, err := svc.Attach(doc)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	switch err := svc.Wait(ctx, doc); {
	case errors.Is(err, loader.ErrUnavailable):
		logging.Default().Warn("no tokenizer for file", logging.FieldPath, path, logging.FieldError, err)
	case err != nil:
		_ = svc.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	language, _ := svc.Language(doc)
	logging.Default().Debug("file opened",
		logging.FieldPath, path,
		logging.FieldLanguage, language,
		logging.FieldLines, doc.LineCount())

	return &session{path: path, language: language, svc: svc, doc: doc, ctrl: ctrl}, nil
}

func (s *session) Close() error {
	return s.svc.Close()
}
