package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/linestate/internal/highlight"
	"github.com/dshills/linestate/internal/logging"
)

const (
	tokenizeFunc    = "tokenize"
	scopeNameGlobal = "scope_name"
)

// Tokenizer is a highlight.Tokenizer whose rules live in a Lua script.
//
// A script error on one line never fails the caller: the line degrades to a
// single root-scope token and the prior state is carried forward unchanged.
type Tokenizer struct {
	state     *State
	language  string
	scopeName string
	source    string
	logger    *log.Logger
	failures  atomic.Int64
}

// Option configures a Tokenizer.
type Option func(*options)

type options struct {
	language  string
	scopeName string
	timeout   time.Duration
	logger    *log.Logger
}

// WithLanguage sets the language id. The default root scope is
// "source.<language>".
func WithLanguage(language string) Option {
	return func(o *options) {
		o.language = language
	}
}

// WithScopeName sets the root scope, overriding the script's scope_name.
func WithScopeName(scope string) Option {
	return func(o *options) {
		o.scopeName = scope
	}
}

// WithTimeout bounds each call into the script.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger used to report script failures.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New loads a grammar script from source code.
func New(script string, opts ...Option) (*Tokenizer, error) {
	return newTokenizer(script, "", opts...)
}

// LoadFile loads a grammar script from path. The language defaults to the
// file's base name without extension.
func LoadFile(path string, opts ...Option) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar script: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts = append([]Option{WithLanguage(base)}, opts...)
	return newTokenizer(string(data), path, opts...)
}

func newTokenizer(script, source string, opts ...Option) (*Tokenizer, error) {
	o := options{
		language: "custom",
		timeout:  DefaultExecutionTimeout,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	state := NewState(WithExecutionTimeout(o.timeout))
	if err := state.DoString(script); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("load grammar script: %w", err)
	}
	if !state.HasFunction(tokenizeFunc) {
		_ = state.Close()
		return nil, ErrNoTokenizeFunction
	}

	scope := o.scopeName
	if scope == "" {
		scope = state.GlobalString(scopeNameGlobal)
	}
	if scope == "" {
		scope = "source." + o.language
	}

	return &Tokenizer{
		state:     state,
		language:  o.language,
		scopeName: scope,
		source:    source,
		logger:    o.logger.WithPrefix("lua"),
	}, nil
}

// ScopeName implements highlight.Tokenizer.
func (t *Tokenizer) ScopeName() string {
	return t.scopeName
}

// Language returns the language id.
func (t *Tokenizer) Language() string {
	return t.language
}

// Source returns the script path, or "" for scripts loaded from a string.
func (t *Tokenizer) Source() string {
	return t.source
}

// Failures returns how many lines fell back after a script error.
func (t *Tokenizer) Failures() int64 {
	return t.failures.Load()
}

// Close releases the Lua state.
func (t *Tokenizer) Close() error {
	return t.state.Close()
}

// TokenizeLine implements highlight.Tokenizer. A script error or timeout
// yields a single root-scope token and the prior state. Timeouts depend on
// load, so a line that timed out once may succeed on the next call; callers
// can watch Failures and refresh the cache when it grows.
func (t *Tokenizer) TokenizeLine(line string, prior highlight.State) highlight.LineResult {
	res, err := t.tokenize(line, prior)
	if err != nil {
		t.failures.Add(1)
		t.logger.Warn("tokenize failed",
			logging.FieldScope, t.scopeName,
			logging.FieldError, err)
		return highlight.LineResult{
			Tokens:   highlight.Normalize(nil, len(line), t.scopeName),
			EndState: prior,
		}
	}
	return res
}

func (t *Tokenizer) tokenize(line string, prior highlight.State) (highlight.LineResult, error) {
	var res highlight.LineResult
	err := t.state.With(func(L *lua.LState) error {
		results, err := call(L, tokenizeFunc, lua.LString(line), stateToLua(L, prior))
		if err != nil {
			return err
		}

		var tokensVal, stateVal lua.LValue = lua.LNil, lua.LNil
		if len(results) > 0 {
			tokensVal = results[0]
		}
		if len(results) > 1 {
			stateVal = results[1]
		}

		tokens, err := t.tokensFromLua(tokensVal)
		if err != nil {
			return err
		}
		next, err := stateFromLua(stateVal)
		if err != nil {
			return err
		}

		res = highlight.LineResult{
			Tokens:   highlight.Normalize(tokens, len(line), t.scopeName),
			EndState: next,
		}
		return nil
	})
	return res, err
}

func (t *Tokenizer) tokensFromLua(v lua.LValue) ([]highlight.Token, error) {
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: tokens must be a table, got %s", ErrInvalidResult, v.Type())
	}

	tokens := make([]highlight.Token, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: token %d is not a table", ErrInvalidResult, i)
		}

		start, okStart := field(entry, 1, "start").(lua.LNumber)
		stop, okStop := field(entry, 2, "stop").(lua.LNumber)
		if !okStart || !okStop {
			return nil, fmt.Errorf("%w: token %d needs numeric start and stop", ErrInvalidResult, i)
		}

		scopes, err := t.scopesFromLua(field(entry, 3, "scope"))
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}

		tokens = append(tokens, highlight.Token{
			StartColumn: int(start),
			EndColumn:   int(stop),
			Scopes:      scopes,
		})
	}
	return tokens, nil
}

func (t *Tokenizer) scopesFromLua(v lua.LValue) ([]string, error) {
	scopes := []string{t.scopeName}
	switch v := v.(type) {
	case *lua.LNilType:
	case lua.LString:
		scopes = append(scopes, string(v))
	case *lua.LTable:
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("%w: scope %d is not a string", ErrInvalidResult, i)
			}
			scopes = append(scopes, string(s))
		}
	default:
		return nil, fmt.Errorf("%w: scope must be a string or table, got %s", ErrInvalidResult, v.Type())
	}
	return scopes, nil
}

// field reads a positional entry, falling back to a named one.
func field(tbl *lua.LTable, index int, name string) lua.LValue {
	if v := tbl.RawGetInt(index); v != lua.LNil {
		return v
	}
	return tbl.RawGetString(name)
}

func stateToLua(L *lua.LState, s highlight.State) lua.LValue {
	stack, ok := s.(*highlight.StackState)
	if !ok || stack.Depth() == 0 {
		return lua.LNil
	}
	tbl := L.CreateTable(stack.Depth(), 0)
	for _, frame := range stack.Frames() {
		tbl.Append(lua.LString(frame))
	}
	return tbl
}

func stateFromLua(v lua.LValue) (highlight.State, error) {
	switch v := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LString:
		return highlight.NewStackState(string(v)).AsState(), nil
	case *lua.LTable:
		frames := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			s, ok := v.RawGetInt(i).(lua.LString)
			if !ok {
				return nil, fmt.Errorf("%w: state frame %d is not a string", ErrInvalidResult, i)
			}
			frames = append(frames, string(s))
		}
		return highlight.NewStackState(frames...).AsState(), nil
	default:
		return nil, fmt.Errorf("%w: state must be nil, a string or a table, got %s", ErrInvalidResult, v.Type())
	}
}
