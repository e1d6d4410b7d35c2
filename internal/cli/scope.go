package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/linestate/internal/engine/buffer"
	"github.com/dshills/linestate/internal/highlight/statecache"
)

type scopeFlags struct {
	at     string
	lang   string
	asJSON bool
}

func newScopeCommand(g *globals) *cobra.Command {
	flags := &scopeFlags{}

	cmd := &cobra.Command{
		Use:   "scope FILE",
		Short: "Show the token and scopes at a position",
		Long: `Tokenize FILE and print the token covering a position, with its scopes
ordered outermost first. Positions are zero-based LINE:COL with byte columns.
A position past the end of its line reports the last token of the line.`,
		Example: `  linestate scope main.go --at 12:4
  linestate scope notes.txt --at 0:0 --lang markdown --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buffer.ParsePoint(flags.at)
			if err != nil {
				return err
			}

			sess, err := g.open(cmd.Context(), args[0], flags.lang)
			if err != nil {
				return err
			}
			defer sess.Close()

			scope, ok := sess.svc.ScopeAt(sess.doc, p)
			if !ok {
				return fmt.Errorf("%w: %s %s", ErrNoScope, sess.path, p)
			}

			out := cmd.OutOrStdout()
			if flags.asJSON {
				doc, err := scopeJSON(sess.path, sess.language, p, scope)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, doc)
				return err
			}
			printScope(out, g.styles(out), p, scope)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.at, "at", "", "position as LINE:COL, zero-based")
	cmd.Flags().StringVar(&flags.lang, "lang", "", "language id or scope name, overriding detection")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

func printScope(w io.Writer, styles *Styles, p buffer.Point, s statecache.Scope) {
	scopes := make([]string, len(s.Scopes))
	for i, name := range s.Scopes {
		if i == len(s.Scopes)-1 {
			scopes[i] = styles.Inner.Render(name)
		} else {
			scopes[i] = styles.Scope.Render(name)
		}
	}

	fmt.Fprintf(w, "%s %s %s\n",
		styles.Location.Render(fmt.Sprintf("%s %s", p, s.Range)),
		styles.Text.Render(fmt.Sprintf("%q", s.Text)),
		strings.Join(scopes, styles.Dim.Render(" > ")))
}

func scopeJSON(path, language string, p buffer.Point, s statecache.Scope) (string, error) {
	out := "{}"
	var err error
	set := func(key string, value any) {
		if err == nil {
			out, err = sjson.Set(out, key, value)
		}
	}

	set("file", path)
	set("language", language)
	set("position.line", p.Line)
	set("position.column", p.Column)
	set("range.start.line", s.Range.Start.Line)
	set("range.start.column", s.Range.Start.Column)
	set("range.end.line", s.Range.End.Line)
	set("range.end.column", s.Range.End.Column)
	set("text", s.Text)
	set("scopes", s.Scopes)
	return out, err
}
