package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/linestate/internal/highlight"
)

func newGrammarsCommand(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "grammars",
		Short: "List available grammars",
		Long: `List the built-in grammars and the scripted grammars declared in the
configuration file, with their root scopes and file extensions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grammars := declaredGrammars(g)

			out := cmd.OutOrStdout()
			if asJSON {
				doc, err := grammarsJSON(grammars)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, doc)
				return err
			}

			styles := g.styles(out)
			for _, gr := range grammars {
				fmt.Fprintf(out, "%-12s %s %s\n",
					styles.Heading.Render(gr.Language),
					styles.Scope.Render(gr.ScopeName),
					styles.Dim.Render(strings.Join(gr.Extensions, " ")))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

// declaredGrammars lists built-in grammars overlaid with configured scripts.
// Scripts are listed without loading them.
func declaredGrammars(g *globals) []highlight.Grammar {
	registry := highlight.DefaultRegistry()
	for _, sg := range g.cfg.ScriptGrammars() {
		scope := sg.ScopeName
		if scope == "" {
			scope = "source." + sg.Language
		}
		registry.Register(highlight.Grammar{
			Language:   sg.Language,
			ScopeName:  scope,
			Extensions: sg.Extensions,
			Source:     sg.Script,
		})
	}
	return registry.Grammars()
}

func grammarsJSON(grammars []highlight.Grammar) (string, error) {
	out := "[]"
	for _, gr := range grammars {
		entry := "{}"
		var err error
		for _, kv := range []struct {
			key   string
			value any
		}{
			{"language", gr.Language},
			{"scope", gr.ScopeName},
			{"extensions", gr.Extensions},
			{"script", gr.Source},
		} {
			if entry, err = sjson.Set(entry, kv.key, kv.value); err != nil {
				return "", err
			}
		}
		if out, err = sjson.SetRaw(out, "-1", entry); err != nil {
			return "", err
		}
	}
	return out, nil
}
