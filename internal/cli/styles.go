package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains Lipgloss styles for command output.
type Styles struct {
	Heading  lipgloss.Style
	Location lipgloss.Style
	Text     lipgloss.Style
	Scope    lipgloss.Style
	Inner    lipgloss.Style
	Dim      lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
}

// NewStyles creates styles based on color mode.
func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{
			Heading:  plain,
			Location: plain,
			Text:     plain,
			Scope:    plain,
			Inner:    plain,
			Dim:      plain,
			Success:  plain,
			Failure:  plain,
		}
	}
	return &Styles{
		Heading:  lipgloss.NewStyle().Bold(true),
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Scope:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Inner:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

func (g *globals) styles(w io.Writer) *Styles {
	return NewStyles(IsColorEnabled(g.color, w))
}
