package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/progress"
	"github.com/apresai/personaswap/internal/transformer"
)

var (
	accent = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	dim    = lipgloss.Color("#626262")

	personaStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	originalStyle = lipgloss.NewStyle().Foreground(dim).Italic(true)

	resultBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && progress.IsTerminal(f)
}

// renderResult prints the transformed text alone, or a framed card with the
// persona and original when styled.
func renderResult(res *transformer.Result, styled bool) string {
	if !styled {
		return res.Transformed
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		personaStyle.Render(res.Persona),
		originalStyle.Render(res.Original),
		"",
		lipgloss.NewStyle().Foreground(green).Render(res.Transformed),
	)
	return resultBox.Render(body)
}

func renderPersonas(r *persona.Registry) string {
	aliases := r.Aliases()
	keys := r.Keys()
	infos := r.List()

	rows := make([][]string, 0, len(keys))
	for i, key := range keys {
		rows = append(rows, []string{key, infos[i].Name, strings.Join(aliases[key], ", "), infos[i].Description})
	}
	return newTable("KEY", "NAME", "ALIASES", "DESCRIPTION").Rows(rows...).String()
}

func renderHistory(records []history.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Persona,
			clip(rec.OriginalMessage, 40),
			clip(rec.TransformedMessage, 60),
		})
	}
	return newTable("TIME", "PERSONA", "ORIGINAL", "TRANSFORMED").Rows(rows...).String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
