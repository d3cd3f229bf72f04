package help

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/robinovitch61/bw/internal/keymap"
)

// MakeHelp lays out the global key bindings in columns of at most rowsPerCol bindings
func MakeHelp(keyMap keymap.KeyMap, keyColStyle lipgloss.Style, rowsPerCol int) string {
	title := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Render("Help (press any key to hide)")
	return lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		formatKeyBindings(keymap.GlobalKeyBindings(keyMap), rowsPerCol, keyColStyle),
	)
}

func formatKeyBindings(bindings []key.Binding, maxRowsPerCol int, keyColStyle lipgloss.Style) string {
	if len(bindings) == 0 {
		return ""
	}
	maxRowsPerCol = max(1, maxRowsPerCol)
	var formattedCols []string
	for start := 0; start < len(bindings); start += maxRowsPerCol {
		end := min(len(bindings), start+maxRowsPerCol)
		formattedCol := formatColumn(bindings[start:end], keyColStyle)
		if end != len(bindings) {
			formattedCol += "   "
		}
		formattedCols = append(formattedCols, formattedCol)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, formattedCols...)
}

func formatColumn(bindings []key.Binding, keyColStyle lipgloss.Style) string {
	var keys []string
	var help []string
	for _, b := range bindings {
		keys = append(keys, " "+b.Help().Key+" ")
		help = append(help, " "+b.Help().Desc)
	}
	keyCol := keyColStyle.Render(lipgloss.JoinVertical(lipgloss.Right, keys...))
	helpCol := lipgloss.JoinVertical(lipgloss.Left, help...)
	return lipgloss.JoinHorizontal(lipgloss.Left, keyCol, helpCol)
}
