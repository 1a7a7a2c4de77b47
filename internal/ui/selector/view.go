package selector

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains the style definitions of a selector
type Styles struct {
	Label       lipgloss.Style
	FocusLabel  lipgloss.Style
	Value       lipgloss.Style
	Placeholder lipgloss.Style
	Disabled    lipgloss.Style
	Item        lipgloss.Style
	Cursor      lipgloss.Style
	Status      lipgloss.Style
	Hint        lipgloss.Style
}

// DefaultStyles returns the default selector styles
func DefaultStyles() Styles {
	return Styles{
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		FocusLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Value:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Placeholder: lipgloss.NewStyle().Faint(true),
		Disabled:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Item:        lipgloss.NewStyle().PaddingLeft(2),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("238")).
			Bold(true),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Hint:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// View renders the toggle line and, when open, the search box, the visible
// option rows and a status line. The line count always equals Height.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.toggleLine())
	if m.state == StateClosed {
		return b.String()
	}

	b.WriteString("\n  ")
	b.WriteString(m.input.View())

	rows := m.visibleRows()
	for i := 0; i < rows; i++ {
		b.WriteString("\n")
		idx := m.offset + i
		if idx >= len(m.items) {
			continue
		}
		b.WriteString(m.renderItem(idx))
	}

	b.WriteString("\n")
	b.WriteString(m.Styles.Status.Render("  " + m.statusText()))
	return b.String()
}

func (m Model) toggleLine() string {
	labelStyle := m.Styles.Label
	if m.focused {
		labelStyle = m.Styles.FocusLabel
	}

	var value string
	switch {
	case m.selection != nil:
		value = m.Styles.Value.Render(m.selection.Name)
	default:
		value = m.Styles.Placeholder.Render(m.Placeholder)
	}
	if m.Disabled {
		value = m.Styles.Disabled.Render(plainValue(m))
	}

	arrow := "▾"
	if m.state != StateClosed {
		arrow = "▴"
	}

	line := fmt.Sprintf("%s: %s %s", labelStyle.Render(m.Label), value, arrow)
	if m.Loading || m.inflight {
		line += " " + m.spinner.View()
	}
	if m.focused && m.selection != nil && m.state == StateClosed && !m.Disabled {
		line += " " + m.Styles.Hint.Render("("+m.KeyMap.Clear.Help().Key+" clears)")
	}
	return line
}

func plainValue(m Model) string {
	if m.selection != nil {
		return m.selection.Name
	}
	return m.Placeholder
}

func (m Model) renderItem(idx int) string {
	name := m.items[idx].Name
	if m.selection != nil && m.items[idx].ID == m.selection.ID {
		name += " ✓"
	}

	maxWidth := m.Width - 4
	if maxWidth > 1 && lipgloss.Width(name) > maxWidth {
		name = truncate(name, maxWidth)
	}

	if idx == m.cursor {
		return m.Styles.Item.Render(m.Styles.Cursor.Render("› " + name))
	}
	return m.Styles.Item.Render("  " + name)
}

func (m Model) statusText() string {
	switch {
	case m.missing == 1:
		return "Type 1 more character"
	case m.missing > 1:
		return fmt.Sprintf("Type %d more characters", m.missing)
	case m.state == StateLoadingFirstPage:
		return "Loading…"
	case m.state == StateLoadingMore:
		return fmt.Sprintf("%d of %d, loading more…", len(m.items), m.total)
	case len(m.items) == 0:
		return "No results"
	case m.hasMore:
		return fmt.Sprintf("%d of %d, scroll for more", len(m.items), m.total)
	default:
		return fmt.Sprintf("%d of %d", len(m.items), m.total)
	}
}

// truncate shortens s to width cells, ending with an ellipsis
func truncate(s string, width int) string {
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
