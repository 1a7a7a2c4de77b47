package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderHeader renders a single title line with right-aligned indicators
func RenderHeader(styles *Styles, width int, title string, indicators ...string) string {
	logo := styles.Title.MarginBottom(0).Render(title)

	var parts []string
	for _, s := range indicators {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return logo
	}

	right := styles.Dim.Render(strings.Join(parts, " | "))
	padding := width - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

// RenderSummary renders label/value pairs in a bordered box, keys sorted
// unless order is given
func RenderSummary(styles *Styles, values map[string]string, order ...string) string {
	keys := order
	if len(keys) == 0 {
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	width := 0
	for _, k := range keys {
		width = max(width, lipgloss.Width(k))
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v := values[k]
		if v == "" {
			v = styles.Dim.Render("none")
		}
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, k, v))
	}
	return styles.Summary.Render(strings.Join(lines, "\n"))
}
