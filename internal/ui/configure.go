package ui

import (
	"github.com/charmbracelet/bubbles/cursor"

	"posctl/internal/config"
	"posctl/internal/ui/selector"
)

// ConfigureSelector applies the configured tuning to a selector
func ConfigureSelector(s *selector.Model, settings config.SelectorSettings) {
	if settings.PageSize > 0 {
		s.PageSize = settings.PageSize
	}
	if settings.MinSearchLength >= 0 {
		s.MinSearchLength = settings.MinSearchLength
	}
	if settings.DebounceMS >= 0 {
		s.DebounceDelay = settings.Debounce()
	}
	if settings.ScrollThreshold >= 0 {
		s.ScrollThreshold = settings.ScrollThreshold
	}
	if settings.VisibleRows > 0 {
		s.VisibleRows = settings.VisibleRows
	}
	if settings.StaticCursor {
		s.SetCursorMode(cursor.CursorStatic)
	}
}
