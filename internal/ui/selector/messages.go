package selector

import (
	"posctl/internal/domain"
)

// SelectedMsg reports a selection change to the host.
// Option is nil when the selection was cleared.
type SelectedMsg struct {
	Name   string
	Option *domain.Option
}

// pageLoadedMsg carries the outcome of one loader call
type pageLoadedMsg struct {
	id         int
	generation uint64
	page       int
	result     domain.ResultPage
	err        error
}
