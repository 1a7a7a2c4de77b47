package selector

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// debounceMsg is the tick a Debouncer arms. Only the tick carrying the
// current tag is accepted; every other one is stale.
type debounceMsg struct {
	id  int
	tag int
}

// Debouncer is a single-slot cancellable timer owned by one selector.
// Scheduling again replaces the pending slot.
type Debouncer struct {
	id      int
	tag     int
	pending bool
}

// NewDebouncer creates a debouncer whose ticks are addressed to owner id
func NewDebouncer(id int) Debouncer {
	return Debouncer{id: id}
}

// Schedule arms the slot; the returned command delivers the tick after delay
func (d *Debouncer) Schedule(delay time.Duration) tea.Cmd {
	d.tag++
	d.pending = true
	msg := debounceMsg{id: d.id, tag: d.tag}
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return msg
	})
}

// CancelPending disarms the slot so an in-flight tick is ignored
func (d *Debouncer) CancelPending() {
	if d.pending {
		d.tag++
	}
	d.pending = false
}

// Pending reports whether a scheduled tick is still awaited
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Fire consumes msg and reports whether it is the live tick
func (d *Debouncer) Fire(msg debounceMsg) bool {
	if msg.id != d.id || msg.tag != d.tag || !d.pending {
		return false
	}
	d.pending = false
	return true
}
