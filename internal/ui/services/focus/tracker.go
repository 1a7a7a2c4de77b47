// Package focus tracks whether the terminal window has input focus.
package focus

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Listener is called with the new focus state whenever it changes
type Listener func(focused bool)

// Tracker follows tea.FocusMsg and tea.BlurMsg. It only reports between
// Start and Stop; the program must run with tea.WithReportFocus.
type Tracker struct {
	mu        sync.Mutex
	started   bool
	focused   bool
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewTracker creates a stopped tracker that assumes the terminal is focused
func NewTracker() *Tracker {
	return &Tracker{
		focused:   true,
		listeners: make(map[int]Listener),
	}
}

// Start begins consuming focus messages
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
}

// Stop ends consuming focus messages. Subscriptions are kept.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = false
}

// Subscribe registers fn and returns a function removing it again
func (t *Tracker) Subscribe(fn Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.listeners[id] = fn
	t.order = append(t.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.listeners, id)
			for i, v := range t.order {
				if v == id {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Focused reports the last known focus state
func (t *Tracker) Focused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focused
}

// Handle consumes focus messages and reports whether msg was one.
// Listeners run after the state changed, in subscription order.
func (t *Tracker) Handle(msg tea.Msg) bool {
	var focused bool
	switch msg.(type) {
	case tea.FocusMsg:
		focused = true
	case tea.BlurMsg:
		focused = false
	default:
		return false
	}

	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return false
	}
	changed := t.focused != focused
	t.focused = focused
	var notify []Listener
	if changed {
		for _, id := range t.order {
			notify = append(notify, t.listeners[id])
		}
	}
	t.mu.Unlock()

	for _, fn := range notify {
		fn(focused)
	}
	return true
}
