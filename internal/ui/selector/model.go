// Package selector implements a paged, searchable single-selection control.
//
// The control fetches options page by page from a catalog.Loader, debounces
// search input, loads the next page when the visible window nears the end of
// the loaded options and reports selection changes with SelectedMsg. The
// selection itself belongs to the host, which hands it back via SetSelection.
package selector

import (
	"context"
	"log"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"posctl/internal/catalog"
	"posctl/internal/domain"
)

// Defaults applied by New
const (
	DefaultPageSize        = 20
	DefaultDebounceDelay   = 300 * time.Millisecond
	DefaultScrollThreshold = 2
	DefaultVisibleRows     = 8
	DefaultWidth           = 48
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// State is the lifecycle state of a selector
type State int

const (
	StateClosed State = iota
	StateLoadingFirstPage
	StateIdle
	StateLoadingMore
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoadingFirstPage:
		return "loading-first-page"
	case StateIdle:
		return "idle"
	case StateLoadingMore:
		return "loading-more"
	default:
		return "unknown"
	}
}

// Model is a paged search selector
type Model struct {
	Name            string // field key reported in SelectedMsg
	Label           string
	Placeholder     string
	PageSize        int
	MinSearchLength int
	DebounceDelay   time.Duration
	ScrollThreshold int // rows from the end of the loaded set that trigger the next page
	VisibleRows     int
	Width           int
	Disabled        bool
	Loading         bool
	KeyMap          KeyMap
	Styles          Styles

	id     int
	loader catalog.Loader
	ctx    context.Context
	cancel context.CancelFunc

	selection *domain.Option
	filters   map[string]string

	state    State
	focused  bool
	input    textinput.Model
	spinner  spinner.Model
	debounce Debouncer

	// loaded set of the live query
	items   []domain.Option
	page    int
	hasMore bool
	total   int
	cursor  int
	offset  int

	// generation identifies the live query; results of older ones are dropped
	generation uint64
	inflight   bool
	missing    int // characters still required by MinSearchLength

	originX, originY int
}

// New creates a closed selector backed by loader
func New(name string, loader catalog.Loader) Model {
	id := nextID()
	ctx, cancel := context.WithCancel(context.Background())

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		Name:            name,
		Label:           name,
		Placeholder:     "none",
		PageSize:        DefaultPageSize,
		DebounceDelay:   DefaultDebounceDelay,
		ScrollThreshold: DefaultScrollThreshold,
		VisibleRows:     DefaultVisibleRows,
		Width:           DefaultWidth,
		KeyMap:          DefaultKeyMap(),
		Styles:          DefaultStyles(),
		id:              id,
		loader:          loader,
		ctx:             ctx,
		cancel:          cancel,
		input:           ti,
		spinner:         sp,
		debounce:        NewDebouncer(id),
	}
}

// ID returns the unique id of this selector
func (m Model) ID() int {
	return m.id
}

// SetSelection mirrors the host's current selection
func (m *Model) SetSelection(o *domain.Option) {
	if o == nil {
		m.selection = nil
		return
	}
	sel := *o
	m.selection = &sel
}

// Selection returns the mirrored selection, nil when none
func (m Model) Selection() *domain.Option {
	if m.selection == nil {
		return nil
	}
	sel := *m.selection
	return &sel
}

// Filters returns a copy of the extra filter fields
func (m Model) Filters() map[string]string {
	return copyFilters(m.filters)
}

// SetFilters replaces the filter fields. While open, a change resets the
// loaded set and fetches page 1 right away.
func (m *Model) SetFilters(filters map[string]string) tea.Cmd {
	if equalFilters(m.filters, filters) {
		return nil
	}
	m.filters = copyFilters(filters)
	if m.state == StateClosed {
		return nil
	}

	m.debounce.CancelPending()
	m.resetQuery()
	if m.missing > 0 {
		m.state = StateIdle
		return nil
	}
	return m.fetch(1)
}

// State returns the lifecycle state
func (m Model) State() State {
	return m.state
}

// IsOpen reports whether the option list is shown
func (m Model) IsOpen() bool {
	return m.state != StateClosed
}

// Focused reports whether the selector receives keys
func (m Model) Focused() bool {
	return m.focused
}

// Items returns a copy of the loaded set
func (m Model) Items() []domain.Option {
	return append([]domain.Option(nil), m.items...)
}

// HasMore reports whether the backend announced further pages
func (m Model) HasMore() bool {
	return m.hasMore
}

// Total returns the total reported by the last successful page
func (m Model) Total() int {
	return m.total
}

// Page returns the last loaded page number, 0 before the first page
func (m Model) Page() int {
	return m.page
}

// Search returns the current search text
func (m Model) Search() string {
	return m.input.Value()
}

// Fetching reports whether a loader call is outstanding
func (m Model) Fetching() bool {
	return m.inflight
}

// Cursor returns the index of the highlighted option
func (m Model) Cursor() int {
	return m.cursor
}

// Focus lets the selector receive keys
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes key focus and closes the list
func (m *Model) Blur() {
	m.focused = false
	if m.state != StateClosed {
		m.close()
	}
}

// Open shows the list and fetches page 1 with an empty search
func (m *Model) Open() tea.Cmd {
	if m.state != StateClosed || m.Disabled || m.Loading {
		return nil
	}

	m.input.Reset()
	m.input.Width = m.Width - 4
	focusCmd := m.input.Focus()
	m.resetQuery()
	m.missing = 0
	return tea.Batch(focusCmd, m.fetch(1))
}

// Close hides the list, dropping search text and the loaded set
func (m *Model) Close() {
	if m.state == StateClosed {
		return
	}
	m.close()
}

// Toggle opens a closed selector and closes an open one
func (m *Model) Toggle() tea.Cmd {
	if m.state == StateClosed {
		return m.Open()
	}
	m.close()
	return nil
}

// Clear drops the selection and closes without fetching
func (m *Model) Clear() tea.Cmd {
	if m.selection == nil || m.Disabled {
		return nil
	}
	m.close()
	return m.report(nil)
}

// Dispose tears the selector down: pending ticks and outstanding loads are
// ignored from now on and the loader context is cancelled.
func (m *Model) Dispose() {
	m.close()
	if m.cancel != nil {
		m.cancel()
	}
}

// SetCursorMode sets how the search box cursor is drawn
func (m *Model) SetCursorMode(mode cursor.Mode) tea.Cmd {
	return m.input.Cursor.SetMode(mode)
}

// SetOrigin records where the host drew the selector, for mouse hit-testing
func (m *Model) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// Height returns the number of lines View renders
func (m Model) Height() int {
	if m.state == StateClosed {
		return 1
	}
	return 3 + m.visibleRows()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.id != m.id {
			return m, nil
		}
		return m, m.onDebounce(msg)

	case pageLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.onPageLoaded(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.inflight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m, m.handleKey(msg)
	}

	if m.state != StateClosed {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.state == StateClosed {
		switch {
		case key.Matches(msg, m.KeyMap.Toggle), key.Matches(msg, m.KeyMap.Open):
			return m.Open()
		case key.Matches(msg, m.KeyMap.Clear):
			return m.Clear()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.KeyMap.Toggle), key.Matches(msg, m.KeyMap.Close):
		m.close()
		return nil
	case key.Matches(msg, m.KeyMap.Select):
		return m.selectAt(m.cursor)
	case key.Matches(msg, m.KeyMap.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.KeyMap.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.KeyMap.PageUp):
		return m.moveCursor(-m.visibleRows())
	case key.Matches(msg, m.KeyMap.PageDown):
		return m.moveCursor(m.visibleRows())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.onSearchChanged())
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	x, y := msg.X-m.originX, msg.Y-m.originY
	inside := x >= 0 && x < m.Width && y >= 0 && y < m.Height()

	switch {
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		if inside && m.state != StateClosed {
			return m.moveCursor(-1)
		}
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		if inside && m.state != StateClosed {
			return m.moveCursor(1)
		}
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if !inside {
			if m.state != StateClosed {
				m.close()
			}
			return nil
		}
		if y == 0 {
			return m.Toggle()
		}
		row := y - 2
		if m.state != StateClosed && row >= 0 && row < m.visibleRows() {
			return m.selectAt(m.offset + row)
		}
	}
	return nil
}

// onSearchChanged restarts the query for the new text, debounced
func (m *Model) onSearchChanged() tea.Cmd {
	m.resetQuery()

	n := utf8.RuneCountInString(m.input.Value())
	if n > 0 && n < m.MinSearchLength {
		m.debounce.CancelPending()
		m.missing = m.MinSearchLength - n
		m.state = StateIdle
		return nil
	}

	m.missing = 0
	m.state = StateLoadingFirstPage
	return m.debounce.Schedule(m.DebounceDelay)
}

func (m *Model) onDebounce(msg debounceMsg) tea.Cmd {
	if !m.debounce.Fire(msg) || m.state == StateClosed {
		return nil
	}
	return m.fetch(1)
}

// fetch requests one page unless another load is outstanding
func (m *Model) fetch(page int) tea.Cmd {
	if m.inflight {
		log.Printf("selector %s: dropping page %d request, load already in flight", m.Name, page)
		return nil
	}
	if m.loader == nil {
		m.state = StateIdle
		return nil
	}

	m.inflight = true
	if page == 1 {
		m.state = StateLoadingFirstPage
	} else {
		m.state = StateLoadingMore
	}

	q := domain.Query{
		Search:  m.input.Value(),
		Page:    page,
		Limit:   m.PageSize,
		Filters: copyFilters(m.filters),
	}
	id, gen, loader, ctx := m.id, m.generation, m.loader, m.ctx

	load := func() tea.Msg {
		res, err := loader.Load(ctx, q)
		return pageLoadedMsg{id: id, generation: gen, page: page, result: res, err: err}
	}
	return tea.Batch(load, m.spinner.Tick)
}

func (m *Model) onPageLoaded(msg pageLoadedMsg) {
	if msg.generation != m.generation || !m.inflight {
		log.Printf("selector %s: discarding stale page %d", m.Name, msg.page)
		return
	}
	m.inflight = false
	m.state = StateIdle

	if msg.err != nil {
		log.Printf("selector %s: loading page %d failed: %v", m.Name, msg.page, msg.err)
		if msg.page == 1 {
			m.items = nil
			m.cursor, m.offset = 0, 0
		}
		m.hasMore = false
		return
	}

	if msg.page == 1 {
		m.items = append([]domain.Option(nil), msg.result.Items...)
		m.cursor, m.offset = 0, 0
	} else {
		m.items = append(m.items, msg.result.Items...)
	}
	m.page = msg.page
	m.hasMore = msg.result.HasMore
	m.total = msg.result.Total
	m.clampCursor()
}

// moveCursor scrolls the window and loads the next page near the end
func (m *Model) moveCursor(delta int) tea.Cmd {
	if m.state == StateClosed || len(m.items) == 0 {
		return nil
	}
	m.cursor += delta
	m.clampCursor()
	return m.maybeLoadMore()
}

func (m *Model) maybeLoadMore() tea.Cmd {
	if m.state != StateIdle || !m.hasMore || m.inflight || !m.nearBottom() {
		return nil
	}
	return m.fetch(m.page + 1)
}

func (m Model) nearBottom() bool {
	if len(m.items) == 0 {
		return false
	}
	bottom := m.offset + min(m.visibleRows(), len(m.items))
	return bottom >= len(m.items)-m.ScrollThreshold
}

func (m *Model) clampCursor() {
	if len(m.items) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = max(0, min(m.cursor, len(m.items)-1))

	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, len(m.items)-rows))
}

func (m *Model) selectAt(index int) tea.Cmd {
	if m.state == StateClosed || index < 0 || index >= len(m.items) {
		return nil
	}
	chosen := m.items[index]
	m.close()
	return m.report(&chosen)
}

func (m Model) report(o *domain.Option) tea.Cmd {
	msg := SelectedMsg{Name: m.Name, Option: o}
	return func() tea.Msg { return msg }
}

// resetQuery empties the loaded set and invalidates outstanding loads
func (m *Model) resetQuery() {
	m.generation++
	m.inflight = false
	m.items = nil
	m.page = 0
	m.hasMore = false
	m.total = 0
	m.cursor, m.offset = 0, 0
}

func (m *Model) close() {
	m.debounce.CancelPending()
	m.resetQuery()
	m.missing = 0
	m.state = StateClosed
	m.input.Reset()
	m.input.Blur()
}

func (m Model) visibleRows() int {
	if m.VisibleRows < 1 {
		return 1
	}
	return m.VisibleRows
}

func copyFilters(f map[string]string) map[string]string {
	if len(f) == 0 {
		return nil
	}
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func equalFilters(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
