package selector

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"posctl/internal/catalog"
	"posctl/internal/domain"
)

const testDebounce = 5 * time.Millisecond

var errBackend = errors.New("backend unavailable")

func numberedOptions(n int) []domain.Option {
	out := make([]domain.Option, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = domain.Option{ID: id, Name: "item " + id, Extra: map[string]any{}}
	}
	return out
}

// newTestModel returns a focused selector with a static cursor, so no cursor
// blink commands sleep inside the tests
func newTestModel(t *testing.T, loader catalog.Loader) Model {
	t.Helper()
	m := New("product", loader)
	m.DebounceDelay = testDebounce
	m.SetCursorMode(cursor.CursorStatic)
	m.Focus()
	t.Cleanup(m.Dispose)
	return m
}

// failingPages wraps src and fails the listed page numbers
func failingPages(src catalog.Loader, pages ...int) catalog.Loader {
	fail := make(map[int]bool, len(pages))
	for _, p := range pages {
		fail[p] = true
	}
	return catalog.LoaderFunc(func(ctx context.Context, q domain.Query) (domain.ResultPage, error) {
		if fail[q.Page] {
			return domain.ResultPage{}, errBackend
		}
		return src.Load(ctx, q)
	})
}

// collect runs cmd and every batched command below it, returning the
// produced messages. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// settle feeds every message produced by cmd back into m until nothing is
// left, returning the selections reported on the way
func settle(m Model, cmd tea.Cmd) (Model, []SelectedMsg) {
	queue := collect(cmd)
	var selected []SelectedMsg
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if s, ok := msg.(SelectedMsg); ok {
			selected = append(selected, s)
			continue
		}
		var next tea.Cmd
		m, next = m.Update(msg)
		queue = append(queue, collect(next)...)
	}
	return m, selected
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	return m.Update(msg)
}

func typeText(m Model, text string) (Model, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		cmds = append(cmds, cmd)
	}
	return m, cmds
}

func openSettled(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.Open()
	require.NotNil(t, cmd)
	m, _ = settle(m, cmd)
	require.Equal(t, StateIdle, m.State())
	return m
}

var (
	keyPgDown = tea.KeyMsg{Type: tea.KeyPgDown}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyUp     = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc    = tea.KeyMsg{Type: tea.KeyEsc}
	keyToggle = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyClear  = tea.KeyMsg{Type: tea.KeyCtrlX}
	keyBack   = tea.KeyMsg{Type: tea.KeyBackspace}
)

func ids(options []domain.Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.ID
	}
	return out
}

func idRange(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
