// Package pick is a full-screen shell around a single selector. It exits on
// the first selection, reporting the chosen option.
package pick

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"posctl/internal/catalog"
	"posctl/internal/config"
	"posctl/internal/domain"
	"posctl/internal/ui"
	"posctl/internal/ui/selector"
	"posctl/internal/ui/views"
)

// lines above the selector: title and a blank line
const headerHeight = 2

// Options configures a pick screen
type Options struct {
	Resource string
	Loader   catalog.Loader
	Filters  map[string]string
	Settings config.SelectorSettings
}

// Model is the pick screen
type Model struct {
	resource string
	sel      selector.Model
	styles   *views.Styles
	help     help.Model
	quit     key.Binding
	cancel   key.Binding

	result *domain.Option
	chosen bool
}

// New creates a pick screen
func New(opts Options) *Model {
	s := selector.New(opts.Resource, opts.Loader)
	s.Label = opts.Resource
	ui.ConfigureSelector(&s, opts.Settings)
	s.SetFilters(opts.Filters)
	s.SetOrigin(0, headerHeight)
	s.Focus()

	return &Model{
		resource: opts.Resource,
		sel:      s,
		styles:   views.NewStyles(),
		help:     help.New(),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("q", "quit without choosing"),
		),
	}
}

// Result returns the chosen option; ok is false when the user quit without
// choosing
func (m *Model) Result() (*domain.Option, bool) {
	return m.result, m.chosen
}

// Init opens the selector
func (m *Model) Init() tea.Cmd {
	return m.sel.Open()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.sel.Width = max(24, msg.Width-2)
		m.sel.VisibleRows = max(3, msg.Height-headerHeight-5)
		return m, nil

	case selector.SelectedMsg:
		if msg.Option == nil {
			return m, nil
		}
		m.result = msg.Option
		m.chosen = true
		m.sel.Dispose()
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) || (!m.sel.IsOpen() && key.Matches(msg, m.cancel)) {
			m.sel.Dispose()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.sel, cmd = m.sel.Update(msg)
	return m, cmd
}

// View renders the screen
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(views.RenderHeader(m.styles, m.sel.Width, "Pick "+m.resource, filterText(m.sel.Filters())))
	b.WriteString("\n\n")
	b.WriteString(m.sel.View())
	b.WriteString("\n\n")
	bindings := append(m.sel.ShortHelp(), m.cancel)
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func filterText(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return "filter " + strings.Join(parts, ",")
}
