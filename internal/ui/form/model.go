// Package form implements the stock entry screen: one paged selector per
// field, with the product list narrowed to the chosen category.
package form

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"posctl/internal/catalog"
	"posctl/internal/config"
	"posctl/internal/domain"
	"posctl/internal/eventbus"
	"posctl/internal/ui"
	"posctl/internal/ui/selector"
	"posctl/internal/ui/services/focus"
	"posctl/internal/ui/views"
)

// Field names, also used as SelectedMsg names
const (
	FieldCategory     = "category"
	FieldManufacturer = "manufacturer"
	FieldUnit         = "unit"
	FieldProduct      = "product"
)

// CategoryFilterKey is the product attribute narrowed by the chosen category
const CategoryFilterKey = "categoryId"

// lines above the first field: title and a blank line
const headerHeight = 2

type fieldSpec struct {
	name     string
	label    string
	resource string
}

var fieldSpecs = []fieldSpec{
	{FieldCategory, "Category", domain.ResourceCategories},
	{FieldProduct, "Product", domain.ResourceProducts},
	{FieldManufacturer, "Manufacturer", domain.ResourceManufacturers},
	{FieldUnit, "Unit", domain.ResourceUnits},
}

// Fields lists the field names in display order
func Fields() []string {
	out := make([]string, len(fieldSpecs))
	for i, f := range fieldSpecs {
		out[i] = f.name
	}
	return out
}

// Options configures a form
type Options struct {
	Title    string
	Settings config.SelectorSettings
	Loaders  map[string]catalog.Loader // keyed by resource name
	Bus      eventbus.EventBus
	Tracker  *focus.Tracker
	Pager    ui.Pager
}

// Model is the stock entry form
type Model struct {
	title   string
	bus     eventbus.EventBus
	tracker *focus.Tracker
	pager   ui.Pager

	keys     KeyMap
	help     help.Model
	helpText *ui.HelpRenderer
	styles   *views.Styles

	fields  []selector.Model
	index   map[string]int
	origins []int
	values  map[string]*domain.Option
	focus   int

	width, height int
	status        string
	statusKind    views.StatusKind

	submitted   bool
	inPager     bool
	unsubscribe func()
}

// New creates a form. Fields without a loader are disabled.
func New(opts Options) *Model {
	title := opts.Title
	if title == "" {
		title = "Stock entry"
	}

	m := &Model{
		title:    title,
		bus:      opts.Bus,
		tracker:  opts.Tracker,
		pager:    opts.Pager,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		helpText: ui.NewHelpRenderer(title + " help"),
		styles:   views.NewStyles(),
		index:    make(map[string]int, len(fieldSpecs)),
		origins:  make([]int, len(fieldSpecs)),
		values:   make(map[string]*domain.Option, len(fieldSpecs)),
	}

	var missing []string
	for i, spec := range fieldSpecs {
		loader := opts.Loaders[spec.resource]
		s := selector.New(spec.name, loader)
		s.Label = spec.label
		ui.ConfigureSelector(&s, opts.Settings)
		if loader == nil {
			s.Disabled = true
			missing = append(missing, spec.resource)
		}
		m.fields = append(m.fields, s)
		m.index[spec.name] = i
	}
	m.fields[0].Focus()

	if len(missing) > 0 {
		m.setStatus(views.StatusWarn, "No endpoint configured for "+strings.Join(missing, ", "))
	}
	if m.tracker != nil {
		m.unsubscribe = m.tracker.Subscribe(m.onTerminalFocus)
	}
	m.layout()
	return m
}

// SetPager sets the pager used for the help screen
func (m *Model) SetPager(p ui.Pager) {
	m.pager = p
}

// Values returns a copy of the current field values
func (m *Model) Values() map[string]*domain.Option {
	out := make(map[string]*domain.Option, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		if o := m.values[spec.name]; o != nil {
			v := *o
			out[spec.name] = &v
		} else {
			out[spec.name] = nil
		}
	}
	return out
}

// Submitted reports whether the form was submitted
func (m *Model) Submitted() bool {
	return m.submitted
}

// Field returns the selector of a field
func (m *Model) Field(name string) (selector.Model, bool) {
	i, ok := m.index[name]
	if !ok {
		return selector.Model{}, false
	}
	return m.fields[i], true
}

// FocusedField returns the name of the field receiving keys
func (m *Model) FocusedField() string {
	return fieldSpecs[m.focus].name
}

// Status returns the current status message
func (m *Model) Status() string {
	return m.status
}

// Dispose releases the selectors and the focus subscription
func (m *Model) Dispose() {
	for i := range m.fields {
		m.fields[i].Dispose()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	if m.tracker != nil && m.tracker.Handle(msg) {
		return nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w := max(24, min(msg.Width-2, 72))
		for i := range m.fields {
			m.fields[i].Width = w
		}
		return nil

	case selector.SelectedMsg:
		return m.applySelection(msg)

	case ui.HelpPagerMsg:
		m.inPager = false
		if msg.Err != nil {
			log.Printf("Help pager failed: %v", msg.Err)
			m.setStatus(views.StatusFailed, "Help unavailable: "+msg.Err.Error())
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m.broadcast(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Dispose()
		return tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		m.setFocus(m.focus + 1)
		return nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus(m.focus - 1)
		return nil
	}

	cur := &m.fields[m.focus]
	if !cur.IsOpen() {
		switch {
		case key.Matches(msg, m.keys.Help):
			return m.showHelp()
		case key.Matches(msg, m.keys.Cancel):
			m.Dispose()
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	*cur, cmd = cur.Update(msg)
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
		for i := range m.fields {
			if i == m.focus || !m.hit(i, msg.Y) {
				continue
			}
			onToggle := msg.Y == m.origins[i]
			m.setFocus(i)
			if onToggle {
				return m.fields[i].Open()
			}
			return nil
		}
	}
	return m.broadcast(msg)
}

func (m *Model) hit(i, y int) bool {
	top := m.origins[i]
	return y >= top && y < top+m.fields[i].Height()
}

// broadcast hands msg to every selector; each ignores what is not its own
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i := range m.fields {
		var cmd tea.Cmd
		m.fields[i], cmd = m.fields[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	n := len(m.fields)
	i = ((i % n) + n) % n
	if i == m.focus {
		return
	}
	m.fields[m.focus].Blur()
	m.focus = i
	m.fields[i].Focus()
}

func (m *Model) onTerminalFocus(focused bool) {
	if focused {
		return
	}
	for i := range m.fields {
		m.fields[i].Close()
	}
}

func (m *Model) applySelection(msg selector.SelectedMsg) tea.Cmd {
	if _, ok := m.index[msg.Name]; !ok {
		return nil
	}
	m.setValue(msg.Name, msg.Option)

	if msg.Name == FieldCategory {
		return m.applyCategory(msg.Option)
	}
	return nil
}

// applyCategory narrows the product list and drops a product of another
// category
func (m *Model) applyCategory(category *domain.Option) tea.Cmd {
	var filters map[string]string
	if category != nil {
		filters = map[string]string{CategoryFilterKey: category.ID}
	}
	product := &m.fields[m.index[FieldProduct]]
	cmd := product.SetFilters(filters)

	if p := m.values[FieldProduct]; p != nil && category != nil && p.Field(CategoryFilterKey) != category.ID {
		m.setValue(FieldProduct, nil)
	}
	return cmd
}

func (m *Model) setValue(name string, o *domain.Option) {
	i := m.index[name]
	m.values[name] = o
	m.fields[i].SetSelection(o)

	label := fieldSpecs[i].label
	if o == nil {
		m.setStatus(views.StatusInfo, label+" cleared")
	} else {
		m.setStatus(views.StatusOK, fmt.Sprintf("%s: %s", label, o.Name))
	}

	if m.bus != nil {
		var payload *domain.Option
		if o != nil {
			v := *o
			payload = &v
		}
		m.bus.Publish(eventbus.SelectionChangedEvent{Field: name, Option: payload})
	}
}

func (m *Model) submit() tea.Cmd {
	if m.values[FieldProduct] == nil {
		m.setStatus(views.StatusFailed, "Choose a product before submitting")
		return nil
	}
	if m.bus != nil {
		m.bus.Publish(eventbus.FormSubmittedEvent{Values: m.Values()})
	}
	m.submitted = true
	m.Dispose()
	return tea.Quit
}

func (m *Model) showHelp() tea.Cmd {
	if m.pager == nil {
		m.setStatus(views.StatusWarn, "Help pager unavailable")
		return nil
	}
	m.inPager = true
	return ui.PagerCmd(m.pager, m.HelpContent())
}

// HelpContent renders the keybinding help shown in the pager
func (m *Model) HelpContent() string {
	sk := selector.DefaultKeyMap()
	return m.helpText.Render(
		ui.HelpSection{Title: "Form", Bindings: []key.Binding{m.keys.Next, m.keys.Prev, m.keys.Submit, m.keys.Help, m.keys.Cancel, m.keys.Quit}},
		ui.HelpSection{Title: "Closed field", Bindings: []key.Binding{sk.Toggle, sk.Open, sk.Clear}},
		ui.HelpSection{Title: "Open field", Bindings: []key.Binding{sk.Up, sk.Down, sk.PageUp, sk.PageDown, sk.Select, sk.Close}},
	)
}

func (m *Model) setStatus(kind views.StatusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// layout records where each selector is drawn for mouse hit-testing
func (m *Model) layout() {
	y := headerHeight
	for i := range m.fields {
		m.origins[i] = y
		m.fields[i].SetOrigin(0, y)
		y += m.fields[i].Height() + 1
	}
}

// View renders the form
func (m *Model) View() string {
	if m.inPager {
		return ""
	}

	var indicators []string
	for _, f := range m.fields {
		if f.Fetching() {
			indicators = append(indicators, "loading "+f.Label)
		}
	}

	var b strings.Builder
	b.WriteString(views.RenderHeader(m.styles, m.width, m.title, indicators...))
	b.WriteString("\n")
	for _, f := range m.fields {
		b.WriteString("\n")
		b.WriteString(f.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.styles.StatusStyle(m.statusKind).Render(m.status))
	}
	b.WriteString("\n")

	bindings := append(m.fields[m.focus].ShortHelp(), m.keys.ShortHelp()...)
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}
