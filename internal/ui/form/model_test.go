package form

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posctl/internal/catalog"
	"posctl/internal/config"
	"posctl/internal/domain"
	"posctl/internal/eventbus"
	"posctl/internal/ui"
	"posctl/internal/ui/selector"
	"posctl/internal/ui/services/focus"
)

type recordingBus struct {
	events []eventbus.DomainEvent
}

func (b *recordingBus) Publish(e eventbus.DomainEvent) { b.events = append(b.events, e) }
func (b *recordingBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() {
	return func() {}
}
func (b *recordingBus) Close() {}

func (b *recordingBus) selections() []eventbus.SelectionChangedEvent {
	var out []eventbus.SelectionChangedEvent
	for _, e := range b.events {
		if s, ok := e.(eventbus.SelectionChangedEvent); ok {
			out = append(out, s)
		}
	}
	return out
}

type fakePager struct {
	content string
	err     error
}

func (p *fakePager) ShowHelpInPager(content string) error {
	p.content = content
	return p.err
}

var (
	beverages = domain.Option{ID: "1", Name: "Beverages", Extra: map[string]any{}}
	bakery    = domain.Option{ID: "2", Name: "Bakery", Extra: map[string]any{}}
	cola      = domain.Option{ID: "10", Name: "Cola", Extra: map[string]any{"categoryId": "1"}}
	bread     = domain.Option{ID: "11", Name: "Bread", Extra: map[string]any{"categoryId": "2"}}
	lemonade  = domain.Option{ID: "12", Name: "Lemonade", Extra: map[string]any{"categoryId": "1"}}
)

func testSettings() config.SelectorSettings {
	return config.SelectorSettings{
		PageSize:        20,
		DebounceMS:      0,
		ScrollThreshold: 2,
		VisibleRows:     5,
		StaticCursor:    true,
	}
}

func testLoaders() map[string]catalog.Loader {
	return map[string]catalog.Loader{
		domain.ResourceCategories:    catalog.NewMemorySource([]domain.Option{beverages, bakery}),
		domain.ResourceProducts:      catalog.NewMemorySource([]domain.Option{cola, bread, lemonade}),
		domain.ResourceManufacturers: catalog.NewMemorySource([]domain.Option{{ID: "5", Name: "Acme"}}),
		domain.ResourceUnits:         catalog.NewMemorySource([]domain.Option{{ID: "7", Name: "pcs"}}),
	}
}

func newTestForm(t *testing.T, opts Options) (*Model, *recordingBus) {
	t.Helper()
	bus := &recordingBus{}
	opts.Bus = bus
	opts.Settings = testSettings()
	if opts.Loaders == nil {
		opts.Loaders = testLoaders()
	}
	m := New(opts)
	t.Cleanup(m.Dispose)
	return m, bus
}

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

// send delivers msg and every message its commands produce, stopping at
// quit. It reports whether the form asked to quit.
func send(m *Model, msg tea.Msg) bool {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := next.(tea.QuitMsg); ok {
			return true
		}
		_, cmd := m.Update(next)
		queue = append(queue, collect(cmd)...)
	}
	return false
}

func field(t *testing.T, m *Model, name string) selector.Model {
	t.Helper()
	f, ok := m.Field(name)
	require.True(t, ok, name)
	return f
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keySubmit   = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func TestNewFocusesFirstField(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	assert.Equal(t, []string{FieldCategory, FieldProduct, FieldManufacturer, FieldUnit}, Fields())
	assert.Equal(t, FieldCategory, m.FocusedField())
	for _, name := range Fields() {
		f := field(t, m, name)
		assert.False(t, f.IsOpen(), name)
		assert.False(t, f.Disabled, name)
	}
	assert.Empty(t, m.Status())
	_, ok := m.Field("colour")
	assert.False(t, ok)
}

func TestTabMovesFocusAndClosesSelector(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, keyEnter)
	require.True(t, field(t, m, FieldCategory).IsOpen())

	send(m, keyTab)
	assert.Equal(t, FieldProduct, m.FocusedField())
	assert.False(t, field(t, m, FieldCategory).IsOpen())
	assert.False(t, field(t, m, FieldCategory).Focused())
	assert.True(t, field(t, m, FieldProduct).Focused())

	send(m, keyShiftTab)
	send(m, keyShiftTab)
	assert.Equal(t, FieldUnit, m.FocusedField(), "focus wraps around")
}

func TestSelectingCategoryFiltersProducts(t *testing.T) {
	m, bus := newTestForm(t, Options{})

	send(m, keyEnter)
	require.Len(t, field(t, m, FieldCategory).Items(), 2)
	send(m, keyEnter)

	values := m.Values()
	require.NotNil(t, values[FieldCategory])
	assert.Equal(t, "Beverages", values[FieldCategory].Name)
	assert.Equal(t, "Beverages", field(t, m, FieldCategory).Selection().Name)
	assert.Equal(t, map[string]string{CategoryFilterKey: "1"}, field(t, m, FieldProduct).Filters())

	events := bus.selections()
	require.Len(t, events, 1)
	assert.Equal(t, FieldCategory, events[0].Field)
	assert.Equal(t, "1", events[0].Option.ID)

	send(m, keyTab)
	send(m, keyEnter)
	product := field(t, m, FieldProduct)
	require.True(t, product.IsOpen())
	assert.Equal(t, []string{"10", "12"}, []string{product.Items()[0].ID, product.Items()[1].ID})
	assert.Len(t, product.Items(), 2)
}

func TestCategoryChangeClearsMismatchedProduct(t *testing.T) {
	m, bus := newTestForm(t, Options{})

	send(m, selector.SelectedMsg{Name: FieldProduct, Option: &bread})
	send(m, selector.SelectedMsg{Name: FieldCategory, Option: &beverages})

	values := m.Values()
	assert.Nil(t, values[FieldProduct])
	assert.Nil(t, field(t, m, FieldProduct).Selection())

	events := bus.selections()
	require.Len(t, events, 3)
	assert.Equal(t, FieldProduct, events[2].Field)
	assert.Nil(t, events[2].Option)
}

func TestCategoryChangeKeepsMatchingProduct(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, selector.SelectedMsg{Name: FieldProduct, Option: &cola})
	send(m, selector.SelectedMsg{Name: FieldCategory, Option: &beverages})

	require.NotNil(t, m.Values()[FieldProduct])
	assert.Equal(t, "10", m.Values()[FieldProduct].ID)
}

func TestClearingCategoryDropsProductFilter(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, selector.SelectedMsg{Name: FieldCategory, Option: &bakery})
	require.NotEmpty(t, field(t, m, FieldProduct).Filters())

	send(m, selector.SelectedMsg{Name: FieldCategory, Option: nil})
	assert.Empty(t, field(t, m, FieldProduct).Filters())
	assert.Equal(t, "Category cleared", m.Status())
}

func TestCategoryChangeRefetchesOpenProductList(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, keyTab)
	send(m, keyEnter)
	require.Len(t, field(t, m, FieldProduct).Items(), 3)

	send(m, selector.SelectedMsg{Name: FieldCategory, Option: &bakery})
	product := field(t, m, FieldProduct)
	require.True(t, product.IsOpen())
	require.Len(t, product.Items(), 1)
	assert.Equal(t, "11", product.Items()[0].ID)
}

func TestSubmitRequiresProduct(t *testing.T) {
	m, bus := newTestForm(t, Options{})

	assert.False(t, send(m, keySubmit))
	assert.False(t, m.Submitted())
	assert.Equal(t, "Choose a product before submitting", m.Status())

	send(m, keyTab)
	send(m, keyEnter)
	send(m, keyDown)
	send(m, keyEnter)
	require.NotNil(t, m.Values()[FieldProduct])
	assert.Equal(t, "11", m.Values()[FieldProduct].ID)

	assert.True(t, send(m, keySubmit))
	assert.True(t, m.Submitted())

	var submitted []eventbus.FormSubmittedEvent
	for _, e := range bus.events {
		if s, ok := e.(eventbus.FormSubmittedEvent); ok {
			submitted = append(submitted, s)
		}
	}
	require.Len(t, submitted, 1)
	assert.Equal(t, "Bread", submitted[0].Values[FieldProduct].Name)
	assert.Contains(t, submitted[0].Values, FieldUnit)
	assert.Nil(t, submitted[0].Values[FieldUnit])
}

func TestCancelQuitsWithoutSubmitting(t *testing.T) {
	m, bus := newTestForm(t, Options{})

	assert.True(t, send(m, keyRune('q')))
	assert.False(t, m.Submitted())
	assert.Empty(t, bus.events)
}

func TestTypingQInOpenSelectorSearches(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, keyEnter)
	assert.False(t, send(m, keyRune('q')))
	assert.Equal(t, "q", field(t, m, FieldCategory).Search())
}

func TestTerminalBlurClosesOpenSelector(t *testing.T) {
	tracker := focus.NewTracker()
	tracker.Start()
	m, _ := newTestForm(t, Options{Tracker: tracker})

	send(m, keyEnter)
	require.True(t, field(t, m, FieldCategory).IsOpen())

	send(m, tea.BlurMsg{})
	assert.False(t, field(t, m, FieldCategory).IsOpen())
	assert.True(t, field(t, m, FieldCategory).Focused(), "key focus stays on the field")
	assert.False(t, tracker.Focused())
}

func TestDisposeUnsubscribesFromTracker(t *testing.T) {
	tracker := focus.NewTracker()
	tracker.Start()
	m, _ := newTestForm(t, Options{Tracker: tracker})
	require.NotNil(t, m.unsubscribe)

	m.Dispose()
	assert.Nil(t, m.unsubscribe)
	m.Dispose()
}

func TestHelpOpensPager(t *testing.T) {
	pager := &fakePager{}
	m, _ := newTestForm(t, Options{Pager: pager})

	_, cmd := m.Update(keyRune('?'))
	require.NotNil(t, cmd)
	assert.Empty(t, m.View(), "nothing is drawn while the pager owns the terminal")

	msg := cmd()
	require.IsType(t, ui.HelpPagerMsg{}, msg)
	assert.Contains(t, pager.content, "ctrl+o")
	assert.Contains(t, pager.content, "shift+tab")

	m.Update(msg)
	assert.Contains(t, m.View(), "Category")
}

func TestHelpPagerFailureShowsStatus(t *testing.T) {
	pager := &fakePager{err: errors.New("no tty")}
	m, _ := newTestForm(t, Options{Pager: pager})

	send(m, keyRune('?'))
	assert.Equal(t, "Help unavailable: no tty", m.Status())
}

func TestHelpWithoutPager(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	_, cmd := m.Update(keyRune('?'))
	assert.Nil(t, cmd)
	assert.Equal(t, "Help pager unavailable", m.Status())
}

func TestMissingLoaderDisablesField(t *testing.T) {
	loaders := testLoaders()
	delete(loaders, domain.ResourceUnits)
	m, _ := newTestForm(t, Options{Loaders: loaders})

	assert.True(t, field(t, m, FieldUnit).Disabled)
	assert.Contains(t, m.Status(), "units")
}

func TestMouseClickFocusesAndOpensField(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, keyEnter)
	require.True(t, field(t, m, FieldCategory).IsOpen())

	productLine := m.origins[m.index[FieldProduct]]
	send(m, tea.MouseMsg{X: 1, Y: productLine, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	assert.Equal(t, FieldProduct, m.FocusedField())
	assert.False(t, field(t, m, FieldCategory).IsOpen())
	assert.True(t, field(t, m, FieldProduct).IsOpen())
	assert.Len(t, field(t, m, FieldProduct).Items(), 3)
}

func TestMouseClickOutsideClosesField(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	send(m, keyEnter)
	send(m, tea.MouseMsg{X: 1, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.False(t, field(t, m, FieldCategory).IsOpen())
	assert.Equal(t, FieldCategory, m.FocusedField())
}

func TestLayoutFollowsOpenSelector(t *testing.T) {
	m, _ := newTestForm(t, Options{})

	closed := m.origins[1]
	assert.Equal(t, headerHeight+2, closed)

	send(m, keyEnter)
	assert.Equal(t, headerHeight+field(t, m, FieldCategory).Height()+1, m.origins[1])
}

func TestViewShowsFieldsAndValues(t *testing.T) {
	m, _ := newTestForm(t, Options{Title: "Receive stock"})
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	send(m, selector.SelectedMsg{Name: FieldProduct, Option: &cola})

	view := m.View()
	for _, label := range []string{"Receive stock", "Category", "Product", "Manufacturer", "Unit", "Cola"} {
		assert.Contains(t, view, label)
	}
	assert.Equal(t, "Product: Cola", m.Status())
}
