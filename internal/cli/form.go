package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"posctl/internal/domain"
	"posctl/internal/eventbus"
	"posctl/internal/ui"
	"posctl/internal/ui/form"
	"posctl/internal/ui/services/focus"
	"posctl/internal/ui/views"
)

func (a *app) formCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Open the stock entry form (default)",
		Long: `Opens the stock entry form with one searchable list per field.
The product list only offers products of the chosen category.
Press ctrl+s to submit; the chosen values are printed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runForm(cmd)
		},
	}
}

func (a *app) runForm(cmd *cobra.Command) error {
	loaders, err := a.loaders()
	if err != nil {
		return a.reportError("failed to create catalog client", err)
	}

	var (
		mu        sync.Mutex
		submitted map[string]*domain.Option
	)
	a.bus.Subscribe(eventbus.EventSelectionChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.SelectionChangedEvent); ok {
			if event.Option == nil {
				log.Printf("Field %s cleared", event.Field)
			} else {
				log.Printf("Field %s set to %s (%s)", event.Field, event.Option.Name, event.Option.ID)
			}
		}
	})
	a.bus.Subscribe(eventbus.EventFormSubmitted, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.FormSubmittedEvent); ok {
			mu.Lock()
			submitted = event.Values
			mu.Unlock()
		}
	})

	tracker := focus.NewTracker()
	model := form.New(form.Options{
		Settings: a.cfg.Selector,
		Loaders:  loaders,
		Bus:      a.bus,
		Tracker:  tracker,
	})
	defer model.Dispose()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	helpOps := ui.NewHelpOps()
	helpOps.SetProgram(p)
	model.SetPager(helpOps)

	tracker.Start()
	defer tracker.Stop()

	log.Printf("Starting UI...")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	log.Printf("UI exited normally")

	// drain the bus so the submission handler has run
	a.bus.Close()
	mu.Lock()
	values := submitted
	mu.Unlock()

	out := cmd.OutOrStdout()
	if values == nil {
		fmt.Fprintln(out, "Nothing submitted")
		return nil
	}
	fmt.Fprintln(out, renderValues(values))
	return nil
}

func renderValues(values map[string]*domain.Option) string {
	rows := make(map[string]string, len(values))
	for name, o := range values {
		if o != nil {
			rows[name] = fmt.Sprintf("%s (%s)", o.Name, o.ID)
		}
	}
	return views.RenderSummary(views.NewStyles(), rows, form.Fields()...)
}
