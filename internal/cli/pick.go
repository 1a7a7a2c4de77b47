package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"posctl/internal/domain"
	"posctl/internal/ui/pick"
)

// ErrNothingSelected is returned when pick exits without a choice
var ErrNothingSelected = errors.New("nothing selected")

func (a *app) pickCommand() *cobra.Command {
	var filters map[string]string

	cmd := &cobra.Command{
		Use:   "pick <resource>",
		Short: "Choose one option of a resource and print it as JSON",
		Long: `Opens a single searchable list and prints the chosen option as JSON on
stdout. The list itself is drawn on stderr so the result can be piped.

Example:
  posctl pick products --filter categoryId=3 | jq .sku`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: domain.Resources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPick(cmd, args[0], filters)
		},
	}
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "Filter field as key=value, repeatable")
	return cmd
}

func (a *app) runPick(cmd *cobra.Command, resource string, filters map[string]string) error {
	loaders, err := a.loaders()
	if err != nil {
		return a.reportError("failed to create catalog client", err)
	}
	loader, ok := loaders[resource]
	if !ok {
		return fmt.Errorf("unknown resource %q (known: %s)", resource, strings.Join(domain.Resources(), ", "))
	}

	model := pick.New(pick.Options{
		Resource: resource,
		Loader:   loader,
		Filters:  filters,
		Settings: a.cfg.Selector,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithOutput(os.Stderr),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}

	chosen, ok := model.Result()
	if !ok {
		return ErrNothingSelected
	}
	return writeJSON(cmd.OutOrStdout(), chosen)
}

func writeJSON(w io.Writer, o *domain.Option) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
