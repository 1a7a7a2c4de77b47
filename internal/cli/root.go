// Package cli wires configuration, loaders and screens into the posctl
// command tree.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"posctl/internal/catalog"
	"posctl/internal/config"
	"posctl/internal/domain"
	"posctl/internal/eventbus"
)

// demoLatency makes the demo catalog feel like a network backend
const demoLatency = 150 * time.Millisecond

type app struct {
	configPath string
	demo       bool
	logFile    string

	bus     eventbus.EventBus
	cfgSvc  config.ConfigService
	cfg     *config.Config
	logSink io.Closer
}

// NewRootCommand builds the posctl command tree
func NewRootCommand() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "posctl",
		Short: "Terminal front end for the POS catalog",
		Long: `posctl browses the POS catalog from the terminal.

Every list (categories, manufacturers, units, products) is searched on the
server and loaded page by page while you scroll.

Run without arguments to open the stock entry form.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runForm(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $POSCTL_CONFIG or the user config dir)")
	root.PersistentFlags().BoolVar(&a.demo, "demo", false, "Use the built-in demo catalog instead of the backend")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Write debug logs to this file")

	root.AddCommand(a.formCommand())
	root.AddCommand(a.pickCommand())
	root.AddCommand(a.resourcesCommand())
	root.AddCommand(a.configCommand())
	return root, a
}

// Execute runs the command tree and returns the process exit code
func Execute() int {
	root, a := newRootCommand()
	defer a.teardown()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.logFile != "" {
		f, err := tea.LogToFile(a.logFile, "posctl")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logSink = f
	} else {
		log.SetOutput(io.Discard)
	}

	a.bus = eventbus.New()
	a.bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			log.Printf("Loaded config from %s (backend %s)", event.Path, event.BaseURL)
		}
	})
	a.bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigSavedEvent); ok {
			log.Printf("Config saved to %s", event.Path)
		}
	})
	a.bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ErrorEvent); ok {
			log.Printf("Error: %s: %v", event.Message, event.Err)
		}
	})

	a.cfgSvc = config.NewConfigServiceWithBus(a.configPath, a.bus)
	cfg, err := a.cfgSvc.Load()
	if err != nil {
		if cmd.Annotations[skipConfigErrors] == "" {
			return err
		}
		log.Printf("Ignoring config error: %v", err)
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	return nil
}

func (a *app) teardown() {
	if a.bus != nil {
		a.bus.Close()
	}
	if a.logSink != nil {
		_ = a.logSink.Close()
		a.logSink = nil
	}
}

// loaders returns one Loader per configured resource
func (a *app) loaders() (map[string]catalog.Loader, error) {
	out := make(map[string]catalog.Loader)

	if a.demo {
		for name, src := range catalog.DemoCatalog() {
			src.SetLatency(demoLatency)
			out[name] = src
		}
		return out, nil
	}

	client, err := catalog.NewClient(catalog.ClientOptions{
		BaseURL:   a.cfg.API.BaseURL,
		Token:     a.cfg.API.Token,
		Timeout:   a.cfg.API.Timeout(),
		Resources: a.cfg.Resources,
	})
	if err != nil {
		return nil, err
	}
	for _, name := range client.Resources() {
		l, err := client.Resource(name)
		if err != nil {
			return nil, err
		}
		out[name] = l
	}
	return out, nil
}

// reportError logs err through the bus and returns it
func (a *app) reportError(message string, err error) error {
	if a.bus != nil {
		a.bus.Publish(eventbus.ErrorEvent{Message: message, Err: err})
	}
	return fmt.Errorf("%s: %w", message, err)
}

func knownResource(name string) bool {
	for _, r := range domain.Resources() {
		if r == name {
			return true
		}
	}
	return false
}
