package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"posctl/internal/domain"
)

func (a *app) resourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the catalog resources and their endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range a.resourceNames() {
				target := a.cfg.API.BaseURL + a.cfg.Resources[name]
				if a.demo {
					target = "demo catalog"
				}
				fmt.Fprintf(out, "%-14s %s\n", name, target)
			}
			return nil
		},
	}
}

// resourceNames lists the known resources first, then any extra configured
// ones in name order
func (a *app) resourceNames() []string {
	var names, extra []string
	for _, name := range domain.Resources() {
		if _, ok := a.cfg.Resources[name]; ok || a.demo {
			names = append(names, name)
		}
	}
	if !a.demo {
		for name := range a.cfg.Resources {
			if !knownResource(name) {
				extra = append(extra, name)
			}
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
