package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/arbor/internal/tree"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize arbor storage",
		Long: "Create the configuration and data directories, then open the record store.\n" +
			"An empty store is seeded with the sample tree; an existing one is restored and checked.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTree(cmd, func(_ context.Context, m *tree.Manager) error {
				fmt.Fprintf(cmd.OutOrStdout(), "arbor initialized: %d nodes in %s (%s backend)\n",
					m.Len(), a.dataDir, a.settings.Backend)
				return nil
			})
		},
	}
}
