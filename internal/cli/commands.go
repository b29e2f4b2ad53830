package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/arbor/internal/tree"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

// checkIDs applies the identifier filter the HTTP surface uses.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if err := types.ValidateID(id); err != nil {
			return userError(err)
		}
	}
	return nil
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the tree and restore the sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTree(cmd, func(ctx context.Context, m *tree.Manager) error {
				if err := m.Reset(ctx); err != nil {
					return treeError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tree reset: %d nodes\n", m.Len())
				return nil
			})
		},
	}
}

func newDetailsCmd(a *app) *cobra.Command {
	var format outputFormat
	cmd := &cobra.Command{
		Use:   "details <id>",
		Short: "Show one node: parent, height and root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args...); err != nil {
				return err
			}
			return a.withTree(cmd, func(ctx context.Context, m *tree.Manager) error {
				snap, err := m.NodeDetails(ctx, args[0])
				if err != nil {
					return treeError(err)
				}
				return format.write(cmd.OutOrStdout(), snap)
			})
		},
	}
	format.register(cmd)
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var format outputFormat
	cmd := &cobra.Command{
		Use:   "dump [id]",
		Short: "Print the subtree rooted at id (default: the root) in pre-order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args...); err != nil {
				return err
			}
			return a.withTree(cmd, func(ctx context.Context, m *tree.Manager) error {
				id := m.RootID()
				if len(args) == 1 {
					id = args[0]
				}
				snaps, err := m.DumpSubtree(ctx, id)
				if err != nil {
					return treeError(err)
				}
				return format.write(cmd.OutOrStdout(), snaps)
			})
		},
	}
	format.register(cmd)
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var format outputFormat
	cmd := &cobra.Command{
		Use:   "add <parent> <id>",
		Short: "Attach a new node under parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args...); err != nil {
				return err
			}
			return a.withTree(cmd, func(ctx context.Context, m *tree.Manager) error {
				snap, err := m.Add(ctx, args[0], args[1])
				if err != nil {
					return treeError(err)
				}
				return format.write(cmd.OutOrStdout(), snap)
			})
		},
	}
	format.register(cmd)
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var format outputFormat
	cmd := &cobra.Command{
		Use:   "move <dest> <id>",
		Short: "Move a node and its subtree under dest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIDs(args...); err != nil {
				return err
			}
			dest, source := args[0], args[1]
			return a.withTree(cmd, func(ctx context.Context, m *tree.Manager) error {
				if err := m.Move(ctx, dest, source); err != nil {
					return treeError(err)
				}
				snap, err := m.NodeDetails(ctx, source)
				if err != nil {
					return treeError(err)
				}
				return format.write(cmd.OutOrStdout(), snap)
			})
		},
	}
	format.register(cmd)
	return cmd
}

func newLayersCmd(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Print node identifiers grouped by distance from the root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTree(cmd, func(_ context.Context, m *tree.Manager) error {
				for i, layer := range m.Layers(depth) {
					fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, quoteAll(layer))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&depth, "depth", tree.DefaultLayerDepth, "maximum number of layers")
	return cmd
}
