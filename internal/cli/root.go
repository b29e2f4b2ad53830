// Package cli implements the arbor command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/arbor/internal/paths"
	"github.com/mesh-intelligence/arbor/internal/tree"
	"github.com/mesh-intelligence/arbor/pkg/backend"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
}

// app carries the state shared by the subcommands of one root command.
type app struct {
	flags    rootFlags
	settings settings
	dataDir  string
	logger   *slog.Logger
}

// NewRootCmd creates the top-level "arbor" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}
	root := &cobra.Command{
		Use:   "arbor",
		Short: "A persisted tree of named nodes",
		Long: "arbor keeps a tree of uniquely named nodes, persisted one record per node,\n" +
			"and serves attach, move, lookup and subtree dump over HTTP.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.arbor if present, else the platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/treedata)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "record backend: files, sqlite or badger (default from config)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newResetCmd(a),
		newDumpCmd(a),
		newDetailsCmd(a),
		newAddCmd(a),
		newMoveCmd(a),
		newLayersCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "arbor:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads config.yaml and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	s, err := decodeSettings(v)
	if err != nil {
		return userError(err)
	}
	if a.flags.backend != "" {
		s.Backend = a.flags.backend
	}
	a.settings = s

	a.dataDir, err = paths.ResolveDataDir(a.flags.dataDir, s.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	out := cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		out = cmd.OutOrStdout()
	}
	logger, err := newLogger(out, s.LogLevel, s.LogFormat)
	if err != nil {
		return userError(err)
	}
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// storeConfig returns the record store configuration for this run.
func (a *app) storeConfig() types.Config {
	return types.Config{
		Backend:   a.settings.Backend,
		DataDir:   a.dataDir,
		StrictIDs: a.settings.StrictIDs,
	}
}

// openTree opens the record store and restores or seeds the tree. The
// caller must close the returned store.
func (a *app) openTree(ctx context.Context, opts ...tree.Option) (*tree.Manager, types.RecordStore, error) {
	cfg := a.storeConfig()
	store, err := backend.Open(cfg)
	if err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) {
			return nil, nil, userError(err)
		}
		return nil, nil, sysError(fmt.Errorf("open %s store in %s: %w", cfg.Backend, cfg.DataDir, err))
	}
	opts = append([]tree.Option{
		tree.WithLogger(a.logger),
		tree.WithStrictIDs(cfg.StrictIDs),
	}, opts...)
	m, err := tree.Open(ctx, store, opts...)
	if err != nil {
		store.Close()
		return nil, nil, sysError(err)
	}
	return m, store, nil
}

// withTree runs fn against the opened tree and closes the store afterwards.
func (a *app) withTree(cmd *cobra.Command, fn func(ctx context.Context, m *tree.Manager) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	m, store, err := a.openTree(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = sysError(fmt.Errorf("close store: %w", cerr))
		}
	}()
	return fn(ctx, m)
}
