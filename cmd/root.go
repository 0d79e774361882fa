// Package cmd is the vfsh command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/vfsh/internal/config"
	"github.com/agentic-research/vfsh/internal/history"
	"github.com/agentic-research/vfsh/internal/logging"
	"github.com/agentic-research/vfsh/internal/shell"
	"github.com/agentic-research/vfsh/internal/vfs"
)

type rootOptions struct {
	vfsPath       string
	startupScript string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vfsh",
		Short:         "vfsh: a shell over an in-memory virtual filesystem",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.vfsPath, "vfs-path", "", "Path to the VFS description (.xml, .json or .yaml)")
	_ = root.MarkPersistentFlagRequired("vfs-path")
	root.Flags().StringVar(&opts.startupScript, "startup-script", "", "Script to run before the interactive prompt")

	root.AddCommand(newServeCmd(opts), newInfoCmd(opts))
	return root
}

// env is what every subcommand needs after flag parsing.
type env struct {
	cfg  *config.Config
	log  *logging.Logger
	tree *vfs.Tree
	path string // absolute VFS path
}

func setup(vfsPath string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		log = logging.NewDefault()
		log.Warn("invalid logging config, using defaults", zap.String("level", cfg.LogLevel), zap.Error(err))
	}

	abs, err := filepath.Abs(vfsPath)
	if err != nil {
		abs = vfsPath
	}
	tree, err := vfs.LoadFile(abs)
	if err != nil {
		return nil, err
	}

	st := tree.Stats()
	log.Info("vfs loaded",
		zap.String("path", abs),
		zap.String("name", tree.Name),
		zap.String("format", string(tree.Format)),
		zap.String("sha256", tree.Digest),
		zap.Int("dirs", st.Dirs),
		zap.Int("files", st.Files),
	)
	return &env{cfg: cfg, log: log, tree: tree, path: abs}, nil
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	if opts.startupScript != "" {
		info, err := os.Stat(opts.startupScript)
		if err != nil {
			return fmt.Errorf("startup script: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("startup script: %s is a directory", opts.startupScript)
		}
	}

	e, err := setup(opts.vfsPath)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	store, err := history.Open(e.cfg.HistoryDSN)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sh := shell.New(vfs.NewSession(e.tree), shell.Options{
		Logger:       e.log.Logger,
		History:      store,
		HistoryLimit: e.cfg.HistoryLimit,
	})

	term := newTerminal(cmd.OutOrStdout(), e.cfg.Color)
	writeHeader(cmd.ErrOrStderr(), e, opts.startupScript)
	term.banner()

	if opts.startupScript != "" {
		if exited := term.runScript(sh, opts.startupScript); exited {
			return nil
		}
	}
	return term.repl(sh, cmd.InOrStdin())
}

func writeHeader(w io.Writer, e *env, script string) {
	rule := "============================================================\n"
	if script == "" {
		script = "(none)"
	}
	fmt.Fprint(w, rule)
	fmt.Fprintf(w, "VFS Path: %s\n", e.path)
	fmt.Fprint(w, e.tree.Info())
	fmt.Fprintf(w, "Startup Script: %s\n", script)
	fmt.Fprint(w, rule)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "vfsh:", err)
		var pe *vfs.ParseError
		if errors.As(err, &pe) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
