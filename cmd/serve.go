package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/vfsh/internal/nfsmount"
	"github.com/agentic-research/vfsh/internal/vfs"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		listen     string
		mountpoint string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Export the VFS over NFSv3 until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(root.vfsPath)
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			if !cmd.Flags().Changed("listen") {
				listen = e.cfg.NFSListen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveTree(ctx, e.tree, listen, mountpoint, cmd.OutOrStdout(), e.log.Logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", nfsmount.DefaultAddr, "Address for the NFS listener")
	cmd.Flags().StringVar(&mountpoint, "mountpoint", "", "Print the mount command for this directory")
	return cmd
}

// serveTree exports tree until ctx is cancelled or the server stops.
func serveTree(ctx context.Context, tree *vfs.Tree, listen, mountpoint string, out io.Writer, log *zap.Logger) error {
	srv, err := nfsmount.NewServer(nfsmount.NewTreeFS(tree), listen)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	log.Info("nfs server started", zap.String("addr", srv.Addr().String()), zap.String("vfs", tree.Name))
	fmt.Fprintf(out, "Serving %s over NFSv3 on %s\n", tree.Name, srv.Addr())
	if mountpoint != "" {
		if args, err := nfsmount.MountCommand(runtime.GOOS, srv.Port(), mountpoint); err == nil {
			fmt.Fprintf(out, "Mount with: %s\n", strings.Join(args, " "))
		}
	}

	select {
	case <-ctx.Done():
		log.Info("nfs server stopping")
		return nil
	case err := <-srv.Done():
		return fmt.Errorf("nfs serve: %w", err)
	}
}
