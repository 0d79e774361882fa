package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the VFS name, digest and size, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(root.vfsPath)
			if err != nil {
				return err
			}
			st := e.tree.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, e.tree.Info())
			fmt.Fprintf(out, "Format: %s\nDirectories: %d\nFiles: %d\n", e.tree.Format, st.Dirs, st.Files)
			return nil
		},
	}
}
