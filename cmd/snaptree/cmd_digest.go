package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var digestCmd = &cobra.Command{
	Use:   "digest [paths...]",
	Short: "Print the digest of a list of files",
	Long: `Print one digest over the named files, relative to --root, in the order
given. Without paths every file under --root is digested in sorted order.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().String("root", ".", "Directory the paths are relative to")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	root = fileutil.ExpandPath(root)

	paths := args
	if len(paths) == 0 {
		paths = fileutil.Find(root)
	}
	digest, err := fileutil.FilesDigest(paths, root)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), digest)
	return nil
}
