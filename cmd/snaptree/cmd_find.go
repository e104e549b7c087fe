package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var errNotFound = errors.New("not found")

var findCmd = &cobra.Command{
	Use:   "find [root]",
	Short: "List the paths under root",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFind,
}

var findUpCmd = &cobra.Command{
	Use:   "find-up <path>",
	Short: "Search parent directories for path",
	Long: `Search --start and its parents for path, stopping at --stop (default:
the home directory). Exits non-zero when nothing is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runFindUp,
}

func init() {
	findCmd.Flags().BoolP("follow", "L", false, "Descend into symlinked directories")
	findCmd.Flags().BoolP("dirs", "d", false, "List directories too")
	findCmd.Flags().Bool("unsorted", false, "Print paths in traversal order")
	rootCmd.AddCommand(findCmd)

	findUpCmd.Flags().String("start", "", "Directory to start from (default: working directory)")
	findUpCmd.Flags().String("stop", "", "Directory to stop at (default: home directory)")
	rootCmd.AddCommand(findUpCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = fileutil.ExpandPath(args[0])
	}
	follow, _ := cmd.Flags().GetBool("follow")
	dirs, _ := cmd.Flags().GetBool("dirs")
	unsorted, _ := cmd.Flags().GetBool("unsorted")

	paths := fileutil.Find(root,
		fileutil.WithFollowLinks(follow),
		fileutil.WithDirs(dirs),
		fileutil.WithUnsorted(unsorted))
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func runFindUp(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetString("start")
	stop, _ := cmd.Flags().GetString("stop")
	if start != "" {
		start = fileutil.ExpandPath(start)
	}
	if stop != "" {
		stop = fileutil.ExpandPath(stop)
	}

	path, ok := fileutil.FindUp(args[0], start, stop)
	if !ok {
		return fmt.Errorf("%q: %w", args[0], errNotFound)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
