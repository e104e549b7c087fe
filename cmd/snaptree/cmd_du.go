package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var duCmd = &cobra.Command{
	Use:   "du <path>...",
	Short: "Print the disk usage of each path",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDU,
}

func init() {
	duCmd.Flags().BoolP("bytes", "b", false, "Print exact byte counts")
	rootCmd.AddCommand(duCmd)
}

func runDU(cmd *cobra.Command, args []string) error {
	exact, _ := cmd.Flags().GetBool("bytes")
	for _, path := range args {
		n := fileutil.DiskUsage(fileutil.ExpandPath(path))
		size := humanize.Bytes(uint64(n))
		if exact {
			size = fmt.Sprint(n)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", size, path)
	}
	return nil
}
