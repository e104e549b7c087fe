package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var copyCmd = &cobra.Command{
	Use:   "copy <dest>",
	Short: "Copy the files the policy selects into dest",
	Long: `Copy the files the policy selects into dest, mirroring their paths.

With --paths-from the policy is not consulted: exactly the listed paths,
one per line relative to --root-start, are copied.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

func init() {
	addRootStartFlag(copyCmd)
	copyCmd.Flags().Bool("preserve-xattrs", false, "Copy extended attributes too")
	copyCmd.Flags().String("paths-from", "", "Copy the paths listed in this file instead of evaluating the policy")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	dst := fileutil.ExpandPath(args[0])
	xattrs, _ := cmd.Flags().GetBool("preserve-xattrs")
	pathsFrom, _ := cmd.Flags().GetString("paths-from")

	if pathsFrom != "" {
		paths, err := readPathList(fileutil.ExpandPath(pathsFrom))
		if err != nil {
			return err
		}
		src, _ := cmd.Flags().GetString("root-start")
		if src == "" {
			src = "."
		}
		return fileselect.CopyFiles(fileutil.ExpandPath(src), dst, paths,
			fileselect.WithHandler(copyHandler(xattrs)))
	}

	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	rec := &recorder{}
	factory := rec.wrap(copyHandler(xattrs || ws.policy.PreserveXattrs))
	if err := os.MkdirAll(dst, 0o777); err != nil {
		return err
	}
	opts := append(ws.copyOptions(factory), ws.pruneOutput(dst)...)
	if err := fileselect.CopyTree(dst, ws.rules, opts...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied %d files to %s\n", len(rec.copied), dst)
	return nil
}

// readPathList reads one path per line, skipping blank lines.
func readPathList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to open file: %w", path, err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%q: failed to read file: %w", path, err)
	}
	return paths, nil
}
