package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
	"github.com/chronos-tachyon/go-snaptree/internal/fileutil"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy the selected files into a new run directory",
	Long: `Copy the selected files into <runs-dir>/<run id> and print the run id,
its directory, the number of files and the digest of the copied set.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	addRootStartFlag(snapshotCmd)
	snapshotCmd.Flags().String("runs-dir", "", "Parent directory for runs (default: runs-dir from the policy)")
	snapshotCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	rootCmd.AddCommand(snapshotCmd)
}

type snapshotResult struct {
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Files  int    `json:"files" yaml:"files"`
	Digest string `json:"digest" yaml:"digest"`
}

// newRunID returns a time-based id, unique per host, as 32 hex digits.
func newRunID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:]), nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	runsDir, _ := cmd.Flags().GetString("runs-dir")
	if runsDir == "" {
		runsDir = ws.policy.RunsDir
	}
	runsDir = fileutil.ExpandPath(runsDir)

	id, err := newRunID()
	if err != nil {
		return err
	}
	runDir := filepath.Join(runsDir, id)
	if err := os.MkdirAll(runDir, 0o777); err != nil {
		return err
	}

	rec := &recorder{}
	factory := rec.wrap(copyHandler(ws.policy.PreserveXattrs))
	opts := append(ws.copyOptions(factory), ws.pruneOutput(runsDir)...)
	if err := fileselect.CopyTree(runDir, ws.rules, opts...); err != nil {
		return err
	}

	files := copiedFiles(runDir, rec.copied)
	digest, err := fileutil.FilesDigest(files, runDir)
	if err != nil {
		return err
	}

	log.Logger.Info().
		Str("id", id).
		Str("path", runDir).
		Int("files", len(files)).
		Msg("snapshot created")

	format, _ := cmd.Flags().GetString("output")
	return writeReport(cmd.OutOrStdout(), format, snapshotResult{
		ID:     id,
		Path:   runDir,
		Files:  len(files),
		Digest: digest,
	})
}

// copiedFiles returns the sorted subset of paths present under dir. Files
// that vanished before they could be copied are dropped.
func copiedFiles(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Lstat(filepath.Join(dir, p)); err == nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
