package main

import (
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/fileselect"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Show what the policy would copy, without copying",
	Args:  cobra.NoArgs,
	RunE:  runSelect,
}

func init() {
	addRootStartFlag(selectCmd)
	selectCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	selectCmd.Flags().Bool("selected-only", false, "List only the paths that would be copied")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}

	rec := &recorder{}
	if err := fileselect.CopyTree("", ws.rules, ws.copyOptions(rec.wrap(nil))...); err != nil {
		return err
	}

	entries := rec.entries
	if only, _ := cmd.Flags().GetBool("selected-only"); only {
		entries = filterEntries(entries, actionCopy)
	}
	if entries == nil {
		entries = []reportEntry{}
	}

	format, _ := cmd.Flags().GetString("output")
	return writeReport(cmd.OutOrStdout(), format, entries)
}

func filterEntries(entries []reportEntry, action string) []reportEntry {
	var out []reportEntry
	for _, e := range entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
