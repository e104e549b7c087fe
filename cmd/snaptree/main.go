package main

import (
	"os"

	"github.com/chronos-tachyon/go-autolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-snaptree/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "snaptree",
	Short: "Snapshot a source tree under a selection policy",
	Long: `snaptree copies the files a policy selects from a source tree into a
destination or a fresh run directory, and reports digests and sizes of
file sets.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logging.SetVerbosity(verbosity)
		log.Logger.Debug().
			Str("command", cmd.Name()).
			Msg("command started")
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringP("policy", "p", "", "Policy file (default: nearest .snaptree.{yaml,yml,toml})")
}

func main() {
	autolog.Init()
	code := 0
	if err := rootCmd.Execute(); err != nil {
		log.Logger.Error().
			Err(err).
			Msg("snaptree failed")
		code = 1
	}
	if err := autolog.Done(); err != nil {
		panic(err)
	}
	os.Exit(code)
}
