package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptowatch/cryptowatch/internal/core"
)

var profileFlags commonFlags
var profileDurationSeconds int
var profileFollowChildren bool

func init() {
	RootCmd.AddCommand(profileCmd)
	profileFlags.register(profileCmd)
	profileCmd.Flags().IntVar(&profileDurationSeconds, "duration", 60, "stop after this many seconds (0 means run until the target exits or is interrupted)")
	profileCmd.Flags().BoolVar(&profileFollowChildren, "follow-children", false, "also accumulate state for descendants of --pid")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Accumulate per-process crypto activity into one profile document",
	Long: `Accumulate per-process crypto activity into one profile document: every
library loaded, every crypto file opened, every API call observed, from
process start (or command invocation) through duration elapsed, target
exit, or interruption.

Usage example:
  cryptowatch profile --pid 4821 --duration 30
`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := profileFlags.toOptions("profile", profileDurationSeconds, profileFollowChildren)
		os.Exit(exitCode(core.RunProfile(opts)))
	},
}
