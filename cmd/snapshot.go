package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptowatch/cryptowatch/internal/core"
)

var snapshotFlags commonFlags

func init() {
	RootCmd.AddCommand(snapshotCmd)
	snapshotFlags.register(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Produce a point-in-time inventory of crypto artifacts on the host",
	Long: `Produce a point-in-time inventory of crypto artifacts on the host, built
purely from the process filesystem: no kernel probes are loaded. Every
process with at least one crypto library loaded or crypto file open is
listed, in ascending PID order.

Usage example:
  cryptowatch snapshot --format pretty
`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := snapshotFlags.toOptions("snapshot", 0, false)
		os.Exit(exitCode(core.RunSnapshot(opts)))
	},
}
