package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptowatch/cryptowatch/internal/core"
)

var monitorFlags commonFlags
var monitorDurationSeconds int
var monitorFollowChildren bool
var monitorMetricsListen string

func init() {
	RootCmd.AddCommand(monitorCmd)
	monitorFlags.register(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorDurationSeconds, "duration", 0, "stop after this many seconds (0 means run until interrupted)")
	monitorCmd.Flags().BoolVar(&monitorFollowChildren, "follow-children", false, "not supported in monitor mode: the run is rejected with an argument error (descendant tracking is available in profile mode)")
	monitorCmd.Flags().StringVar(&monitorMetricsListen, "metrics-listen", "", "address to serve Prometheus metrics on, e.g. :9090 (overrides the config file; empty disables)")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream cryptographic activity on the host in real-time",
	Long: `Stream cryptographic activity on the host in real-time: library loads,
certificate/key/keystore file opens, process exec/exit, and optional TLS
API calls, emitted as one JSON object per event.

Usage example:
  cryptowatch monitor --format stream --library libssl
`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := monitorFlags.toOptions("monitor", monitorDurationSeconds, monitorFollowChildren)
		opts.MetricsListen = monitorMetricsListen
		os.Exit(exitCode(core.RunMonitor(opts)))
	},
}
