// Package cmd implements the CLI layer: argument parsing, help/version
// rendering, and command dispatch. It translates flags into a
// core.Options and calls exactly one of core.RunMonitor/RunProfile/
// RunSnapshot, then maps the returned core.ExitCategory to a process exit
// code. One cobra command per core entry point.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryptowatch/cryptowatch/internal/core"
)

// RootCmd is the cryptowatch CLI's entry point.
var RootCmd = &cobra.Command{
	Use:   "cryptowatch",
	Short: "Report cryptographic activity on a Linux host",
}

// commonFlags are shared across all three subcommands.
type commonFlags struct {
	outputPath       string
	format           string
	pid              int
	processName      string
	librarySubstring string
	fileGlob         string
	verbose          bool
	quiet            bool
	disableRedaction bool
	configPath       string
	cryptoLibraries  string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "write output to this file instead of stdout")
	cmd.Flags().StringVar(&f.format, "format", "stream", "output shape: stream, array, or pretty")
	cmd.Flags().IntVar(&f.pid, "pid", 0, "restrict to this process id (0 means unset)")
	cmd.Flags().StringVar(&f.processName, "process-name", "", "case-insensitive substring filter on process name")
	cmd.Flags().StringVar(&f.librarySubstring, "library", "", "case-insensitive substring filter on library path or name")
	cmd.Flags().StringVar(&f.fileGlob, "file-glob", "", "shell-glob filter on file path")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only log warnings and errors")
	cmd.Flags().BoolVar(&f.disableRedaction, "disable-redaction", false, "do not rewrite per-user paths")
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a host-level YAML config file")
	cmd.Flags().StringVar(&f.cryptoLibraries, "crypto-libraries", "", "comma-separated library substrings to treat as crypto libraries (overrides the config file)")
}

// toCryptoLibraries splits the comma-separated flag value into the slice
// core.Options expects, or nil if the flag was not set: nil means "use the
// config file's list", matching config.Overrides' own nil-means-unset rule.
func (f *commonFlags) toCryptoLibraries() []string {
	if f.cryptoLibraries == "" {
		return nil
	}
	parts := strings.Split(f.cryptoLibraries, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p := strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toPID returns the CLI's pid flag as the nil-or-value form core.Options
// expects: 0 means "unset", since a real PID is always >= 1.
func (f *commonFlags) toPID() *uint32 {
	if f.pid <= 0 {
		return nil
	}
	v := uint32(f.pid)
	return &v
}

func (f *commonFlags) toOptions(command string, durationSeconds int, followChildren bool) core.Options {
	return core.Options{
		Command:          command,
		DurationSeconds:  durationSeconds,
		OutputPath:       f.outputPath,
		Format:           f.format,
		PID:              f.toPID(),
		ProcessName:      f.processName,
		LibrarySubstring: f.librarySubstring,
		FileGlob:         f.fileGlob,
		Verbose:          f.verbose,
		Quiet:            f.quiet,
		DisableRedaction: f.disableRedaction,
		FollowChildren:   followChildren,
		ConfigPath:       f.configPath,
		CryptoLibraries:  f.toCryptoLibraries(),
	}
}

// exitCode maps a core.ExitCategory to the process exit code the shell
// sees: success is 0 and every failure category is a distinct small
// positive integer (1 through 5, in category order). An unrecognized
// category maps to 1, the general failure code.
func exitCode(cat core.ExitCategory) int {
	switch cat {
	case core.ExitSuccess:
		return 0
	case core.ExitGeneral:
		return 1
	case core.ExitArgument:
		return 2
	case core.ExitInsufficientPrivilege:
		return 3
	case core.ExitKernelEnvironment:
		return 4
	case core.ExitProbeLoadingFailure:
		return 5
	default:
		return 1
	}
}

// Execute runs the CLI. Each subcommand exits the process itself with the
// mapped exit code of its run; Execute exits only when cobra itself fails
// (for example on an unknown flag), with the argument exit code.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(core.ExitArgument))
	}
}
