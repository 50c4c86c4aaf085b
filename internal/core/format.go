package core

import "github.com/cryptowatch/cryptowatch/internal/output"

// parseFormat maps the CLI-facing format name to output.Format. An unknown
// or empty name defaults to stream, the lowest-overhead shape, matching the
// teacher's printer default.
func parseFormat(name string) output.Format {
	switch name {
	case "array":
		return output.FormatArray
	case "pretty":
		return output.FormatPretty
	default:
		return output.FormatStream
	}
}
