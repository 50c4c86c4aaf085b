// Package config loads the host-level defaults that rarely change between
// invocations: the crypto library whitelist, pool capacity, and metrics
// listen address. Per-invocation options (duration, output format, filters) come
// from the CLI layer instead, via core.Options. Settings load from an
// optional YAML file layered over built-in defaults, then CLI flags may
// override individual fields.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the defaults a deployment may want to tune without
// touching the CLI invocation: which library substrings count as crypto
// libraries, and how large the event pool should be.
type Settings struct {
	PoolCapacity    int      `yaml:"pool_capacity"`
	CryptoLibraries []string `yaml:"crypto_libraries"`
	MetricsListen   string   `yaml:"metrics_listen"`
}

// Defaults returns the built-in settings: a pool capacity of 1000 and the
// canonical crypto library list.
func Defaults() Settings {
	return Settings{
		PoolCapacity: 1000,
		CryptoLibraries: []string{
			"libssl", "libcrypto", "libgnutls", "libsodium", "libnss3", "libmbedtls",
		},
	}
}

// Load reads path as YAML into a copy of Defaults(), so a config file only
// needs to specify the fields it overrides. A missing file is not an
// error: Load returns Defaults() unchanged, since the defaults alone are a
// complete, valid configuration.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return s, nil
}

// Overrides holds the subset of Settings a CLI flag may override. A nil
// field means "not specified on the command line"; ApplyOverrides leaves
// the corresponding Settings field untouched in that case. This gives
// flags strictly higher precedence than the config file, which in turn
// takes precedence over Defaults().
type Overrides struct {
	PoolCapacity    *int
	CryptoLibraries []string
	MetricsListen   *string
}

// ApplyOverrides layers o onto s and returns the result; s is not mutated.
func ApplyOverrides(s Settings, o Overrides) Settings {
	out := s
	if o.PoolCapacity != nil {
		out.PoolCapacity = *o.PoolCapacity
	}
	if o.CryptoLibraries != nil {
		out.CryptoLibraries = o.CryptoLibraries
	}
	if o.MetricsListen != nil {
		out.MetricsListen = *o.MetricsListen
	}
	return out
}
