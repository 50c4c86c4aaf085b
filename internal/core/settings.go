package core

import (
	"github.com/cryptowatch/cryptowatch/internal/classify"
	"github.com/cryptowatch/cryptowatch/internal/config"
)

// loadSettings reads config.Settings from opts.ConfigPath, layers any
// CLI-supplied overrides on top (flags win over the config file, which
// wins over built-in defaults), and publishes the resulting crypto
// library whitelist to the classify package so both the event driver's
// acceptance stage and the snapshot scanner honor it.
func loadSettings(opts Options) (config.Settings, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return settings, err
	}

	overrides := config.Overrides{}
	if len(opts.CryptoLibraries) > 0 {
		overrides.CryptoLibraries = opts.CryptoLibraries
	}
	if opts.MetricsListen != "" {
		overrides.MetricsListen = &opts.MetricsListen
	}
	settings = config.ApplyOverrides(settings, overrides)

	classify.CanonicalLibraries = settings.CryptoLibraries
	return settings, nil
}
