package config

import (
	"github.com/joeshaw/envdecode"
)

// Load decodes the configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	var cfg Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SnapshotSource reports which initial snapshot the configuration selects:
// "manifest", "dir", "demo" or "" for an empty store.
func (c *Config) SnapshotSource() string {
	switch {
	case c.Manifest != "":
		return "manifest"
	case c.DataDir != "":
		return "dir"
	case c.Demo:
		return "demo"
	}

	return ""
}
