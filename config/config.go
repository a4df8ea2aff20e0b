// Package config loads the EC2SSH_* environment variable surface.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	homedir "github.com/mitchellh/go-homedir"
)

// Config is the full environment-driven configuration. All knobs are
// optional; the zero value plus the home-directory default is a working
// setup using private addresses and the console key source.
type Config struct {
	// PublicIP selects the instance's public address instead of the
	// private one (EC2SSH_PUBLIC_IP=1).
	PublicIP bool `envconfig:"PUBLIC_IP"`

	// PubkeyDir is the directory caching per-instance known-hosts files
	// (EC2SSH_PUBKEY_DIR). Defaults to ~/.ec2ssh.
	PubkeyDir string `envconfig:"PUBKEY_DIR"`

	// PubkeyBucket names the S3 bucket instances write their host keys to
	// at boot (EC2SSH_PUBKEY_BUCKET). When set, the S3 key source is used;
	// otherwise the tool falls back to the EC2 console output.
	PubkeyBucket string `envconfig:"PUBKEY_BUCKET"`

	// Debug enables diagnostic logging to stderr (EC2SSH_DEBUG=1).
	Debug bool `envconfig:"DEBUG"`
}

// Load reads the EC2SSH_* environment variables and applies defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ec2ssh", &cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}

	if cfg.PubkeyDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		cfg.PubkeyDir = filepath.Join(home, ".ec2ssh")
	}

	return &cfg, nil
}
