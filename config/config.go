// Package config encapsulates pacco's configuration: the set of named
// remotes a user has registered and which of them is the default. The
// configuration is stored as a .yaml file; a missing file is an empty
// configuration, not an error.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Filename is the name of the configuration file inside the pacco directory
const Filename = "config.yaml"

// Config holds every registered remote plus the name of the default one
type Config struct {
	// Default names the remote used when a command doesn't select one.
	// Empty means the built-in local store.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	// Remotes maps remote names to their definitions
	Remotes map[string]*Remote `json:"remotes" yaml:"remotes"`
}

// DefaultConfig gives an empty configuration with no remotes registered
func DefaultConfig() *Config {
	return &Config{
		Remotes: map[string]*Remote{},
	}
}

// ReadFromFile reads a YAML configuration file from path. A missing file
// yields the default configuration.
func ReadFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %s", path, err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]*Remote{}
	}
	return cfg, nil
}

// WriteToFile encodes the configuration to YAML and writes it to path,
// creating parent directories as needed. The file carries credentials, so
// it is written user-readable only.
func (cfg *Config) WriteToFile(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0600)
}

// Validate validates every remote definition and the default-remote
// reference, returning the first error
func (cfg *Config) Validate() error {
	for name, rem := range cfg.Remotes {
		if rem == nil {
			return fmt.Errorf("remote %q has no definition", name)
		}
		if err := rem.Validate(); err != nil {
			return fmt.Errorf("remote %q: %s", name, err)
		}
	}
	if cfg.Default != "" {
		if _, ok := cfg.Remotes[cfg.Default]; !ok {
			return fmt.Errorf("default remote %q is not registered", cfg.Default)
		}
	}
	return nil
}

// Copy returns a deep copy of the Config struct
func (cfg *Config) Copy() *Config {
	res := &Config{
		Default: cfg.Default,
		Remotes: map[string]*Remote{},
	}
	for name, rem := range cfg.Remotes {
		res.Remotes[name] = rem.Copy()
	}
	return res
}
