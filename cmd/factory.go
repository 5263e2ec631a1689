package cmd

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/pacco-io/pacco/config"
	"github.com/pacco-io/pacco/registry"
)

// Factory is an interface for providing required structures to commands.
// Its main implementation is PaccoOptions.
type Factory interface {
	// Config loads the remotes configuration
	Config() (*config.Config, error)
	// SaveConfig validates and persists a configuration
	SaveConfig(*config.Config) error
	// Manager opens the registry collection on the named remote. An
	// empty name selects the configured default, falling back to the
	// built-in local store.
	Manager(remote string) (*registry.Manager, error)
	// PaccoPath is the pacco data directory
	PaccoPath() string
}

// StandardPaccoPath returns the pacco directory based on the PACCO_PATH
// environment variable, falling back to the default: $HOME/.pacco
func StandardPaccoPath() string {
	path := os.Getenv("PACCO_PATH")
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			panic(err)
		}
		path = filepath.Join(home, ".pacco")
	}
	return path
}
