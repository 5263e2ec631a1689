package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/qri-io/ioes"
	"github.com/spf13/cobra"

	"github.com/pacco-io/pacco/config"
	"github.com/pacco-io/pacco/registry"
	"github.com/pacco-io/pacco/storage"
)

// NewPaccoCommand represents the base command when called without any
// subcommands
func NewPaccoCommand(path string, ioStreams ioes.IOStreams) *cobra.Command {
	opt := NewPaccoOptions(path, ioStreams)
	cmd := &cobra.Command{
		Use:   "pacco",
		Short: "pacco binary package registry CLI",
		Long: `pacco stores and retrieves prebuilt binaries, addressed by a full
assignment of configuration settings (os=linux, compiler=gcc, version=1.0)
instead of by filename. Registries live in a local directory or on a remote
nexus site; register remotes with ` + "`pacco remote add`" + `.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setNoColor(opt.NoColor)
		},
	}

	cmd.PersistentFlags().BoolVar(&opt.NoColor, "no-color", false, "disable colorized output")

	cmd.AddCommand(
		NewRemoteCommand(opt, ioStreams),
		NewRegistryCommand(opt, ioStreams),
		NewBinaryCommand(opt, ioStreams),
	)

	return cmd
}

// PaccoOptions holds the root command state and implements Factory
type PaccoOptions struct {
	ioes.IOStreams

	// path to the pacco directory
	path string
	// NoColor disables colorized output
	NoColor bool

	cfg *config.Config
}

// NewPaccoOptions creates an options object
func NewPaccoOptions(path string, ioStreams ioes.IOStreams) *PaccoOptions {
	return &PaccoOptions{
		IOStreams: ioStreams,
		path:      path,
	}
}

// PaccoPath is the pacco data directory
func (o *PaccoOptions) PaccoPath() string {
	return o.path
}

// ConfigPath is the location of the remotes configuration file
func (o *PaccoOptions) ConfigPath() string {
	return filepath.Join(o.path, config.Filename)
}

// Config loads the remotes configuration, reading it at most once per
// process
func (o *PaccoOptions) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.ReadFromFile(o.ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration at %s: %s", o.ConfigPath(), err)
	}
	o.cfg = cfg
	return cfg, nil
}

// SaveConfig validates and persists cfg as the active configuration
func (o *PaccoOptions) SaveConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.WriteToFile(o.ConfigPath()); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// Manager opens the registry collection stored on the named remote
func (o *PaccoOptions) Manager(remote string) (*registry.Manager, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	if remote == "" {
		remote = cfg.Default
	}
	if remote == "" {
		// no remote selected or configured: the built-in local store
		store, err := storage.NewLocal(filepath.Join(o.path, "registries"))
		if err != nil {
			return nil, err
		}
		return registry.NewManager(store), nil
	}

	rem, ok := cfg.Remotes[remote]
	if !ok {
		return nil, fmt.Errorf("remote %q is not registered: %w", remote, storage.ErrNotFound)
	}

	var store storage.Backend
	switch rem.Type {
	case config.RemoteTypeLocal:
		path := rem.Path
		if path == "" {
			path = filepath.Join(o.path, "registries")
		}
		store, err = storage.NewLocal(path)
	case config.RemoteTypeNexus:
		store, err = storage.NewNexus(rem.URL, rem.Username, rem.Password)
	default:
		return nil, fmt.Errorf("remote %q has unrecognized type %q", remote, rem.Type)
	}
	if err != nil {
		return nil, err
	}
	return registry.NewManager(store), nil
}
