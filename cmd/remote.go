package cmd

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"syscall"

	"github.com/qri-io/ioes"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/pacco-io/pacco/config"
	"github.com/pacco-io/pacco/storage"
)

// NewRemoteCommand creates a `pacco remote` subcommand for registering the
// storage locations pacco can talk to
func NewRemoteCommand(f Factory, ioStreams ioes.IOStreams) *cobra.Command {
	o := &RemoteOptions{IOStreams: ioStreams}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "manage the storage remotes pacco publishes binaries to",
		Long: `Remotes are the storage locations pacco reads binaries from and publishes
binaries to: a directory on this machine (` + "`local`" + `), or a nexus raw-hosted
site repository reachable over HTTP (` + "`nexus_site`" + `).

Commands that take a --remote flag use the default remote when the flag is
omitted. With no default configured, pacco uses a local store inside the
pacco directory.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "list registered remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.List()
		},
	}

	add := &cobra.Command{
		Use:   "add NAME TYPE",
		Short: "register a new remote",
		Long: `Add registers a storage location under NAME. TYPE selects the backend:
` + "`local`" + ` or ` + "`nexus_site`" + `. Location and credentials are read from flags
when given, and prompted for otherwise.`,
		Example: `  # Register a shared team repository:
  $ pacco remote add team nexus_site --url http://repo.example.com/pacco/

  # Register a scratch directory:
  $ pacco remote add scratch local --path /tmp/pacco`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Add(args[0], args[1])
		},
	}
	add.Flags().StringVar(&o.Path, "path", "", "directory of a local remote")
	add.Flags().StringVar(&o.URL, "url", "", "base URL of a nexus_site remote, trailing slash included")
	add.Flags().StringVar(&o.Username, "username", "", "username for a nexus_site remote")
	add.Flags().StringVar(&o.Password, "password", "", "password for a nexus_site remote")

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "unregister a remote",
		Long: `Remove unregisters a remote from the configuration. Binaries stored on
the remote are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Remove(args[0])
		},
	}

	setDefault := &cobra.Command{
		Use:   "set_default NAME",
		Short: "select the remote used when --remote is omitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.SetDefault(args[0])
		},
	}

	listDefault := &cobra.Command{
		Use:   "list_default",
		Short: "show the default remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.ListDefault()
		},
	}

	cmd.AddCommand(list, add, remove, setDefault, listDefault)
	return cmd
}

// RemoteOptions encapsulates state for the remote command & subcommands
type RemoteOptions struct {
	ioes.IOStreams

	Path     string
	URL      string
	Username string
	Password string

	factory Factory
	input   *bufio.Reader
}

// Complete adds any missing configuration that can only be added just before
// calling Run
func (o *RemoteOptions) Complete(f Factory) error {
	o.factory = f
	o.input = bufio.NewReader(o.In)
	return nil
}

// List prints every registered remote
func (o *RemoteOptions) List() error {
	cfg, err := o.factory.Config()
	if err != nil {
		return err
	}
	if len(cfg.Remotes) == 0 {
		printInfo(o.Out, "no registered remotes")
		return nil
	}

	names := make([]string, 0, len(cfg.Remotes))
	for name := range cfg.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rem := cfg.Remotes[name]
		location := rem.URL
		if rem.Type == config.RemoteTypeLocal {
			location = rem.Path
			if location == "" {
				location = "(default pacco directory)"
			}
		}
		marker := " "
		if name == cfg.Default {
			marker = "*"
		}
		printInfo(o.Out, "%s %s\t%s\t%s", marker, name, rem.Type, location)
	}
	return nil
}

// Add registers a new remote, prompting for whatever the flags didn't
// provide
func (o *RemoteOptions) Add(name, remoteType string) error {
	cfg, err := o.factory.Config()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; ok {
		return fmt.Errorf("remote %q already exists: %w", name, storage.ErrExists)
	}

	rem := &config.Remote{Type: remoteType}
	switch remoteType {
	case config.RemoteTypeLocal:
		rem.Path = o.Path
		if rem.Path == "" {
			if rem.Path, err = inputText(o.Out, o.input, "path (empty for the default pacco directory):"); err != nil {
				return err
			}
		}
	case config.RemoteTypeNexus:
		rem.URL = o.URL
		if rem.URL == "" {
			if rem.URL, err = inputText(o.Out, o.input, "url:"); err != nil {
				return err
			}
		}
		rem.Username = o.Username
		if rem.Username == "" {
			if rem.Username, err = inputText(o.Out, o.input, "username:"); err != nil {
				return err
			}
		}
		rem.Password = o.Password
		if rem.Password == "" {
			if rem.Password, err = o.PromptForPassword(); err != nil {
				return err
			}
		}
		// catch malformed URLs before they're persisted
		if _, err := storage.NewNexus(rem.URL, rem.Username, rem.Password); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unrecognized remote type %q, expected %q or %q",
			remoteType, config.RemoteTypeLocal, config.RemoteTypeNexus)
	}

	updated := cfg.Copy()
	updated.Remotes[name] = rem
	if err := o.factory.SaveConfig(updated); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "registered remote %q", name)
	return nil
}

// Remove unregisters a remote, clearing the default if it pointed there
func (o *RemoteOptions) Remove(name string) error {
	cfg, err := o.factory.Config()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; !ok {
		return fmt.Errorf("remote %q is not registered: %w", name, storage.ErrNotFound)
	}

	updated := cfg.Copy()
	delete(updated.Remotes, name)
	wasDefault := updated.Default == name
	if wasDefault {
		updated.Default = ""
	}
	if err := o.factory.SaveConfig(updated); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "removed remote %q", name)
	if wasDefault {
		printWarning(o.ErrOut, "%q was the default remote; commands fall back to the local pacco directory until a new default is set", name)
	}
	return nil
}

// SetDefault selects the remote used when --remote is omitted
func (o *RemoteOptions) SetDefault(name string) error {
	cfg, err := o.factory.Config()
	if err != nil {
		return err
	}
	if _, ok := cfg.Remotes[name]; !ok {
		return fmt.Errorf("remote %q is not registered: %w", name, storage.ErrNotFound)
	}

	updated := cfg.Copy()
	updated.Default = name
	if err := o.factory.SaveConfig(updated); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "default remote set to %q", name)
	return nil
}

// ListDefault shows the default remote
func (o *RemoteOptions) ListDefault() error {
	cfg, err := o.factory.Config()
	if err != nil {
		return err
	}
	if cfg.Default == "" {
		printInfo(o.Out, "no default remote set, using the local pacco directory")
		return nil
	}
	printInfo(o.Out, "%s", cfg.Default)
	return nil
}

// PromptForPassword will prompt the user for a password without echoing it
// to the screen
func (o *RemoteOptions) PromptForPassword() (string, error) {
	io.WriteString(o.Out, "password: ")
	bytePassword, err := terminal.ReadPassword(int(syscall.Stdin))
	io.WriteString(o.Out, "\n")
	if err != nil {
		// Reading from a string buffer fails with one of these errors,
		// depending on operating system
		// "inappropriate ioctl for device"
		// "operation not supported by device"
		if strings.Contains(err.Error(), "device") {
			bytePassword, err = ioutil.ReadAll(o.In)
		} else {
			return "", err
		}
	}
	return strings.TrimSpace(string(bytePassword)), nil
}
