package cmd

import (
	"bufio"
	"strings"

	"github.com/qri-io/ioes"
	"github.com/spf13/cobra"

	"github.com/pacco-io/pacco/registry"
	"github.com/pacco-io/pacco/settings"
)

// NewRegistryCommand creates a `pacco registry` subcommand for working with
// the registries stored on a remote
func NewRegistryCommand(f Factory, ioStreams ioes.IOStreams) *cobra.Command {
	o := &RegistryOptions{IOStreams: ioStreams}
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "manage binary registries on a remote",
		Long: `A registry is a named collection of binaries sharing one set of
parameters. Every binary in a registry is addressed by a full assignment of
those parameters; see ` + "`pacco binary`" + ` for storing and fetching the
binaries themselves.`,
	}
	cmd.PersistentFlags().StringVarP(&o.Remote, "remote", "r", "", "remote to operate on (default: the configured default remote)")

	list := &cobra.Command{
		Use:   "list",
		Short: "list registries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.List()
		},
	}

	add := &cobra.Command{
		Use:   "add REGISTRY PARAMS",
		Short: "create a registry declaring its parameters",
		Example: `  # Create a registry for openssl builds:
  $ pacco registry add openssl os,compiler,version`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Add(args[0], args[1])
		},
	}

	del := &cobra.Command{
		Use:   "delete REGISTRY",
		Short: "delete a registry and every binary in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Delete(args[0])
		},
	}
	del.Flags().BoolVarP(&o.Force, "force", "f", false, "skip the confirmation prompt")

	binaries := &cobra.Command{
		Use:   "binaries REGISTRY",
		Short: "list the assignments of every binary in a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Binaries(args[0])
		},
	}

	paramList := &cobra.Command{
		Use:   "param_list REGISTRY",
		Short: "list a registry's parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.ParamList(args[0])
		},
	}

	paramAdd := &cobra.Command{
		Use:   "param_add REGISTRY PARAM DEFAULT",
		Short: "declare a new parameter, labeling existing binaries with DEFAULT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.ParamAdd(args[0], args[1], args[2])
		},
	}

	paramRemove := &cobra.Command{
		Use:   "param_remove REGISTRY PARAM",
		Short: "drop a parameter from a registry and its binaries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.ParamRemove(args[0], args[1])
		},
	}

	paramRename := &cobra.Command{
		Use:   "param_rename REGISTRY OLD NEW",
		Short: "rename a parameter, relabeling every binary",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.ParamRename(args[0], args[1], args[2])
		},
	}

	cmd.AddCommand(list, add, del, binaries, paramList, paramAdd, paramRemove, paramRename)
	return cmd
}

// RegistryOptions encapsulates state for the registry command & subcommands
type RegistryOptions struct {
	ioes.IOStreams

	Remote string
	Force  bool

	mgr   *registry.Manager
	input *bufio.Reader
}

// Complete adds any missing configuration that can only be added just before
// calling Run
func (o *RegistryOptions) Complete(f Factory) (err error) {
	o.input = bufio.NewReader(o.In)
	o.mgr, err = f.Manager(o.Remote)
	return
}

// List prints the names of all registries
func (o *RegistryOptions) List() error {
	names, err := o.mgr.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printInfo(o.Out, "no registries")
		return nil
	}
	for _, name := range names {
		printInfo(o.Out, "%s", name)
	}
	return nil
}

// Add creates a registry declaring the comma-separated parameter list
func (o *RegistryOptions) Add(name, params string) error {
	names, err := settings.ParseParams(params)
	if err != nil {
		return err
	}
	r, err := o.mgr.Add(name, names)
	if err != nil {
		return err
	}
	printSuccess(o.ErrOut, "created registry %q with parameters %s", name, strings.Join(r.Params(), ", "))
	return nil
}

// Delete removes a registry after confirmation, binaries included
func (o *RegistryOptions) Delete(name string) error {
	if !o.Force {
		msg := "deleting a registry removes every binary stored in it. continue?"
		if !confirm(o.Out, o.input, msg, false) {
			printInfo(o.Out, "delete aborted")
			return nil
		}
	}
	if err := o.mgr.Remove(name); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "deleted registry %q", name)
	return nil
}

// Binaries prints the assignment of every binary in a registry
func (o *RegistryOptions) Binaries(name string) error {
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	as, err := r.Assignments()
	if err != nil {
		return err
	}
	if len(as) == 0 {
		printInfo(o.Out, "registry %q has no binaries", name)
		return nil
	}
	for _, a := range as {
		printInfo(o.Out, "%s", a)
	}
	return nil
}

// ParamList prints a registry's parameters
func (o *RegistryOptions) ParamList(name string) error {
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	printInfo(o.Out, "%s", strings.Join(r.Params(), ","))
	return nil
}

// ParamAdd declares a new parameter on a registry
func (o *RegistryOptions) ParamAdd(name, param, defaultValue string) error {
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	if err := r.AddParam(param, defaultValue); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "added parameter %q to registry %q, existing binaries labeled %s=%s",
		param, name, param, defaultValue)
	return nil
}

// ParamRemove drops a parameter from a registry
func (o *RegistryOptions) ParamRemove(name, param string) error {
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	if err := r.RemoveParam(param); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "removed parameter %q from registry %q", param, name)
	return nil
}

// ParamRename renames a parameter on a registry
func (o *RegistryOptions) ParamRename(name, oldParam, newParam string) error {
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	if err := r.RenameParam(oldParam, newParam); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "renamed parameter %q to %q in registry %q", oldParam, newParam, name)
	return nil
}
