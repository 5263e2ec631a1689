package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/qri-io/ioes"
	"github.com/spf13/cobra"

	"github.com/pacco-io/pacco/registry"
	"github.com/pacco-io/pacco/settings"
	"github.com/pacco-io/pacco/storage"
)

// NewBinaryCommand creates a `pacco binary` subcommand for moving binaries in
// and out of registries
func NewBinaryCommand(f Factory, ioStreams ioes.IOStreams) *cobra.Command {
	o := &BinaryOptions{IOStreams: ioStreams}
	cmd := &cobra.Command{
		Use:   "binary",
		Short: "upload, download and manage binaries",
		Long: `Binaries are addressed by a full assignment of their registry's
parameters, written as comma-separated key=value pairs:

  os=linux,compiler=gcc,version=1.0

Every parameter the registry declares must be assigned, no more, no less.`,
	}
	cmd.PersistentFlags().StringVarP(&o.Remote, "remote", "r", "", "remote to operate on (default: the configured default remote)")
	cmd.PersistentFlags().StringVarP(&o.Settings, "settings", "s", "", "assignment of the binary as key=value pairs")

	upload := &cobra.Command{
		Use:   "upload REGISTRY FILE",
		Short: "store a file as the binary for an assignment",
		Long: `Upload stores FILE under the given assignment, registering the binary
first if the assignment is new. An existing payload is replaced wholesale.`,
		Example: `  $ pacco binary upload openssl ./openssl.tar.gz -s os=linux,compiler=gcc,version=1.0`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Upload(args[0], args[1])
		},
	}

	download := &cobra.Command{
		Use:   "download REGISTRY FILE",
		Short: "fetch the binary for an assignment into a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Download(args[0], args[1])
		},
	}

	remove := &cobra.Command{
		Use:   "remove REGISTRY",
		Short: "remove the binary for an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Remove(args[0])
		},
	}

	reassign := &cobra.Command{
		Use:   "reassign REGISTRY",
		Short: "move a binary to a different assignment",
		Long: `Reassign relabels the binary at --settings with the assignment given by
--to, keeping the stored payload.`,
		Example: `  $ pacco binary reassign openssl -s os=linux,compiler=gcc,version=1.0 --to os=linux,compiler=gcc,version=1.1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(f); err != nil {
				return err
			}
			return o.Reassign(args[0])
		},
	}
	reassign.Flags().StringVar(&o.To, "to", "", "new assignment as key=value pairs")
	reassign.MarkFlagRequired("to")

	cmd.AddCommand(upload, download, remove, reassign)
	return cmd
}

// BinaryOptions encapsulates state for the binary command & subcommands
type BinaryOptions struct {
	ioes.IOStreams

	Remote   string
	Settings string
	To       string

	mgr *registry.Manager
}

// Complete adds any missing configuration that can only be added just before
// calling Run
func (o *BinaryOptions) Complete(f Factory) (err error) {
	o.mgr, err = f.Manager(o.Remote)
	return
}

// assignment parses the --settings flag, which every binary subcommand needs
func (o *BinaryOptions) assignment() (settings.Assignment, error) {
	if o.Settings == "" {
		return nil, fmt.Errorf("an assignment is required, pass one with --settings: %w", settings.ErrInvalidFormat)
	}
	return settings.ParseAssignment(o.Settings)
}

// Upload stores a file under an assignment, registering the binary if needed
func (o *BinaryOptions) Upload(name, file string) error {
	a, err := o.assignment()
	if err != nil {
		return err
	}
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}

	b, err := r.GetBinary(a)
	if errors.Is(err, storage.ErrNotFound) {
		b, err = r.AddBinary(a)
	}
	if err != nil {
		return err
	}

	src, err := os.Open(file)
	if err != nil {
		return err
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return err
	}
	if err := b.Upload(src); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "uploaded %s (%s) to %s as %s", file, humanize.Bytes(uint64(fi.Size())), name, a)
	return nil
}

// Download fetches the binary for an assignment into a local file
func (o *BinaryOptions) Download(name, file string) error {
	a, err := o.assignment()
	if err != nil {
		return err
	}
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	b, err := r.GetBinary(a)
	if err != nil {
		return err
	}

	dest, err := os.Create(file)
	if err != nil {
		return err
	}
	defer dest.Close()

	if err := b.Download(dest); err != nil {
		return err
	}
	fi, err := dest.Stat()
	if err != nil {
		return err
	}
	printSuccess(o.ErrOut, "downloaded %s (%s) from %s", file, humanize.Bytes(uint64(fi.Size())), name)
	return nil
}

// Remove deletes the binary for an assignment, payload included
func (o *BinaryOptions) Remove(name string) error {
	a, err := o.assignment()
	if err != nil {
		return err
	}
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	if err := r.RemoveBinary(a); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "removed %s from %s", a, name)
	return nil
}

// Reassign relabels a binary with a new assignment, keeping its payload
func (o *BinaryOptions) Reassign(name string) error {
	old, err := o.assignment()
	if err != nil {
		return err
	}
	to, err := settings.ParseAssignment(o.To)
	if err != nil {
		return err
	}
	r, err := o.mgr.Get(name)
	if err != nil {
		return err
	}
	if err := r.ReassignBinary(old, to); err != nil {
		return err
	}
	printSuccess(o.ErrOut, "reassigned %s to %s in %s", old, to, name)
	return nil
}
