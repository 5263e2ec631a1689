// Package cmd defines the CLI interface. It relies heavily on the
// spf13/cobra package: each command group gets a constructor taking a
// Factory and a set of IO streams, and an options struct holding the
// command's state. The core packages never print; everything user-facing
// funnels through the streams handed in here.
package cmd

import (
	"io"
	"os"

	golog "github.com/ipfs/go-log"
	"github.com/qri-io/ioes"
)

var log = golog.Logger("cmd")

const (
	// ExitCodeOK is a 0 exit code. success!
	ExitCodeOK = iota
	// ExitCodeErr is the generic error exit code, all surfaced errors
	// land here
	ExitCodeErr
)

// Execute runs the root command against os.Args. It is called by
// main.main() and only needs to happen once.
func Execute() {
	root := NewPaccoCommand(StandardPaccoPath(), ioes.NewStdIOStreams())
	// errors are printed below on our own; usage is still shown when
	// command-line arguments are missing
	root.SilenceUsage = true
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		ErrExit(os.Stderr, err)
	}
}

// ErrExit writes an error to the given io.Writer & exits
func ErrExit(w io.Writer, err error) {
	log.Debug(err.Error())
	printErr(w, err)
	os.Exit(ExitCodeErr)
}
