package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// setNoColor force-disables colorized output. When the flag is unset the
// fatih/color TTY auto-detection is left alone, so piped output stays free
// of escape codes.
func setNoColor(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

func printSuccess(w io.Writer, msg string, params ...interface{}) {
	fmt.Fprintln(w, color.New(color.FgGreen).Sprintf(msg, params...))
}

func printInfo(w io.Writer, msg string, params ...interface{}) {
	fmt.Fprintln(w, color.New(color.FgWhite).Sprintf(msg, params...))
}

func printWarning(w io.Writer, msg string, params ...interface{}) {
	fmt.Fprintln(w, color.New(color.FgYellow).Sprintf(msg, params...))
}

func printErr(w io.Writer, err error, params ...interface{}) {
	fmt.Fprintln(w, color.New(color.FgRed).Sprintf(err.Error(), params...))
}

// inputText prompts for a line of input, returning it with surrounding
// whitespace trimmed
func inputText(w io.Writer, in *bufio.Reader, message string) (string, error) {
	printInfo(w, message)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks the user a yes/no question, returning def when the answer is
// empty
func confirm(w io.Writer, in *bufio.Reader, message string, def bool) bool {
	yellow := color.New(color.FgYellow).SprintFunc()
	defaultText := "y/N"
	if def {
		defaultText = "Y/n"
	}
	fmt.Fprintf(w, "%s [%s]: ", yellow(message), defaultText)

	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return def
	}
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return def
	}
	return line == "y" || line == "yes"
}
