// Package console is the terminal side of notifications and confirmations.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"sharectl/internal/share"
)

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Console writes notifications to out and reads answers from in.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	fd          int
	interactive bool
	assumeYes   bool
}

var (
	_ share.Notifier  = (*Console)(nil)
	_ share.Confirmer = (*Console)(nil)
)

// New creates a Console. fd is the descriptor behind in, used for
// no-echo reads when it is a terminal.
func New(in io.Reader, out io.Writer, fd int) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		fd:          fd,
		interactive: isTerminal(fd),
	}
}

// Stdio creates a Console on the process's standard streams.
func Stdio() *Console {
	return New(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

// AssumeYes makes every confirmation succeed without prompting.
func (c *Console) AssumeYes(yes bool) *Console {
	c.assumeYes = yes
	return c
}

func (c *Console) Notify(message string) {
	fmt.Fprintln(c.out, message)
}

// Confirm asks a yes/no question. Without a terminal it declines unless
// AssumeYes is set.
func (c *Console) Confirm(prompt string) bool {
	if c.assumeYes {
		return true
	}
	if !c.interactive {
		return false
	}
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// ReadSecret reads one line without echo when attached to a terminal.
func (c *Console) ReadSecret(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if c.interactive {
		b, err := readPassword(c.fd)
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
