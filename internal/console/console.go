// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EduAccess Contributors

// Package console implements the interactive text-menu front end.
//
// The console owns no credential state: every decision is delegated to
// the auth services, and the input source is an explicit value on the
// Console rather than ambient process state, so flows are testable with
// scripted input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/term"

	"github.com/eduaccess/eduaccess/internal/auth"
	"github.com/eduaccess/eduaccess/internal/observability"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Console drives the interactive menus over an explicit input source and
// output writer.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	credentials *auth.CredentialService
	admin       *auth.AdminService
	accounts    auth.AccountRepository
	hasher      auth.PasswordHasher
	metrics     *observability.Metrics
	logger      *slog.Logger

	// passwordReader returns one masked password. The default reads
	// from the controlling terminal without echo; tests replace it.
	passwordReader func() ([]byte, error)
}

// Options configures a Console. Metrics and Logger are optional.
type Options struct {
	Input       io.Reader
	Output      io.Writer
	Credentials *auth.CredentialService
	Admin       *auth.AdminService
	Accounts    auth.AccountRepository
	Hasher      auth.PasswordHasher
	Metrics     *observability.Metrics
	Logger      *slog.Logger

	// PasswordReader overrides masked terminal input, for tests and
	// non-terminal stdin.
	PasswordReader func() ([]byte, error)
}

// New creates a Console. Returns an error if a required dependency is nil.
func New(opts Options) (*Console, error) {
	if opts.Input == nil {
		return nil, oops.Errorf("input source is required")
	}
	if opts.Output == nil {
		return nil, oops.Errorf("output writer is required")
	}
	if opts.Credentials == nil {
		return nil, oops.Errorf("credential service is required")
	}
	if opts.Admin == nil {
		return nil, oops.Errorf("admin service is required")
	}
	if opts.Accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if opts.Hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Console{
		in:             bufio.NewReader(opts.Input),
		out:            opts.Output,
		credentials:    opts.Credentials,
		admin:          opts.Admin,
		accounts:       opts.Accounts,
		hasher:         opts.Hasher,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		passwordReader: opts.PasswordReader,
	}
	if c.passwordReader == nil {
		c.passwordReader = c.defaultPasswordReader
	}
	return c, nil
}

// defaultPasswordReader reads a masked password from the terminal, or a
// plain line when stdin is not a terminal (pipes, scripted runs).
func (c *Console) defaultPasswordReader() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := readPassword(fd)
		fmt.Fprintln(c.out)
		return pw, err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func (c *Console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt prints a label and reads one line of input, trimmed.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptRequired re-prompts until the input is non-empty.
func (c *Console) promptRequired(label string) (string, error) {
	for {
		value, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		c.println("This field is required. Please enter a value.")
	}
}

// promptPassword prints a label and reads one masked password.
// The returned buffer must be wiped by the caller.
func (c *Console) promptPassword(label string) ([]byte, error) {
	fmt.Fprint(c.out, label)
	return c.passwordReader()
}

// Run starts the top-level menu loop. It returns nil on a normal quit;
// storage errors during a single operation are reported and the menu
// continues.
func (c *Console) Run(ctx context.Context) error {
	c.printBanner()

	empty, err := c.accounts.IsEmpty(ctx)
	if err != nil {
		return oops.Code("CONSOLE_STARTUP_FAILED").
			With("operation", "check for empty store").
			Wrap(err)
	}
	if empty {
		if err := c.bootstrapAdmin(ctx); err != nil {
			return err
		}
	}

	for {
		c.println()
		c.println("+----------------------------------+")
		c.println("|            EDU ACCESS            |")
		c.println("+----------------------------------+")
		c.println("| Select an option:                |")
		c.println("| U - User Login/Registration      |")
		c.println("| A - Admin Access                 |")
		c.println("| Q - Quit System                  |")
		c.println("+----------------------------------+")

		choice, err := c.prompt("Enter your choice: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.ToUpper(choice) {
		case "U":
			c.userFlow(ctx)
		case "A":
			c.adminFlow(ctx)
		case "Q":
			c.println()
			c.println("Exiting. Goodbye!")
			return nil
		default:
			c.println()
			c.println("! Invalid choice. Please try again.")
		}
	}
}

func (c *Console) printBanner() {
	c.println("-----------------------------------")
	c.println("      Welcome to EDU ACCESS        ")
	c.println("-----------------------------------")
}

// reportError prints a user-facing message for an operation failure and
// logs the full error.
func (c *Console) reportError(msg string, err error) {
	c.println(msg)
	if oopsErr, ok := oops.AsOops(err); ok {
		c.logger.Error(msg,
			"code", oopsErr.Code(),
			"error", oopsErr.Error(),
		)
		return
	}
	c.logger.Error(msg, "error", err)
}
