// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/transport"
	"github.com/jeranaias/gemclone/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// DefaultSignInDelay simulates the round trip of a sign-in.
const DefaultSignInDelay = time.Second

// Options holds the process streams and the seams tests replace.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Provider replaces the configured chat backend.
	Provider transport.Provider

	// SignInDelay overrides DefaultSignInDelay. Negative disables the delay.
	SignInDelay time.Duration
}

func (o *Options) fillDefaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

func (o Options) signInDelay() time.Duration {
	switch {
	case o.SignInDelay < 0:
		return 0
	case o.SignInDelay == 0:
		return DefaultSignInDelay
	default:
		return o.SignInDelay
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	email      string
	logLevel   string
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	opts.fillDefaults()

	root := NewRootCmd(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(opts.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
	return ExitCode(err)
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts Options) *cobra.Command {
	opts.fillDefaults()
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "gemclone",
		Short: "A terminal chat client for Gemini",
		Long: `gemclone is a terminal chat client for the Gemini API.

Run without arguments to open the full-screen interface. When input or output
is not a terminal, gemclone reads messages line by line instead.

Configuration is read from ~/.gemclone/config.toml. The API key may also come
from GEMINI_API_KEY.`,
		Args:          noArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isTerminal(opts.Stdin) && isTerminal(opts.Stdout) {
				return runTUI(cmd.Context(), flags, opts)
			}
			return runREPL(cmd.Context(), flags, opts, true)
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.gemclone/config.toml)")
	pf.StringVar(&flags.email, "email", "", "sign in with this email address")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newChatCmd(flags, opts),
		newSessionsCmd(flags, opts),
		newSettingsCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// =============================================================================
// ARGUMENT VALIDATION
// =============================================================================

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// =============================================================================
// CHAT
// =============================================================================

func newChatCmd(flags *globalFlags, opts Options) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line",
		Long: `Chat in line mode. Replies are rendered as Markdown once complete, or
streamed as raw text with --plain. Output that is not a terminal is always plain.

Type /help for the slash commands. Ctrl+C stops a reply, Ctrl+D quits.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd.Context(), flags, opts, plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "stream raw text instead of rendered Markdown")
	return cmd
}

func runTUI(ctx context.Context, flags *globalFlags, opts Options) (err error) {
	app, err := newApp(flags, opts)
	if err != nil {
		return err
	}
	defer app.closeInto(&err)

	var user *auth.User
	if flags.email != "" {
		u, err := app.Auth.LoginEmail(ctx, flags.email)
		if err != nil {
			return err
		}
		user = &u
	}

	return app.run(ctx, func(ctx context.Context) error {
		return ui.Run(ctx, ui.Options{Chat: app.Chat, Auth: app.Auth, User: user, Logger: app.Log})
	})
}

func runREPL(ctx context.Context, flags *globalFlags, opts Options, plain bool) (err error) {
	app, err := newApp(flags, opts)
	if err != nil {
		return err
	}
	defer app.closeInto(&err)

	interactive := isTerminal(opts.Stdin) && isTerminal(opts.Stdout)
	var in lineReader
	if interactive {
		in = newLinerReader(app.historyPath())
	} else {
		in = newScanReader(opts.Stdin)
	}
	defer in.Close()

	r := newREPL(app, in, opts.Stdout, plain || !isTerminal(opts.Stdout))
	r.email = flags.email
	return app.run(ctx, r.run)
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gemclone %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
