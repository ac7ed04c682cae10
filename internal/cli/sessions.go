// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/gemclone/internal/commands"
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/storage"
)

// =============================================================================
// SESSION MANAGEMENT COMMANDS
// =============================================================================

func newSessionsCmd(flags *globalFlags, opts Options) *cobra.Command {
	list := func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, flags, opts, func(ctx context.Context, app *App) error {
			sessions, err := app.Chat.Sessions(ctx)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(storage.FormatSessionList(sessions), "\n"))
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage stored chat sessions",
		Long: `List, show, delete and export stored chat sessions.

A session may be named by its list number, its id, or a unique id prefix.`,
		Args: noArgs,
		RunE: list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions, newest first",
		Args:    noArgs,
		RunE:    list,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session>",
		Short: "Print a session as Markdown",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, opts, args[0], func(_ context.Context, _ *App, s model.ChatSession) error {
				return storage.Export(cmd.OutOrStdout(), s, storage.FormatMarkdown)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <session>",
		Aliases: []string{"rm"},
		Short:   "Delete a session",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, opts, args[0], func(ctx context.Context, app *App, s model.ChatSession) error {
				if err := app.Chat.DeleteSession(ctx, s.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%s)\n", s.Title, s.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(newExportCmd(flags, opts))
	return cmd
}

func newExportCmd(flags *globalFlags, opts Options) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <session>",
		Short: "Export a session as Markdown, JSON or YAML",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := storage.ParseFormat(format)
			if err != nil {
				return &UsageError{Err: err}
			}
			return withSession(cmd, flags, opts, args[0], func(_ context.Context, _ *App, s model.ChatSession) error {
				return exportTo(cmd.OutOrStdout(), output, s, f)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(storage.FormatMarkdown), "md, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func exportTo(stdout io.Writer, path string, s model.ChatSession, f storage.Format) error {
	if path == "" {
		return storage.Export(stdout, s, f)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := storage.Export(file, s, f); err != nil {
		file.Close()
		return fmt.Errorf("failed to export session: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported %q to %s\n", s.Title, path)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func withApp(cmd *cobra.Command, flags *globalFlags, opts Options, fn func(context.Context, *App) error) (err error) {
	app, err := newApp(flags, opts)
	if err != nil {
		return err
	}
	defer app.closeInto(&err)
	return fn(cmd.Context(), app)
}

// withSession resolves ref the way /select does and loads the session.
func withSession(cmd *cobra.Command, flags *globalFlags, opts Options, ref string, fn func(context.Context, *App, model.ChatSession) error) error {
	return withApp(cmd, flags, opts, func(ctx context.Context, app *App) error {
		id, err := commands.ResolveSession(ctx, app.Chat, ref)
		if err != nil {
			return err
		}
		s, err := app.Store.Get(ctx, id)
		if err != nil {
			return err
		}
		return fn(ctx, app, s)
	})
}
