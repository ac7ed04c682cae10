// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/gemclone/internal/settings"
)

func newSettingsCmd(flags *globalFlags) *cobra.Command {
	show := func(cmd *cobra.Command, args []string) error {
		fs, err := settingsFile(flags)
		if err != nil {
			return err
		}
		s, err := fs.Load()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			v, err := s.Get(args[0])
			if err != nil {
				return &UsageError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), s.Format())
		return nil
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change chat settings",
		Long: `Show or change the chat settings file (~/.gemclone/settings.toml).

A running gemclone picks up changes made here. Keys:
  ` + strings.Join(settings.Keys, "\n  "),
		Args: noArgs,
		RunE: show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [key]",
		Short: "Print every setting, or one value",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageErrorf("accepts at most 1 arg, received %d", len(args))
			}
			return nil
		},
		RunE: show,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := settingsFile(flags)
			if err != nil {
				return err
			}
			s, err := fs.Load()
			if err != nil {
				return err
			}
			value := strings.Join(args[1:], " ")
			if err := s.Set(args[0], value); err != nil {
				return &UsageError{Err: err}
			}
			if err := fs.Save(s); err != nil {
				return err
			}
			v, _ := s.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", strings.ToLower(args[0]), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs, err := settingsFile(flags)
			if err != nil {
				return err
			}
			if err := fs.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Settings reset to defaults."))
			return nil
		},
	})
	return cmd
}

func settingsFile(flags *globalFlags) (*settings.FileStore, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return settings.NewFileStore(cfg.Settings.Path), nil
}
