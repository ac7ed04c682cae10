// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
//
// The root command opens the full-screen TUI when stdin and stdout are
// terminals and falls back to the line-mode REPL otherwise. Subcommands
// manage stored sessions, chat settings and the configuration file without
// starting a chat.
//
// # Key Types
//
//   - Options: process streams and test seams
//   - App: the wired orchestrator, store, settings file and logger
//
// # Usage
//
//	os.Exit(cli.Execute(ctx, os.Args[1:], cli.Options{}))
//
// # Commands Overview
//
//   - gemclone: TUI or REPL
//   - chat [--plain]: line-mode REPL
//   - sessions list|show|delete|export
//   - settings show|set|reset
//   - config show|init
//   - version
package cli
