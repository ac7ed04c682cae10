// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and the
// line-mode REPL.
//
// Commands act on a chat.Orchestrator and return text for the caller to
// show. They never print directly, so both front ends can run them.
//
// # Key Types
//
//   - Registry: command registry with all built-in commands
//   - Parser / ParseResult: split "/cmd args" input
//   - Completer: tab completion for command names and enum arguments
//   - Env / Result: what a command acts on and what it asks the UI to do
//
// # Built-in Commands
//
//   - /new, /sessions, /select, /delete, /search, /export: sessions
//   - /settings, /set, /think: settings
//   - /attach, /image, /research, /shop, /study, /web: input helpers
//   - /stop, /logout, /help, /quit
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := commands.NewParser(reg).Parse(line)
//	if res.IsCommand {
//	    out, err := reg.Execute(ctx, env, res)
//	    ...
//	}
package commands
