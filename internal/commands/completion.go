// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and REPL.
package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/gemclone/internal/settings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer completes command names and argument values.
type Completer struct {
	registry *Registry

	// SessionsFn returns session ids for session arguments. Optional.
	SessionsFn func() []string
}

// NewCompleter creates a completer over registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns full-line completions for input, sorted. Non-command
// input has none.
func (c *Completer) Complete(input string) []string {
	if !IsCommand(input) {
		return nil
	}
	trimmed := strings.TrimLeft(input, " \t")

	parts := splitCommandLine(trimmed)
	if len(parts) <= 1 && !strings.HasSuffix(trimmed, " ") {
		prefix := ""
		if len(parts) == 1 {
			prefix = strings.ToLower(parts[0])
		}
		return c.completeNames(prefix)
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := parts[len(parts)-1]
	if strings.HasSuffix(trimmed, " ") {
		argIndex++
		partial = ""
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	head := trimmed[:len(trimmed)-len(partial)]
	var out []string
	for _, v := range c.argValues(cmd.Args[argIndex]) {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(partial)) {
			out = append(out, head+v)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Completer) completeNames(prefix string) []string {
	var out []string
	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, prefix) {
			out = append(out, cmd.Name)
		}
	}
	return out
}

func (c *Completer) argValues(def ArgDef) []string {
	switch def.Type {
	case ArgTypeEnum:
		return def.Values
	case ArgTypeSetting:
		return settings.Keys
	case ArgTypeSession:
		if c.SessionsFn != nil {
			return c.SessionsFn()
		}
	}
	return nil
}
