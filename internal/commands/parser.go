// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and REPL.
package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult is the result of parsing one line of input.
type ParseResult struct {
	// IsCommand is true if the input starts with /
	IsCommand bool

	// Command is nil when the name is not registered
	Command *Command

	// CommandName is the raw command name (e.g., "/select")
	CommandName string

	Args []string

	RawInput string

	// RawArgs is everything after the command name, unsplit
	RawArgs string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser resolves slash commands against a registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser over registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses one line. IsCommand is false unless it starts with /.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	if !IsCommand(input) {
		return result
	}
	result.IsCommand = true

	name := ExtractCommandName(input)
	result.CommandName = name
	result.RawArgs = strings.TrimSpace(input[len(name):])
	result.Args = splitCommandLine(result.RawArgs)
	result.Command = p.registry.Get(name)
	return result
}

// splitCommandLine splits on whitespace, honoring single and double quotes.
// Inside quotes a backslash escapes a quote or another backslash.
func splitCommandLine(input string) []string {
	var (
		tokens       []string
		current      strings.Builder
		quote        rune
		inToken      bool
		escapeActive bool
	)

	for _, r := range input {
		switch {
		case escapeActive:
			if r != '"' && r != '\'' && r != '\\' {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			escapeActive = false

		case quote != 0 && r == '\\':
			escapeActive = true

		case quote != 0 && r == quote:
			quote = 0

		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			inToken = true

		case quote == 0 && unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}

		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if escapeActive {
		current.WriteRune('\\')
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// IsCommand reports whether input looks like a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName returns the command word, e.g. "/set model x" -> "/set".
func ExtractCommandName(input string) string {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
		return input[:end]
	}
	return input
}

// ValidateArgs checks required arguments and enum values.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	for i, def := range cmd.Args {
		if i >= len(args) {
			if def.Required {
				return &ValidationError{Command: cmd.Name, Arg: def.Name, Message: "required argument missing", Expected: cmd.Usage}
			}
			continue
		}
		if def.Type != ArgTypeEnum || len(def.Values) == 0 {
			continue
		}
		valid := false
		for _, v := range def.Values {
			if strings.EqualFold(args[i], v) {
				valid = true
				break
			}
		}
		if !valid {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      def.Name,
				Message:  "invalid value",
				Got:      args[i],
				Expected: strings.Join(def.Values, ", "),
			}
		}
	}
	return nil
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError is an argument validation failure.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}
