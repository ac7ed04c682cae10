// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands shared by the TUI and REPL.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Env is what a command acts on.
type Env struct {
	Chat *chat.Orchestrator
	// Auth is optional; /logout still clears the chat without it.
	Auth *auth.Manager
}

// Result tells the front end what to do after a command.
type Result struct {
	// Output is shown to the user as a notice, not as a chat message.
	Output string
	// Quit ends the program.
	Quit bool
	// LoggedOut returns to the sign-in screen.
	LoggedOut bool
	// ShowSessions asks the TUI to open the session sidebar.
	ShowSessions bool
}

// Command is a slash command.
type Command struct {
	// Name is the primary name (e.g., "/new")
	Name string

	// Aliases are alternative names
	Aliases []string

	Description string

	// Usage shows argument syntax (e.g., "/select <n|id>")
	Usage string

	Args []ArgDef

	Handler func(ctx context.Context, env *Env, args []string) (Result, error)

	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name     string
	Required bool
	Type     ArgType
	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeSession                // Session number or id
	ArgTypeFile                   // File path
	ArgTypeEnum                   // One of Values
	ArgTypeSetting                // Settings key
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. Names are case-insensitive.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute validates and runs a parsed command.
func (r *Registry) Execute(ctx context.Context, env *Env, res ParseResult) (Result, error) {
	if !res.IsCommand {
		return Result{}, fmt.Errorf("not a command: %q", res.RawInput)
	}
	if res.Command == nil {
		return Result{}, fmt.Errorf("unknown command %s (try /help)", res.CommandName)
	}
	if err := ValidateArgs(res.Command, res.Args); err != nil {
		return Result{}, err
	}
	return res.Command.Handler(ctx, env, res.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Category:    "General",
		Handler: func(context.Context, *Env, []string) (Result, error) {
			return Result{Output: r.Help()}, nil
		},
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit gemclone",
		Category:    "General",
		Handler:     handleQuit,
	})

	r.Register(&Command{
		Name:        "/logout",
		Description: "Sign out and clear the screen",
		Category:    "General",
		Handler:     handleLogout,
	})

	// Sessions
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new chat",
		Category:    "Sessions",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list", "/ls"},
		Description: "List saved chats",
		Category:    "Sessions",
		Handler:     handleSessions,
	})

	r.Register(&Command{
		Name:        "/select",
		Aliases:     []string{"/open", "/load"},
		Description: "Open a saved chat",
		Usage:       "/select <n|id>",
		Args:        []ArgDef{{Name: "session", Required: true, Type: ArgTypeSession}},
		Category:    "Sessions",
		Handler:     handleSelect,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/rm"},
		Description: "Delete a saved chat",
		Usage:       "/delete <n|id>",
		Args:        []ArgDef{{Name: "session", Required: true, Type: ArgTypeSession}},
		Category:    "Sessions",
		Handler:     handleDelete,
	})

	r.Register(&Command{
		Name:        "/search",
		Aliases:     []string{"/find"},
		Description: "Search saved chats",
		Usage:       "/search <text>",
		Args:        []ArgDef{{Name: "query", Required: true, Type: ArgTypeString}},
		Category:    "Sessions",
		Handler:     handleSearch,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Show the current chat as markdown, json or yaml",
		Usage:       "/export [md|json|yaml]",
		Args:        []ArgDef{{Name: "format", Type: ArgTypeEnum, Values: []string{"md", "json", "yaml"}}},
		Category:    "Sessions",
		Handler:     handleExport,
	})

	// Settings
	r.Register(&Command{
		Name:        "/settings",
		Description: "Show current settings",
		Category:    "Settings",
		Handler:     handleSettings,
	})

	r.Register(&Command{
		Name:        "/set",
		Description: "Change a setting",
		Usage:       "/set <key> <value>",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeSetting},
			{Name: "value", Required: true, Type: ArgTypeString},
		},
		Category: "Settings",
		Handler:  handleSet,
	})

	r.Register(&Command{
		Name:        "/think",
		Description: "Toggle thinking mode",
		Category:    "Settings",
		Handler:     handleThink,
	})

	// Input
	r.Register(&Command{
		Name:        "/stop",
		Description: "Stop the reply in progress",
		Category:    "Input",
		Handler:     handleStop,
	})

	r.Register(&Command{
		Name:        "/attach",
		Description: "Note an attached file in the input",
		Usage:       "/attach <path>",
		Args:        []ArgDef{{Name: "path", Required: true, Type: ArgTypeFile}},
		Category:    "Input",
		Handler:     handleAttach,
	})

	r.Register(&Command{
		Name:        "/suggest",
		Description: "List starter prompts, or put one in the input",
		Usage:       "/suggest [n]",
		Args:        []ArgDef{{Name: "n", Type: ArgTypeEnum, Values: suggestionNumbers()}},
		Category:    "Input",
		Handler:     handleSuggest,
	})

	for _, a := range []struct {
		name    string
		aliases []string
		action  chat.PromptAction
		desc    string
	}{
		{"/image", nil, chat.ActionImage, "Start an image prompt"},
		{"/research", []string{"/deep"}, chat.ActionDeepResearch, "Start a deep research prompt"},
		{"/shop", nil, chat.ActionShopping, "Start a shopping prompt"},
		{"/study", nil, chat.ActionStudy, "Start a study plan prompt"},
		{"/web", []string{"/websearch"}, chat.ActionWebSearch, "Start a web search prompt"},
		{"/canvas", nil, chat.ActionCanvas, "Canvas (coming soon)"},
		{"/spotify", nil, chat.ActionSpotify, "Spotify (coming soon)"},
	} {
		r.Register(&Command{
			Name:        a.name,
			Aliases:     a.aliases,
			Description: a.desc,
			Category:    "Input",
			Handler:     promptAction(a.action),
		})
	}
}

// Help lists every command by category.
func (r *Registry) Help() string {
	groups := r.ByCategory()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(name + "\n")
		for _, cmd := range groups[name] {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&b, "  %-24s %s\n", usage, cmd.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// exportFormat reads the optional /export argument.
func exportFormat(args []string) (storage.Format, error) {
	if len(args) == 0 {
		return storage.FormatMarkdown, nil
	}
	return storage.ParseFormat(args[0])
}
