// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/storage"
	"github.com/jeranaias/gemclone/internal/transport"
	"github.com/jeranaias/gemclone/internal/transport/transporttest"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/set model x", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		if got := IsCommand(tc.input); got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/set model x", "/set"},
		{"  /new  ", "/new"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		if got := ExtractCommandName(tc.input); got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a b  c", []string{"a", "b", "c"}},
		{`custom_system_instruction "Answer in French."`, []string{"custom_system_instruction", "Answer in French."}},
		{`'single quoted' x`, []string{"single quoted", "x"}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`""`, []string{""}},
		{`path\to\file`, []string{`path\to\file`}},
	}

	for _, tc := range tests {
		got := splitCommandLine(tc.input)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("splitCommandLine(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

func TestParse(t *testing.T) {
	p := NewParser(NewRegistry())

	res := p.Parse(`  /SET personality strict `)
	require.True(t, res.IsCommand)
	require.NotNil(t, res.Command)
	require.Equal(t, "/set", res.Command.Name)
	require.Equal(t, []string{"personality", "strict"}, res.Args)
	require.Equal(t, "personality strict", res.RawArgs)

	res = p.Parse("/ls")
	require.Equal(t, "/sessions", res.Command.Name)

	res = p.Parse("/bogus")
	require.True(t, res.IsCommand)
	require.Nil(t, res.Command)

	res = p.Parse("plain text")
	require.False(t, res.IsCommand)
}

func TestValidateArgs(t *testing.T) {
	reg := NewRegistry()

	err := ValidateArgs(reg.Get("/select"), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "session", verr.Arg)

	require.Error(t, ValidateArgs(reg.Get("/export"), []string{"pdf"}))
	require.NoError(t, ValidateArgs(reg.Get("/export"), []string{"JSON"}))
	require.NoError(t, ValidateArgs(reg.Get("/export"), nil))
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.SessionsFn = func() []string { return []string{"abc-1", "abd-2"} }

	tests := []struct {
		input string
		want  []string
	}{
		{"hello", nil},
		{"/se", []string{"/search", "/select", "/sessions", "/set", "/settings"}},
		{"/set temp", []string{"/set temperature"}},
		{"/set thinking", []string{"/set thinking_budget"}},
		{"/export y", []string{"/export yaml"}},
		{"/select ab", []string{"/select abc-1", "/select abd-2"}},
		{"/select abc", []string{"/select abc-1"}},
		{"/new x", nil},
		{"/nope x", nil},
	}

	for _, tc := range tests {
		got := c.Complete(tc.input)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tc.input, diff)
		}
	}
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

type fixture struct {
	reg    *Registry
	parser *Parser
	env    *Env
	fake   *transporttest.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	fake := transporttest.New()
	orch := chat.New(chat.Config{
		Store:    storage.NewMemoryStore(),
		Adapter:  transport.NewAdapter(fake, log),
		Settings: settings.Default(),
		Logger:   log,
	})
	reg := NewRegistry()
	return &fixture{
		reg:    reg,
		parser: NewParser(reg),
		env:    &Env{Chat: orch, Auth: auth.NewManager(auth.Config{})},
		fake:   fake,
	}
}

func (f *fixture) run(t *testing.T, line string) (Result, error) {
	t.Helper()
	return f.reg.Execute(context.Background(), f.env, f.parser.Parse(line))
}

func (f *fixture) mustRun(t *testing.T, line string) Result {
	t.Helper()
	res, err := f.run(t, line)
	require.NoError(t, err, line)
	return res
}

func TestExecute_UnknownAndNonCommand(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "/teleport")
	require.ErrorContains(t, err, "unknown command")

	_, err = f.run(t, "hello")
	require.Error(t, err)
}

func TestExecute_SessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orch := f.env.Chat

	f.mustRun(t, "/new")
	require.True(t, orch.Send(ctx, "first chat"))
	first := orch.Snapshot().SessionID
	f.mustRun(t, "/new")
	require.True(t, orch.Send(ctx, "second chat"))

	res := f.mustRun(t, "/sessions")
	require.True(t, res.ShowSessions)
	require.Contains(t, res.Output, " 1. second chat")
	require.Contains(t, res.Output, " 2. first chat")
	require.Contains(t, res.Output, "*  1.")

	res = f.mustRun(t, "/select 2")
	require.Equal(t, `Opened "first chat".`, res.Output)
	require.Equal(t, first, orch.Snapshot().SessionID)

	res = f.mustRun(t, "/search SECOND")
	require.Contains(t, res.Output, "second chat")
	require.NotContains(t, res.Output, "first chat")

	f.mustRun(t, "/delete .")
	require.Empty(t, orch.Snapshot().SessionID)
	sessions, err := orch.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	_, err = f.run(t, "/select 9")
	require.Error(t, err)
	_, err = f.run(t, "/select zzz")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestExecute_Export(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.run(t, "/export")
	require.Error(t, err)

	require.True(t, f.env.Chat.Send(ctx, "Hi"))
	res := f.mustRun(t, "/export")
	require.Contains(t, res.Output, "# Hi")

	res = f.mustRun(t, "/export json")
	require.Contains(t, res.Output, `"title": "Hi"`)
}

func TestExecute_Settings(t *testing.T) {
	f := newFixture(t)

	res := f.mustRun(t, `/set custom_system_instruction "Answer in French."`)
	require.Equal(t, "custom_system_instruction = Answer in French.", res.Output)
	require.Equal(t, "Answer in French.", f.env.Chat.Settings().CustomSystemInstruction)

	last, ok := f.fake.Last()
	require.True(t, ok)
	require.Contains(t, last.SystemInstruction, "Answer in French.")

	_, err := f.run(t, "/set temperature 9")
	require.ErrorIs(t, err, settings.ErrInvalid)
	_, err = f.run(t, "/set volume 11")
	require.Error(t, err)

	res = f.mustRun(t, "/settings")
	require.Contains(t, res.Output, "Answer in French.")

	res = f.mustRun(t, "/think")
	require.Equal(t, "Thinking mode on.", res.Output)
	require.Contains(t, f.env.Chat.Input(), "[System: Thinking Mode Enabled]")
}

func TestExecute_InputHelpers(t *testing.T) {
	f := newFixture(t)

	f.mustRun(t, "/image")
	f.mustRun(t, "/attach ./notes/todo.txt")
	require.Equal(t, "Generate an image of [Attached: todo.txt] ", f.env.Chat.Input())

	_, err := f.run(t, "/canvas")
	require.ErrorIs(t, err, chat.ErrComingSoon)

	res := f.mustRun(t, "/stop")
	require.Equal(t, "Nothing to stop.", res.Output)
}

func TestExecute_Suggest(t *testing.T) {
	f := newFixture(t)

	res := f.mustRun(t, "/suggest")
	require.Contains(t, res.Output, "1. Plan a trip to Kyoto for 3 days in spring")
	require.Contains(t, res.Output, "4. Write a thank you note for a job interview")
	require.Empty(t, f.env.Chat.Input())

	f.mustRun(t, "/suggest 3")
	require.Equal(t, "Brainstorm marketing ideas for a coffee shop", f.env.Chat.Input())

	_, err := f.run(t, "/suggest 9")
	require.Error(t, err)
	require.Equal(t, "Brainstorm marketing ideas for a coffee shop", f.env.Chat.Input())
}

func TestExecute_LogoutAndQuit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.env.Auth.LoginEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.True(t, f.env.Chat.Send(ctx, "hello"))

	res := f.mustRun(t, "/logout")
	require.True(t, res.LoggedOut)
	require.False(t, f.env.Auth.LoggedIn())
	require.Empty(t, f.env.Chat.Snapshot().Messages)

	res = f.mustRun(t, "/q")
	require.True(t, res.Quit)
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	reg := NewRegistry()
	help := reg.Help()
	for _, cmd := range reg.All() {
		require.Contains(t, help, cmd.Name)
	}
}
