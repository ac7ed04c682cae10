// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end of gemclone.
package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/commands"
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/render"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

type sessionsMsg struct {
	sessions []model.ChatSession
	err      error
}

type loginMsg struct {
	user auth.User
	err  error
}

type sendDoneMsg struct{ sent bool }

type commandMsg struct {
	res commands.Result
	err error
}

// =============================================================================
// MODEL
// =============================================================================

type screen int

const (
	screenLogin screen = iota
	screenChat
)

// Options wires the UI.
type Options struct {
	Chat *chat.Orchestrator
	Auth *auth.Manager
	// User skips the sign-in screen when set.
	User   *auth.User
	Logger *zap.Logger
	// Profile defaults to the terminal's detected profile.
	Profile *termenv.Profile
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx  context.Context
	orch *chat.Orchestrator
	auth *auth.Manager
	log  *zap.Logger

	registry  *commands.Registry
	parser    *commands.Parser
	completer *commands.Completer
	env       *commands.Env

	bridge      *bridge
	unsubscribe func()

	theme    *styles.Theme
	keys     KeyMap
	renderer *rendererCache

	screen screen
	width  int
	height int

	// sign-in screen
	user      *auth.User
	email     textinput.Model
	loginBtn  int
	loggingIn bool
	loginErr  string

	// chat screen
	input        textarea.Model
	viewport     viewport.Model
	spinner      spinner.Model
	snap         chat.Snapshot
	sessions     []model.ChatSession
	showSidebar  bool
	sidebarFocus bool
	cursor       int
	notice       string
	noticeErr    bool
}

// rendererCache rebuilds the markdown renderer only when its inputs change.
type rendererCache struct {
	profile  termenv.Profile
	width    int
	settings settings.AppSettings
	r        *render.Renderer
}

func (c *rendererCache) get(width int, s settings.AppSettings) *render.Renderer {
	if c.r != nil && c.width == width && c.settings == s {
		return c.r
	}
	r, err := render.New(render.Options{Width: width, Settings: s, Profile: c.profile})
	if err != nil {
		return c.r
	}
	c.r, c.width, c.settings = r, width, s
	return r
}

// New builds the root model and subscribes it to opts.Chat. Call Close when
// the program ends.
func New(ctx context.Context, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	profile := termenv.ColorProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	authMgr := opts.Auth
	if authMgr == nil {
		authMgr = auth.NewManager(auth.Config{})
	}

	reg := commands.NewRegistry()
	completer := commands.NewCompleter(reg)

	email := textinput.New()
	email.Placeholder = "Email address"
	email.Prompt = ""
	email.Focus()

	input := textarea.New()
	input.Placeholder = "Ask Gemini"
	input.ShowLineNumbers = false
	input.Prompt = ""
	input.CharLimit = 0
	input.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		orch:      opts.Chat,
		auth:      authMgr,
		log:       log.Named("ui"),
		registry:  reg,
		parser:    commands.NewParser(reg),
		completer: completer,
		env:       &commands.Env{Chat: opts.Chat, Auth: authMgr},
		bridge:    newBridge(),
		theme:     styles.NewTheme(profile),
		keys:      DefaultKeyMap(),
		renderer:  &rendererCache{profile: profile},
		email:     email,
		loginBtn:  len(auth.Providers),
		input:     input,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		snap:      opts.Chat.Snapshot(),
	}
	m.input.KeyMap.InsertNewline = m.keys.Newline
	m.unsubscribe = opts.Chat.Subscribe(m.bridge.handle)

	completer.SessionsFn = func() []string {
		sessions, err := opts.Chat.Sessions(ctx)
		if err != nil {
			return nil
		}
		ids := make([]string, len(sessions))
		for i, s := range sessions {
			ids[i] = s.ID
		}
		return ids
	}

	if opts.User != nil {
		m.enterChat(*opts.User)
	}
	return m
}

// Close detaches the model from the orchestrator.
func (m Model) Close() {
	m.unsubscribe()
	m.bridge.close()
}

// Run runs the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bridge.wait(), m.loadSessions(), textinput.Blink, m.spinner.Tick)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		return m.updateChat(msg)

	case snapshotMsg:
		return m.applySnapshot(msg)

	case sessionsMsg:
		if msg.err != nil {
			m.log.Warn("failed to list sessions", zap.Error(msg.err))
			return m, nil
		}
		m.sessions = msg.sessions
		m.clampCursor()
		return m, nil

	case loginMsg:
		m.loggingIn = false
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.loginErr = msg.err.Error()
			}
			return m, nil
		}
		m.log.Info("signed in", zap.String("email", msg.user.Email))
		cmd := m.enterChat(msg.user)
		return m, cmd

	case commandMsg:
		return m.applyCommand(msg)

	case sendDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.AwaitingFirstByte() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	if m.screen == screenLogin {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.bridge.wait()}

	if msg.snap.Seq >= m.snap.Seq {
		m.snap = msg.snap
	}
	if msg.input {
		m.input.SetValue(m.snap.Input)
		m.input.CursorEnd()
	}
	if msg.sessions {
		cmds = append(cmds, m.loadSessions())
	}
	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m Model) applyCommand(msg commandMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setNotice(msg.err.Error(), true)
		return m, nil
	}
	res := msg.res
	if res.Output != "" {
		m.setNotice(res.Output, false)
	}
	switch {
	case res.Quit:
		return m, tea.Quit
	case res.LoggedOut:
		m.leaveChat()
		return m, textinput.Blink
	case res.ShowSessions && !m.showSidebar:
		m.showSidebar = true
		m.layout()
		m.refresh()
	}
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadSessions() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		sessions, err := orch.Sessions(ctx)
		return sessionsMsg{sessions: sessions, err: err}
	}
}

// execute runs a slash command off the update loop; some commands wait for
// a streaming reply to stop.
func (m Model) execute(line string) tea.Cmd {
	res := m.parser.Parse(line)
	reg, env, ctx := m.registry, m.env, m.ctx
	return func() tea.Msg {
		out, err := reg.Execute(ctx, env, res)
		return commandMsg{res: out, err: err}
	}
}

func (m Model) send() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return sendDoneMsg{sent: orch.Submit(ctx)}
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice, m.noticeErr = text, isErr
}
