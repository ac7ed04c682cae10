// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/chat"
	"github.com/jeranaias/gemclone/internal/commands"
	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/render"
)

// errAborted is returned by a lineReader when Ctrl+C clears the prompt.
var errAborted = errors.New("prompt aborted")

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader reads one line of input. text pre-fills the line where the
// reader supports editing, and is prepended otherwise.
type lineReader interface {
	Prompt(prompt, text string) (string, error)
	Close() error
}

// linerReader provides history and line editing on a terminal.
type linerReader struct {
	state       *liner.State
	historyFile string
}

func newLinerReader(historyFile string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if f, err := os.Open(historyFile); err == nil {
		_, _ = state.ReadHistory(f)
		f.Close()
	}
	return &linerReader{state: state, historyFile: historyFile}
}

func (r *linerReader) Prompt(prompt, text string) (string, error) {
	var (
		line string
		err  error
	)
	if text == "" {
		line, err = r.state.Prompt(prompt)
	} else {
		line, err = r.state.PromptWithSuggestion(prompt, text, -1)
	}
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errAborted
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves the history with owner-only permissions.
func (r *linerReader) Close() error {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		_, _ = r.state.WriteHistory(f)
		f.Close()
	}
	return r.state.Close()
}

// scanReader reads piped input. Prompts are not echoed.
type scanReader struct {
	sc *bufio.Scanner
}

func newScanReader(in io.Reader) *scanReader {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &scanReader{sc: sc}
}

func (r *scanReader) Prompt(_, text string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := r.sc.Text()
	if commands.IsCommand(line) {
		return line, nil
	}
	return text + line, nil
}

func (r *scanReader) Close() error { return nil }

// =============================================================================
// REPL
// =============================================================================

// repl is the line-mode chat front end. It shares the slash commands with
// the TUI.
type repl struct {
	app   *App
	in    lineReader
	out   io.Writer
	plain bool
	log   *zap.Logger

	registry *commands.Registry
	parser   *commands.Parser
	env      *commands.Env

	// email signs in without prompting, once.
	email string
	user  auth.User

	mu      sync.Mutex
	replyID string
	printed int
}

func newREPL(app *App, in lineReader, out io.Writer, plain bool) *repl {
	reg := commands.NewRegistry()
	return &repl{
		app:      app,
		in:       in,
		out:      out,
		plain:    plain,
		log:      app.Log.Named("repl"),
		registry: reg,
		parser:   commands.NewParser(reg),
		env:      &commands.Env{Chat: app.Chat, Auth: app.Auth},
	}
}

func (r *repl) run(ctx context.Context) error {
	unsubscribe := r.app.Chat.Subscribe(r.onEvent)
	defer unsubscribe()

	if err := r.signIn(ctx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	for ctx.Err() == nil {
		line, err := r.in.Prompt(UserStyle.Render("You")+": ", r.app.Chat.Input())
		switch {
		case errors.Is(err, errAborted):
			r.app.Chat.SetInput("")
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if commands.IsCommand(line) {
			r.app.Chat.SetInput("")
			quit, err := r.command(ctx, line)
			if errors.Is(err, io.EOF) || quit {
				return nil
			}
			if err != nil {
				return err
			}
			continue
		}
		r.send(ctx, line)
	}
	return nil
}

// signIn uses --email once, then prompts until a valid address is entered.
func (r *repl) signIn(ctx context.Context) error {
	if r.email != "" {
		email := r.email
		r.email = ""
		u, err := r.app.Auth.LoginEmail(ctx, email)
		if err != nil {
			return err
		}
		r.greet(u)
		return nil
	}

	for {
		line, err := r.in.Prompt("Email: ", "")
		if errors.Is(err, errAborted) {
			continue
		}
		if err != nil {
			return err
		}
		u, err := r.app.Auth.LoginEmail(ctx, strings.TrimSpace(line))
		if errors.Is(err, auth.ErrInvalidEmail) {
			fmt.Fprintln(r.out, ErrorStyle.Render("Enter a valid email address."))
			continue
		}
		if err != nil {
			return err
		}
		r.greet(u)
		return nil
	}
}

func (r *repl) greet(u auth.User) {
	r.user = u
	r.log.Info("signed in", zap.String("email", u.Email))
	fmt.Fprintln(r.out, TitleStyle.Render("Hello, "+u.DisplayName()))
	fmt.Fprintln(r.out, DimStyle.Render("Type a message, /help for commands, /suggest for ideas, Ctrl+D to quit."))
	fmt.Fprintln(r.out)
}

// command runs a slash command. A logout signs in again before returning.
func (r *repl) command(ctx context.Context, line string) (quit bool, err error) {
	res, err := r.registry.Execute(ctx, r.env, r.parser.Parse(line))
	if err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render("Error:"), err)
		return false, nil
	}
	if out := strings.TrimRight(res.Output, "\n"); out != "" {
		fmt.Fprintln(r.out, out)
	}
	if res.LoggedOut {
		return false, r.signIn(ctx)
	}
	return res.Quit, nil
}

// send streams one reply. Ctrl+C stops it and keeps the partial text.
func (r *repl) send(ctx context.Context, text string) {
	sendCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r.mu.Lock()
	r.replyID, r.printed = "", 0
	r.mu.Unlock()

	if r.plain {
		fmt.Fprint(r.out, ModelStyle.Render("Gemini")+": ")
	} else {
		fmt.Fprintln(r.out, DimStyle.Render("Thinking..."))
	}

	if !r.app.Chat.Send(sendCtx, text) {
		fmt.Fprintln(r.out, ErrorStyle.Render("A reply is already in progress."))
		return
	}

	snap := r.app.Chat.Snapshot()
	var reply model.Message
	if n := len(snap.Messages); n > 0 {
		reply = snap.Messages[n-1]
	}
	stopped := sendCtx.Err() != nil

	switch {
	case reply.Role != model.RoleModel:
		fmt.Fprintln(r.out, DimStyle.Render("[stopped]"))
	case reply.IsError:
		if r.plain && r.printedAny() {
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, ErrorStyle.Render(reply.Text))
	case r.plain:
		fmt.Fprintln(r.out)
		if stopped {
			fmt.Fprintln(r.out, DimStyle.Render("[stopped]"))
		}
	default:
		fmt.Fprintln(r.out, ModelStyle.Render("Gemini")+":")
		fmt.Fprintln(r.out, r.render(reply))
		if stopped {
			fmt.Fprintln(r.out, DimStyle.Render("[stopped]"))
		}
	}
	fmt.Fprintln(r.out)
}

func (r *repl) render(msg model.Message) string {
	rd, err := render.New(render.Options{
		Width:    GetTerminalWidth(),
		Settings: r.app.Chat.Settings(),
		Profile:  GetColorProfile(),
	})
	if err != nil {
		r.log.Warn("markdown rendering unavailable", zap.Error(err))
		return msg.Text
	}
	return rd.Message(msg)
}

// onEvent echoes streamed text in plain mode. The reply text only ever
// grows, so each update prints the new suffix.
func (r *repl) onEvent(ev chat.Event) {
	if !r.plain || ev.Kind != chat.MessageUpdated || ev.Message.IsError {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Message.ID != r.replyID {
		r.replyID, r.printed = ev.Message.ID, 0
	}
	text := ev.Message.Text
	if len(text) > r.printed {
		io.WriteString(r.out, text[r.printed:])
		r.printed = len(text)
	}
}

func (r *repl) printedAny() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.printed > 0
}
