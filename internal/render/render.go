// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message markdown into terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
)

const minWidth = 20

// Options configures a Renderer.
type Options struct {
	// Width is the terminal width in cells.
	Width    int
	Settings settings.AppSettings
	// Profile selects how many colors are emitted. termenv.Ascii emits none.
	Profile termenv.Profile
}

// Renderer renders messages. Build a new one when the width or settings change.
type Renderer struct {
	opts     Options
	wrap     int
	markdown *glamour.TermRenderer
}

// New creates a renderer for opts.
func New(opts Options) (*Renderer, error) {
	wrap := WrapWidth(opts.Width, opts.Settings.FontSize)

	style := "dark"
	switch {
	case opts.Profile == termenv.Ascii:
		style = "notty"
	case opts.Settings.CodeBlockTheme == settings.CodeThemeLight:
		style = "light"
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(opts.Profile),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Renderer{opts: opts, wrap: wrap, markdown: md}, nil
}

// WrapWidth maps the font size setting onto a wrap width. A terminal cannot
// change its font, so larger sizes read as narrower, roomier columns.
func WrapWidth(width int, size settings.FontSize) int {
	switch size {
	case settings.FontSmall:
	case settings.FontLarge:
		width = width * 3 / 4
	default:
		width = width * 9 / 10
	}
	if width < minWidth {
		width = minWidth
	}
	return width
}

// Markdown renders text. Code fences are highlighted separately.
func (r *Renderer) Markdown(text string) string {
	var parts []string
	for _, b := range SplitBlocks(text) {
		if b.Code {
			parts = append(parts, r.Code(b.Language, b.Text))
			continue
		}
		parts = append(parts, r.prose(b.Text))
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) prose(text string) string {
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// Message renders one message. User text is shown as typed; model text is
// rendered as markdown.
func (r *Renderer) Message(m model.Message) string {
	if m.Role == model.RoleUser || m.IsError {
		return lipgloss.NewStyle().Width(r.wrap).Render(m.Text)
	}
	return r.Markdown(m.Text)
}

// =============================================================================
// CODE BLOCKS
// =============================================================================

// Code highlights one code block, with line numbers when the settings ask
// for them.
func (r *Renderer) Code(language, code string) string {
	code = strings.TrimRight(code, "\n")
	highlighted := r.highlight(language, code)

	lines := strings.Split(highlighted, "\n")
	if r.opts.Settings.ShowCodeLineNumbers {
		digits := len(fmt.Sprint(len(lines)))
		for i, line := range lines {
			lines[i] = fmt.Sprintf("%*d │ %s", digits, i+1, line)
		}
	}

	body := strings.Join(lines, "\n")
	if language != "" {
		body = language + "\n" + body
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Render(body)
}

func (r *Renderer) highlight(language, code string) string {
	formatter := formatterFor(r.opts.Profile)
	if formatter == nil {
		return code
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(ChromaStyle(r.opts.Settings.CodeBlockTheme))
	if style == nil {
		style = chromaStyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ChromaStyle names the chroma style for a code theme.
func ChromaStyle(theme settings.CodeTheme) string {
	if theme == settings.CodeThemeLight {
		return "github"
	}
	return "monokai"
}

// formatterFor returns nil for profiles without color.
func formatterFor(p termenv.Profile) chroma.Formatter {
	switch p {
	case termenv.TrueColor:
		return formatters.Get("terminal16m")
	case termenv.ANSI256:
		return formatters.Get("terminal256")
	case termenv.ANSI:
		return formatters.Get("terminal")
	default:
		return nil
	}
}
