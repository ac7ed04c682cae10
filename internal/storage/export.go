// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for gemclone.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/util"
)

// =============================================================================
// SESSION EXPORT
// =============================================================================

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts md/markdown, json and yaml/yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want md, json or yaml)", s)
	}
}

// Record is the exported shape of a session.
type Record struct {
	ID        string          `json:"id" yaml:"id"`
	Title     string          `json:"title" yaml:"title"`
	Messages  []model.Message `json:"messages" yaml:"messages"`
	UpdatedAt time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// NewRecord converts a session to its exported shape.
func NewRecord(s model.ChatSession) Record {
	return Record{
		ID:        s.ID,
		Title:     s.Title,
		Messages:  model.CloneMessages(s.Messages),
		UpdatedAt: s.UpdatedAt,
	}
}

// Export writes s to w in the given format.
func Export(w io.Writer, s model.ChatSession, format Format) error {
	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, ExportMarkdown(s))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewRecord(s))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewRecord(s)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ExportMarkdown renders the session as Markdown with role labels and times.
// Message text is already Markdown and is copied verbatim.
func ExportMarkdown(s model.ChatSession) string {
	var sb strings.Builder
	sb.WriteString("# " + s.Title + "\n\n")
	sb.WriteString("Session: " + s.ID + "\n\n")
	sb.WriteString("Updated: " + s.UpdatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		label := "**" + msg.Role.DisplayName() + "**"
		if msg.IsError {
			label += " _(error)_"
		}
		sb.WriteString(label + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions as a table of id, creation time,
// message count and title.
func FormatSessionList(sessions []model.ChatSession) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString(formatPadded("ID", 36) + "  " + formatPadded("Created", 16) + "  " + formatPadded("Msgs", 4) + "  Title\n")
	sb.WriteString(strings.Repeat("-", 36+2+16+2+4+2+30) + "\n")

	for _, s := range sessions {
		sb.WriteString(formatPadded(s.ID, 36) + "  " +
			formatPadded(s.CreatedAt.Local().Format("2006-01-02 15:04"), 16) + "  " +
			formatPadded(strconv.Itoa(len(s.Messages)), 4) + "  " +
			util.TruncateWidth(util.SingleLine(s.Title), 40) + "\n")
	}
	return sb.String()
}

// formatPadded pads s with spaces to width runes.
func formatPadded(s string, width int) string {
	if n := util.RuneLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
