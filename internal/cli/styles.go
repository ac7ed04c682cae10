// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gemclone/internal/ui/styles"
)

// init configures lipgloss for the output stream. Colors are dropped when
// stdout is piped or NO_COLOR is set.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for greetings and headers
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Blue)

	// UserStyle labels the user's turns in the REPL
	UserStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Violet)

	// ModelStyle labels Gemini's turns in the REPL
	ModelStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Blue)

	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Green)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)

	// DimStyle is used for hints and secondary information
	DimStyle = lipgloss.NewStyle().Foreground(styles.TextMuted)
)
