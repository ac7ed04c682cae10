// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the colors and Lip Gloss styles of the gemclone TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Blue - brand accent, model label, focused borders
var Blue = lipgloss.AdaptiveColor{Light: "#1A73E8", Dark: "#8AB4F8"}

// Violet - user label and the thinking badge
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#C58AF9"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#D93025", Dark: "#F28B82"}

// Amber - incognito badge and warnings
var Amber = lipgloss.AdaptiveColor{Light: "#B06000", Dark: "#FDD663"}

// Green - success notices
var Green = lipgloss.AdaptiveColor{Light: "#188038", Dark: "#81C995"}

// =============================================================================
// SURFACES AND TEXT
// =============================================================================

// Surface - sidebar and status bar background
var Surface = lipgloss.AdaptiveColor{Light: "#F0F4F9", Dark: "#1E1F20"}

// SurfaceSelected - highlighted sidebar row
var SurfaceSelected = lipgloss.AdaptiveColor{Light: "#D3E3FD", Dark: "#333537"}

// Border - dividers and unfocused borders
var Border = lipgloss.AdaptiveColor{Light: "#C4C7C5", Dark: "#444746"}

// Text - primary text
var Text = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#E3E3E3"}

// TextMuted - hints, timestamps, placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#5F6368", Dark: "#9AA0A6"}
