// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and Lip Gloss styles of the gemclone TUI.

All colors are lipgloss.AdaptiveColor so light and dark terminals both read
well. The palette follows the Gemini web app: a blue brand accent, a muted
surface for the sidebar and a rose accent for errors.

# Key Types

  - Theme: every style the TUI uses, built once per color profile

# Usage

	theme := styles.NewTheme(termenv.ColorProfile())
	title := theme.HeaderTitle.Render("Gemini Clone")
*/
package styles
