// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme(termenv.Ascii)
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}
	if theme.ColorProfile != termenv.Ascii {
		t.Errorf("ColorProfile = %v, want Ascii", theme.ColorProfile)
	}

	for name, out := range map[string]string{
		"UserLabel":  theme.UserLabel.Render("You"),
		"ModelLabel": theme.ModelLabel.Render("Gemini"),
		"ErrorText":  theme.ErrorText.Render("boom"),
		"Button":     theme.Button.Render("Continue with Google"),
	} {
		if strings.TrimSpace(out) == "" {
			t.Errorf("%s rendered empty", name)
		}
	}
}

func TestRenderShortcut(t *testing.T) {
	theme := NewTheme(termenv.Ascii)
	got := theme.RenderShortcut("esc", "stop")
	if !strings.Contains(got, "esc") || !strings.Contains(got, "stop") {
		t.Errorf("RenderShortcut = %q", got)
	}
}
