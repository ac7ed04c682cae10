// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the user-facing chat settings.
package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// ENUMS
// =============================================================================

// Personality selects the tone sentence added to the system instruction.
type Personality string

const (
	PersonalityProfessional Personality = "professional"
	PersonalityFriendly     Personality = "friendly"
	PersonalityCreative     Personality = "creative"
	PersonalityHumorous     Personality = "humorous"
	PersonalityStrict       Personality = "strict"
)

// Personalities lists every personality in display order.
var Personalities = []Personality{
	PersonalityProfessional,
	PersonalityFriendly,
	PersonalityCreative,
	PersonalityHumorous,
	PersonalityStrict,
}

// Valid reports whether p is a known personality.
func (p Personality) Valid() bool {
	for _, known := range Personalities {
		if p == known {
			return true
		}
	}
	return false
}

// FontSize is a cosmetic text size preference.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

// CodeTheme selects the code block color scheme.
type CodeTheme string

const (
	CodeThemeLight CodeTheme = "light"
	CodeThemeDark  CodeTheme = "dark"
)

// =============================================================================
// BOUNDS
// =============================================================================

const (
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	MinMaxOutputTokens = 100
	MaxMaxOutputTokens = 8192
	MinThinkingBudget  = 1024
	MaxThinkingBudget  = 8192
	ThinkingBudgetStep = 1024
)

// ErrInvalid is returned (wrapped) for settings outside the allowed bounds.
var ErrInvalid = errors.New("invalid settings")

// =============================================================================
// APP SETTINGS
// =============================================================================

// AppSettings is the complete set of user-adjustable chat settings.
type AppSettings struct {
	// AI model
	Model           string  `toml:"model" json:"model" yaml:"model"`
	Temperature     float64 `toml:"temperature" json:"temperature" yaml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens" json:"maxOutputTokens" yaml:"max_output_tokens"`
	EnableThinking  bool    `toml:"enable_thinking" json:"enableThinking" yaml:"enable_thinking"`
	ThinkingBudget  int     `toml:"thinking_budget" json:"thinkingBudget" yaml:"thinking_budget"`

	// Personality
	Personality             Personality `toml:"personality" json:"personality" yaml:"personality"`
	CustomSystemInstruction string      `toml:"custom_system_instruction" json:"customSystemInstruction" yaml:"custom_system_instruction"`

	// Privacy: incognito sessions are never written to the session store
	Incognito bool `toml:"incognito" json:"incognito" yaml:"incognito"`

	// UI
	FontSize            FontSize  `toml:"font_size" json:"fontSize" yaml:"font_size"`
	ShowCodeLineNumbers bool      `toml:"show_code_line_numbers" json:"showCodeLineNumbers" yaml:"show_code_line_numbers"`
	CodeBlockTheme      CodeTheme `toml:"code_block_theme" json:"codeBlockTheme" yaml:"code_block_theme"`
}

// Default returns the settings used before the user saves anything.
func Default() AppSettings {
	return AppSettings{
		Model:                   "gemini-2.5-flash",
		Temperature:             0.7,
		MaxOutputTokens:         2048,
		EnableThinking:          false,
		ThinkingBudget:          1024,
		Personality:             PersonalityFriendly,
		CustomSystemInstruction: "",
		Incognito:               false,
		FontSize:                FontMedium,
		ShowCodeLineNumbers:     true,
		CodeBlockTheme:          CodeThemeDark,
	}
}

// FillDefaults replaces zero-valued fields with their defaults. Booleans are
// left alone since false is a meaningful choice.
func (s *AppSettings) FillDefaults() {
	d := Default()
	if s.Model == "" {
		s.Model = d.Model
	}
	if s.MaxOutputTokens == 0 {
		s.MaxOutputTokens = d.MaxOutputTokens
	}
	if s.ThinkingBudget == 0 {
		s.ThinkingBudget = d.ThinkingBudget
	}
	if s.Personality == "" {
		s.Personality = d.Personality
	}
	if s.FontSize == "" {
		s.FontSize = d.FontSize
	}
	if s.CodeBlockTheme == "" {
		s.CodeBlockTheme = d.CodeBlockTheme
	}
}

// Validate checks the settings against the ranges the settings form allows.
func (s AppSettings) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Model) == "" {
		problems = append(problems, "model is required")
	}
	if math.IsNaN(s.Temperature) || s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		problems = append(problems, fmt.Sprintf("temperature %.2f outside %.0f-%.0f", s.Temperature, MinTemperature, MaxTemperature))
	}
	if s.MaxOutputTokens < MinMaxOutputTokens || s.MaxOutputTokens > MaxMaxOutputTokens {
		problems = append(problems, fmt.Sprintf("max output tokens %d outside %d-%d", s.MaxOutputTokens, MinMaxOutputTokens, MaxMaxOutputTokens))
	}
	if s.ThinkingBudget < MinThinkingBudget || s.ThinkingBudget > MaxThinkingBudget || s.ThinkingBudget%ThinkingBudgetStep != 0 {
		problems = append(problems, fmt.Sprintf("thinking budget %d must be a multiple of %d in %d-%d", s.ThinkingBudget, ThinkingBudgetStep, MinThinkingBudget, MaxThinkingBudget))
	}
	if !s.Personality.Valid() {
		problems = append(problems, fmt.Sprintf("unknown personality %q", s.Personality))
	}
	switch s.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		problems = append(problems, fmt.Sprintf("unknown font size %q", s.FontSize))
	}
	switch s.CodeBlockTheme {
	case CodeThemeLight, CodeThemeDark:
	default:
		problems = append(problems, fmt.Sprintf("unknown code block theme %q", s.CodeBlockTheme))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// =============================================================================
// KEY/VALUE ACCESS
// =============================================================================

// Keys lists the names accepted by Set, in display order.
var Keys = []string{
	"model",
	"temperature",
	"max_output_tokens",
	"enable_thinking",
	"thinking_budget",
	"personality",
	"custom_system_instruction",
	"incognito",
	"font_size",
	"show_code_line_numbers",
	"code_block_theme",
}

// Set parses value and assigns it to the field named by key. The result is
// not validated; call Validate before saving.
func (s *AppSettings) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "model":
		s.Model = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
		s.Temperature = f
	case "max_output_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_output_tokens: %w", err)
		}
		s.MaxOutputTokens = n
	case "enable_thinking":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("enable_thinking: %w", err)
		}
		s.EnableThinking = b
	case "thinking_budget":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("thinking_budget: %w", err)
		}
		s.ThinkingBudget = n
	case "personality":
		s.Personality = Personality(strings.ToLower(value))
	case "custom_system_instruction":
		s.CustomSystemInstruction = value
	case "incognito":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("incognito: %w", err)
		}
		s.Incognito = b
	case "font_size":
		s.FontSize = FontSize(strings.ToLower(value))
	case "show_code_line_numbers":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("show_code_line_numbers: %w", err)
		}
		s.ShowCodeLineNumbers = b
	case "code_block_theme":
		s.CodeBlockTheme = CodeTheme(strings.ToLower(value))
	default:
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get formats the field named by key the way Set accepts it.
func (s AppSettings) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "model":
		return s.Model, nil
	case "temperature":
		return strconv.FormatFloat(s.Temperature, 'g', -1, 64), nil
	case "max_output_tokens":
		return strconv.Itoa(s.MaxOutputTokens), nil
	case "enable_thinking":
		return strconv.FormatBool(s.EnableThinking), nil
	case "thinking_budget":
		return strconv.Itoa(s.ThinkingBudget), nil
	case "personality":
		return string(s.Personality), nil
	case "custom_system_instruction":
		return s.CustomSystemInstruction, nil
	case "incognito":
		return strconv.FormatBool(s.Incognito), nil
	case "font_size":
		return string(s.FontSize), nil
	case "show_code_line_numbers":
		return strconv.FormatBool(s.ShowCodeLineNumbers), nil
	case "code_block_theme":
		return string(s.CodeBlockTheme), nil
	default:
		return "", fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
}

// Format lists every setting as "key = value", one per line.
func (s AppSettings) Format() string {
	var b strings.Builder
	for _, k := range Keys {
		v, _ := s.Get(k)
		if v == "" {
			v = `""`
		}
		fmt.Fprintf(&b, "%-26s = %s\n", k, v)
	}
	return b.String()
}
