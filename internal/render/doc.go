// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message markdown into terminal output.
//
// Prose goes through glamour. Fenced code blocks are pulled out first and
// highlighted with chroma so the code theme and line numbers follow the
// user's settings rather than the markdown style.
//
// # Key Types
//
//   - Renderer: renders messages for one width, profile and settings value
//   - Block: one prose or code segment of a message
//
// # Usage
//
//	r, err := render.New(render.Options{Width: 80, Settings: s, Profile: termenv.ColorProfile()})
//	out := r.Message(msg)
package render
