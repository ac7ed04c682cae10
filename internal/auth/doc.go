// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the mock sign-in used to gate the chat screen.
//
// Nothing is verified against a server. Email sign-in accepts any
// syntactically valid address; social sign-in maps a provider name to a
// fixed mock address.
//
// # Key Types
//
//   - Manager: holds the signed-in user
//   - User: email, display name and sign-in time
//
// # Usage
//
//	m := auth.NewManager(auth.Config{Delay: time.Second})
//	user, err := m.LoginEmail(ctx, "ada@example.com")
//	...
//	m.Logout()
package auth
