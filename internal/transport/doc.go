// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single current chat context with the remote
// model provider.
//
// The remote APIs bind model, generation config, system instruction and
// history when a chat is created, so the Adapter never mutates a chat. It
// rebuilds one from scratch on every Initialize. Concrete providers live in
// the gemini and openai subpackages.
//
// # Key Types
//
//   - Adapter: holds the current Chat and the settings it was built from
//   - Provider: creates a Chat from Params
//   - Chat: streams one reply as text fragments
//   - Params: model, system instruction, generation config and history
//
// # Usage
//
//	a := transport.NewAdapter(gemini.New(gemini.Config{APIKey: key}), log)
//	_ = a.Initialize(ctx, settings, history)
//	for fragment, err := range a.SendStream(ctx, "Hello") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(fragment)
//	}
package transport
