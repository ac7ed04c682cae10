// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates a conversation: user input, the reply stream from
// the transport adapter, the displayed message list and session persistence.
//
// The Orchestrator is a two-state machine (Idle, Streaming). One send runs at
// a time. Each reply fragment is split on whitespace runs and revealed token
// by token at a fixed pace, so the on-screen cadence does not depend on how
// the network chunks the reply.
//
// # Key Types
//
//   - Orchestrator: owns the displayed conversation and drives sends
//   - Snapshot: a copy of the displayed state
//   - Event: a change notification carrying a Snapshot
//
// # Usage
//
//	orch := chat.New(chat.Config{
//	    Store:    store,
//	    Adapter:  transport.NewAdapter(provider, log),
//	    Settings: current,
//	    Pacing:   10 * time.Millisecond,
//	})
//	orch.Subscribe(func(ev chat.Event) { render(ev.Snapshot) })
//	orch.NewSession(ctx)
//	orch.Send(ctx, "Explain goroutines") // blocks until the reply settles
//
// Subscribers are called outside the orchestrator lock but on the goroutine
// that made the change. They must not call mutating methods synchronously;
// hand the call to another goroutine instead.
package chat
