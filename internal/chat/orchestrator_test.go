// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/storage"
	"github.com/jeranaias/gemclone/internal/transport"
	"github.com/jeranaias/gemclone/internal/transport/transporttest"
)

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	o     *Orchestrator
	fake  *transporttest.Provider
	store *storage.MemoryStore
	saver *recordingSaver
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []settings.AppSettings
	err   error
}

func (r *recordingSaver) Save(s settings.AppSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, s)
	return nil
}

func newHarness(t *testing.T, s settings.AppSettings, replies ...transporttest.Reply) *harness {
	t.Helper()

	log := zaptest.NewLogger(t)
	fake := transporttest.New(replies...)
	store := storage.NewMemoryStore()
	saver := &recordingSaver{}

	var ids, minutes atomic.Int64
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	o := New(Config{
		Store:    store,
		Adapter:  transport.NewAdapter(fake, log),
		Settings: s,
		Saver:    saver,
		Logger:   log,
		Now: func() time.Time {
			return base.Add(time.Duration(minutes.Add(1)) * time.Minute)
		},
		NewID: func() string { return fmt.Sprintf("id-%d", ids.Add(1)) },
	})
	return &harness{o: o, fake: fake, store: store, saver: saver}
}

// sendAsync runs Send on its own goroutine. The returned channel yields its
// result once the reply settles.
func (h *harness) sendAsync(text string) <-chan bool {
	done := make(chan bool, 1)
	go func() { done <- h.o.Send(context.Background(), text) }()
	return done
}

func (h *harness) lastText() string {
	msgs := h.o.Snapshot().Messages
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

func (h *harness) stored(t *testing.T, id string) []model.Message {
	t.Helper()
	sess, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	return sess.Messages
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_AppendsUserThenModel(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"Hello, ", "world!"}})
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	require.True(t, h.o.Send(ctx, "  hi there \n"))

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Equal(t, id, snap.SessionID)
	require.Empty(t, snap.Input)
	require.Len(t, snap.Messages, 2)
	require.Equal(t, model.RoleUser, snap.Messages[0].Role)
	require.Equal(t, "hi there", snap.Messages[0].Text)
	require.Equal(t, model.RoleModel, snap.Messages[1].Role)
	require.Equal(t, "Hello, world!", snap.Messages[1].Text)
	require.False(t, snap.Messages[1].IsError)

	require.Equal(t, []string{"hi there"}, h.fake.Sent())
	if diff := cmp.Diff(snap.Messages, h.stored(t, id)); diff != "" {
		t.Errorf("stored messages mismatch (-displayed +stored):\n%s", diff)
	}
}

func TestSend_NormalizesInput(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	// "e" followed by a combining acute accent composes to a single rune.
	require.True(t, h.o.Send(ctx, "cafe\u0301"))
	require.Equal(t, "caf\u00e9", h.o.Snapshot().Messages[0].Text)
}

func TestSend_BlankIsNoop(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	for _, in := range []string{"", "   ", "\n\t"} {
		require.False(t, h.o.Send(ctx, in), "input %q", in)
	}
	require.Empty(t, h.o.Snapshot().Messages)
	require.Empty(t, h.fake.Sent())
}

func TestSend_StartsSessionWhenNoneActive(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()

	require.True(t, h.o.Send(ctx, "hello"))

	snap := h.o.Snapshot()
	require.NotEmpty(t, snap.SessionID)
	sessions, err := h.o.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, snap.SessionID, sessions[0].ID)
	require.Len(t, sessions[0].Messages, 2)
}

func TestSend_ReplayedUpdatesRebuildReply(t *testing.T) {
	fragments := []string{"The quick", " brown fox\n\n", "jumps  over", " the lazy dog."}
	reply := strings.Join(fragments, "")
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: fragments})
	ctx := context.Background()
	h.o.NewSession(ctx)

	var (
		mu      sync.Mutex
		updates []string
	)
	unsubscribe := h.o.Subscribe(func(ev Event) {
		if ev.Kind != MessageUpdated {
			return
		}
		mu.Lock()
		updates = append(updates, ev.Message.Text)
		mu.Unlock()
	})
	defer unsubscribe()

	require.True(t, h.o.Send(ctx, "fox"))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, updates)

	// Each update extends the previous one by exactly one token.
	var applied []string
	prev := ""
	for _, u := range updates {
		require.True(t, strings.HasPrefix(u, prev), "update %q does not extend %q", u, prev)
		applied = append(applied, u[len(prev):])
		prev = u
	}
	require.Equal(t, reply, strings.Join(applied, ""))
	require.Equal(t, reply, h.lastText())

	var want []string
	for _, f := range fragments {
		want = append(want, SplitTokens(f)...)
	}
	require.Equal(t, want, applied)
}

func TestSend_WhileStreamingIsNoop(t *testing.T) {
	gate := make(chan struct{})
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"done"}, Gate: gate})
	ctx := context.Background()
	h.o.NewSession(ctx)

	done := h.sendAsync("first")
	waitFor(t, func() bool { return h.o.State() == Streaming })

	require.True(t, h.o.Snapshot().AwaitingFirstByte())
	require.False(t, h.o.Send(ctx, "second"))
	require.Len(t, h.o.Snapshot().Messages, 2)

	close(gate)
	require.True(t, <-done)

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Len(t, snap.Messages, 2)
	require.Equal(t, "done", snap.Messages[1].Text)
	require.Equal(t, []string{"first"}, h.fake.Sent())
}

func TestSend_FailureShowsFixedError(t *testing.T) {
	boom := errors.New("upstream said: quota exceeded for key AIza-secret")
	h := newHarness(t, settings.Default(),
		transporttest.Reply{Fragments: []string{"partial ", "text"}, Err: boom},
		transporttest.Reply{Err: errors.New("different failure")},
	)
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	require.True(t, h.o.Send(ctx, "one"))

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Len(t, snap.Messages, 2)

	var errored []model.Message
	for _, m := range snap.Messages {
		if m.IsError {
			errored = append(errored, m)
		}
	}
	require.Len(t, errored, 1)
	require.Equal(t, ErrorText, errored[0].Text)
	require.NotContains(t, errored[0].Text, "partial")
	require.NotContains(t, errored[0].Text, "quota")

	// Only the user message reached the store.
	stored := h.stored(t, id)
	require.Len(t, stored, 1)
	require.Equal(t, "one", stored[0].Text)

	require.True(t, h.o.Send(ctx, "two"))
	snap = h.o.Snapshot()
	require.Len(t, snap.Messages, 4)
	require.True(t, snap.Messages[3].IsError)
	require.Equal(t, snap.Messages[1].Text, snap.Messages[3].Text)
}

func TestSend_FailureAfterFragmentsDiscardsPartial(t *testing.T) {
	boom := errors.New("connection reset")
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"half "}, Err: boom})
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	var (
		mu    sync.Mutex
		shown []string
	)
	h.o.Subscribe(func(ev Event) {
		if ev.Kind != MessageUpdated {
			return
		}
		mu.Lock()
		shown = append(shown, ev.Message.Text)
		mu.Unlock()
	})

	require.True(t, h.o.Send(ctx, "question"))

	mu.Lock()
	require.Equal(t, []string{"half "}, shown)
	mu.Unlock()

	msgs := h.o.Snapshot().Messages
	require.Len(t, msgs, 2)
	require.Equal(t, ErrorText, msgs[1].Text)
	require.True(t, msgs[1].IsError)

	stored := h.stored(t, id)
	require.Len(t, stored, 1)
	require.Equal(t, model.RoleUser, stored[0].Role)
}

func TestSend_InitFailureRetriesLazily(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"recovered"}})
	ctx := context.Background()

	h.fake.FailNewChat(errors.New("missing API key"))
	h.o.NewSession(ctx)
	require.Empty(t, h.fake.Created())

	h.fake.FailNewChat(nil)
	require.True(t, h.o.Send(ctx, "hello"))
	require.Equal(t, "recovered", h.lastText())
	require.Len(t, h.fake.Created(), 1)
}

func TestSend_InitFailureStillFailingShowsError(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()

	h.fake.FailNewChat(errors.New("missing API key"))
	h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "hello"))

	msgs := h.o.Snapshot().Messages
	require.Len(t, msgs, 2)
	require.True(t, msgs[1].IsError)
	require.Equal(t, ErrorText, msgs[1].Text)
}

func TestSubmit_SendsInputBuffer(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	h.o.SetInput("from the buffer")
	require.Equal(t, "from the buffer", h.o.Input())
	require.True(t, h.o.Submit(ctx))

	require.Empty(t, h.o.Input())
	require.Equal(t, []string{"from the buffer"}, h.fake.Sent())
}

func TestSend_EventsReportStreamingThenIdle(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	var (
		mu     sync.Mutex
		states []State
		first  = true
		waited bool
	)
	h.o.Subscribe(func(ev Event) {
		if ev.Kind != StateChanged {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		states = append(states, ev.Snapshot.State)
		if first {
			waited = ev.Snapshot.AwaitingFirstByte()
			first = false
		}
	})

	require.True(t, h.o.Send(ctx, "hi"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []State{Streaming, Idle}, states)
	require.True(t, waited)
}

// =============================================================================
// STOP
// =============================================================================

func TestStop_KeepsPartialText(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"partial answer"}, Hold: true})
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	done := h.sendAsync("question")
	waitFor(t, func() bool { return h.lastText() == "partial answer" })

	require.True(t, h.o.Stop())
	require.True(t, <-done)

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Len(t, snap.Messages, 2)
	require.Equal(t, "partial answer", snap.Messages[1].Text)
	require.False(t, snap.Messages[1].IsError)

	stored := h.stored(t, id)
	require.Len(t, stored, 2)
	require.Equal(t, "partial answer", stored[1].Text)
}

func TestStop_BeforeFirstByteRemovesPlaceholder(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"never"}, Gate: gate})
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	done := h.sendAsync("question")
	waitFor(t, func() bool { return h.o.State() == Streaming })

	require.True(t, h.o.Stop())
	require.True(t, <-done)

	snap := h.o.Snapshot()
	require.Len(t, snap.Messages, 1)
	require.Equal(t, model.RoleUser, snap.Messages[0].Role)
	require.Len(t, h.stored(t, id), 1)
}

func TestStop_IdleReturnsFalse(t *testing.T) {
	h := newHarness(t, settings.Default())
	require.False(t, h.o.Stop())
}

func TestShutdown_StopsStream(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"x"}, Hold: true})
	h.o.NewSession(context.Background())

	done := h.sendAsync("q")
	waitFor(t, func() bool { return h.lastText() == "x" })

	h.o.Shutdown()
	require.Equal(t, Idle, h.o.State())
	require.True(t, <-done)
}

func TestStop_RebuildsChatWithDisplayedHistory(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"partial answer"}, Hold: true})
	ctx := context.Background()
	h.o.NewSession(ctx)
	created := len(h.fake.Created())

	done := h.sendAsync("question")
	waitFor(t, func() bool { return h.lastText() == "partial answer" })
	require.True(t, h.o.Stop())
	require.True(t, <-done)

	require.Len(t, h.fake.Created(), created+1)
	last, ok := h.fake.Last()
	require.True(t, ok)
	want := []transport.Turn{
		{Role: model.RoleUser, Text: "question"},
		{Role: model.RoleModel, Text: "partial answer"},
	}
	if diff := cmp.Diff(want, last.History); diff != "" {
		t.Errorf("chat history mismatch (-want +got):\n%s", diff)
	}

	// The next turn goes to the rebuilt chat.
	require.True(t, h.o.Send(ctx, "follow up"))
	require.Equal(t, "ok", h.lastText())
}

func TestStop_BeforeFirstByteRebuildsWithUserTurn(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"never"}, Gate: gate})
	ctx := context.Background()
	h.o.NewSession(ctx)

	done := h.sendAsync("question")
	waitFor(t, func() bool { return h.o.State() == Streaming })
	require.True(t, h.o.Stop())
	require.True(t, <-done)

	last, ok := h.fake.Last()
	require.True(t, ok)
	require.Equal(t, []transport.Turn{{Role: model.RoleUser, Text: "question"}}, last.History)
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestNewSession_ClearsAndReinitializes(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	first := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "hello"))
	h.o.SetInput("draft")

	second := h.o.NewSession(ctx)
	require.NotEqual(t, first, second)

	snap := h.o.Snapshot()
	require.Equal(t, second, snap.SessionID)
	require.Empty(t, snap.Messages)
	require.Empty(t, snap.Input)

	last, ok := h.fake.Last()
	require.True(t, ok)
	require.Empty(t, last.History)

	sessions, err := h.o.Sessions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{second, first}, []string{sessions[0].ID, sessions[1].ID})
}

func TestSelectSession_RestoresHistory(t *testing.T) {
	h := newHarness(t, settings.Default(),
		transporttest.Reply{Fragments: []string{"reply A"}},
		transporttest.Reply{Fragments: []string{"reply B"}},
	)
	ctx := context.Background()

	a := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "question A"))
	b := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "question B"))

	require.NoError(t, h.o.SelectSession(ctx, a))
	require.Equal(t, a, h.o.Snapshot().SessionID)
	if diff := cmp.Diff(h.stored(t, a), h.o.Snapshot().Messages); diff != "" {
		t.Errorf("displayed A mismatch (-stored +displayed):\n%s", diff)
	}

	last, _ := h.fake.Last()
	require.Equal(t, []transport.Turn{
		{Role: model.RoleUser, Text: "question A"},
		{Role: model.RoleModel, Text: "reply A"},
	}, last.History)

	require.NoError(t, h.o.SelectSession(ctx, b))
	if diff := cmp.Diff(h.stored(t, b), h.o.Snapshot().Messages); diff != "" {
		t.Errorf("displayed B mismatch (-stored +displayed):\n%s", diff)
	}
}

func TestSelectSession_UnknownChangesNothing(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	id := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "keep me"))
	before := h.o.Snapshot()
	created := len(h.fake.Created())

	err := h.o.SelectSession(ctx, "no-such-session")
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	after := h.o.Snapshot()
	require.Equal(t, id, after.SessionID)
	require.Equal(t, before.Messages, after.Messages)
	require.Len(t, h.fake.Created(), created)
}

func TestSelectSession_WhileStreamingDoesNotInterleave(t *testing.T) {
	h := newHarness(t, settings.Default(),
		transporttest.Reply{Fragments: []string{"reply B"}},
		transporttest.Reply{Fragments: []string{"slow reply"}, Hold: true},
	)
	ctx := context.Background()

	b := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "question B"))
	a := h.o.NewSession(ctx)

	done := h.sendAsync("question A")
	waitFor(t, func() bool { return h.lastText() == "slow reply" })

	require.NoError(t, h.o.SelectSession(ctx, b))
	require.True(t, <-done)

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Equal(t, b, snap.SessionID)
	if diff := cmp.Diff(h.stored(t, b), snap.Messages); diff != "" {
		t.Errorf("displayed list mismatch (-stored B +displayed):\n%s", diff)
	}
	for _, m := range snap.Messages {
		require.NotContains(t, m.Text, "slow")
	}

	// The interrupted reply was kept in A.
	storedA := h.stored(t, a)
	require.Len(t, storedA, 2)
	require.Equal(t, "slow reply", storedA[1].Text)
}

func TestEvents_SeqOrdersDeliveryAcrossGoroutines(t *testing.T) {
	h := newHarness(t, settings.Default(),
		transporttest.Reply{Fragments: []string{"reply B"}},
		transporttest.Reply{Fragments: []string{"slow reply"}, Hold: true},
	)
	ctx := context.Background()

	b := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "question B"))
	h.o.NewSession(ctx)

	// Hold back the stream goroutine's final event until the switch to B has
	// been delivered, then keep only the newest snapshot as a view would.
	release := make(chan struct{})
	var (
		mu     sync.Mutex
		latest Snapshot
		seqs   []uint64
	)
	h.o.Subscribe(func(ev Event) {
		if ev.Kind == StateChanged && ev.Snapshot.State == Idle && ev.Snapshot.SessionID != b {
			<-release
		}
		mu.Lock()
		defer mu.Unlock()
		seqs = append(seqs, ev.Snapshot.Seq)
		if ev.Snapshot.Seq >= latest.Seq {
			latest = ev.Snapshot
		}
	})

	done := h.sendAsync("question A")
	waitFor(t, func() bool { return h.lastText() == "slow reply" })

	require.NoError(t, h.o.SelectSession(ctx, b))
	close(release)
	require.True(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, b, latest.SessionID)
	if diff := cmp.Diff(h.stored(t, b), latest.Messages); diff != "" {
		t.Errorf("latest snapshot mismatch (-stored B +snapshot):\n%s", diff)
	}
	require.NotEmpty(t, seqs)
	require.Less(t, seqs[len(seqs)-1], latest.Seq, "the held-back event arrives last but is older")
}

func TestDeleteSession_Active(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	id := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "hello"))
	h.o.SetInput("draft")

	require.NoError(t, h.o.DeleteSession(ctx, id))

	snap := h.o.Snapshot()
	require.Empty(t, snap.SessionID)
	require.Empty(t, snap.Messages)
	require.Empty(t, snap.Input)

	_, err := h.store.Get(ctx, id)
	require.ErrorIs(t, err, storage.ErrSessionNotFound)

	last, _ := h.fake.Last()
	require.Empty(t, last.History)
}

func TestDeleteSession_NonActive(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	other := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "other"))
	active := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "active"))
	before := h.o.Snapshot()
	created := len(h.fake.Created())

	require.NoError(t, h.o.DeleteSession(ctx, other))

	after := h.o.Snapshot()
	require.Equal(t, active, after.SessionID)
	require.Equal(t, before.Messages, after.Messages)
	require.Len(t, h.fake.Created(), created)

	sessions, err := h.o.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, active, sessions[0].ID)
}

func TestDeleteSession_Unknown(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	require.ErrorIs(t, h.o.DeleteSession(ctx, "missing"), storage.ErrSessionNotFound)
}

func TestDeleteSession_ActiveWhileStreaming(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"streaming"}, Hold: true})
	ctx := context.Background()
	id := h.o.NewSession(ctx)

	done := h.sendAsync("q")
	waitFor(t, func() bool { return h.lastText() == "streaming" })

	require.NoError(t, h.o.DeleteSession(ctx, id))
	require.True(t, <-done)

	snap := h.o.Snapshot()
	require.Equal(t, Idle, snap.State)
	require.Empty(t, snap.SessionID)
	require.Empty(t, snap.Messages)
}

func TestIncognito_NeverListed(t *testing.T) {
	s := settings.Default()
	s.Incognito = true
	h := newHarness(t, s)
	ctx := context.Background()

	id := h.o.NewSession(ctx)
	for i := 0; i < 3; i++ {
		require.True(t, h.o.Send(ctx, fmt.Sprintf("secret %d", i)))
	}

	require.Len(t, h.o.Snapshot().Messages, 6)
	sessions, err := h.o.Sessions(ctx)
	require.NoError(t, err)
	require.Empty(t, sessions)

	// The active incognito session can still be discarded.
	require.NoError(t, h.o.DeleteSession(ctx, id))
	require.Empty(t, h.o.Snapshot().Messages)
}

func TestTitle_DerivedFromFirstMessage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Explain quantum computing in simple terms please", "Explain quantum computing in s..."},
		{"Hi", "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h := newHarness(t, settings.Default())
			ctx := context.Background()
			id := h.o.NewSession(ctx)

			require.True(t, h.o.Send(ctx, tt.input))
			require.True(t, h.o.Send(ctx, "a follow-up that must not rename it"))

			sess, err := h.store.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, tt.want, sess.Title)
		})
	}
}

func TestLogout_ClearsDisplayKeepsStore(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "hello"))
	h.o.SetInput("draft")

	h.o.Logout(ctx)

	snap := h.o.Snapshot()
	require.Empty(t, snap.SessionID)
	require.Empty(t, snap.Messages)
	require.Empty(t, snap.Input)

	sessions, err := h.o.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSaveSettings_CarriesHistory(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"first reply"}})
	ctx := context.Background()
	h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "first"))
	before := h.o.Snapshot().Messages

	s := h.o.Settings()
	s.EnableThinking = true
	s.ThinkingBudget = 2048
	s.Temperature = 1.2
	require.NoError(t, h.o.SaveSettings(ctx, s))

	require.Equal(t, before, h.o.Snapshot().Messages)
	require.Equal(t, s, h.o.Settings())
	require.Equal(t, []settings.AppSettings{s}, h.saver.saved)

	require.True(t, h.o.Send(ctx, "second"))

	last, ok := h.fake.Last()
	require.True(t, ok)
	require.NotNil(t, last.ThinkingBudget)
	require.Equal(t, 2048, *last.ThinkingBudget)
	require.Equal(t, 1.2, last.Temperature)
	require.Equal(t, []transport.Turn{
		{Role: model.RoleUser, Text: "first"},
		{Role: model.RoleModel, Text: "first reply"},
	}, last.History)
	require.Equal(t, []string{"first", "second"}, h.fake.Sent())
}

func TestSaveSettings_RejectsInvalid(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)
	created := len(h.fake.Created())

	s := h.o.Settings()
	s.Temperature = 5
	require.ErrorIs(t, h.o.SaveSettings(ctx, s), settings.ErrInvalid)

	require.Equal(t, settings.Default(), h.o.Settings())
	require.Empty(t, h.saver.saved)
	require.Len(t, h.fake.Created(), created)
}

func TestSaveSettings_SaverFailureStillApplies(t *testing.T) {
	h := newHarness(t, settings.Default())
	h.saver.err = errors.New("disk full")
	ctx := context.Background()

	s := h.o.Settings()
	s.Personality = settings.PersonalityStrict
	err := h.o.SaveSettings(ctx, s)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, settings.PersonalityStrict, h.o.Settings().Personality)
}

func TestApplySettings_DoesNotSave(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()

	s := h.o.Settings()
	s.Model = "gemini-2.5-pro"
	require.NoError(t, h.o.ApplySettings(ctx, s))

	require.Empty(t, h.saver.saved)
	last, ok := h.fake.Last()
	require.True(t, ok)
	require.Equal(t, "gemini-2.5-pro", last.Model)
}

func TestToggleThinking(t *testing.T) {
	h := newHarness(t, settings.Default())
	ctx := context.Background()
	h.o.NewSession(ctx)

	require.NoError(t, h.o.ToggleThinking(ctx))
	require.True(t, h.o.Settings().EnableThinking)
	require.Equal(t, "[System: Thinking Mode Enabled] ", h.o.Input())
	last, _ := h.fake.Last()
	require.NotNil(t, last.ThinkingBudget)

	require.NoError(t, h.o.ToggleThinking(ctx))
	require.False(t, h.o.Settings().EnableThinking)
	require.Equal(t, "[System: Thinking Mode Enabled] [System: Thinking Mode Disabled] ", h.o.Input())
	last, _ = h.fake.Last()
	require.Nil(t, last.ThinkingBudget)
}

func TestSettingsChange_WhileStreamingStopsFirst(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"half"}, Hold: true})
	ctx := context.Background()
	h.o.NewSession(ctx)

	done := h.sendAsync("q")
	waitFor(t, func() bool { return h.lastText() == "half" })

	s := h.o.Settings()
	s.Temperature = 0.1
	require.NoError(t, h.o.SaveSettings(ctx, s))
	require.True(t, <-done)

	last, _ := h.fake.Last()
	require.Equal(t, []transport.Turn{
		{Role: model.RoleUser, Text: "q"},
		{Role: model.RoleModel, Text: "half"},
	}, last.History)
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

func TestApplyPromptAction(t *testing.T) {
	tests := []struct {
		action  PromptAction
		want    string
		wantErr error
	}{
		{ActionImage, "Generate an image of ", nil},
		{ActionDeepResearch, "Conduct deep research on: ", nil},
		{ActionShopping, "Find the best price for: ", nil},
		{ActionStudy, "Create a study plan for: ", nil},
		{ActionWebSearch, "Search the web for: ", nil},
		{"  WEB_SEARCH ", "Search the web for: ", nil},
		{ActionCanvas, "", ErrComingSoon},
		{ActionSpotify, "", ErrComingSoon},
		{"teleport", "", ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			h := newHarness(t, settings.Default())
			err := h.o.ApplyPromptAction(tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, h.o.Input())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, h.o.Input())
		})
	}
}

func TestPromptActions_Sorted(t *testing.T) {
	got := PromptActions()
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1], got[i])
	}
}

func TestAttachFile(t *testing.T) {
	h := newHarness(t, settings.Default())
	h.o.SetInput("look: ")

	h.o.AttachFile("/home/me/reports/q3.pdf")
	h.o.AttachFile("   ")

	require.Equal(t, "look: [Attached: q3.pdf] ", h.o.Input())
}

func TestApplySuggestion(t *testing.T) {
	h := newHarness(t, settings.Default())
	h.o.SetInput("draft")

	require.NoError(t, h.o.ApplySuggestion(1))
	require.Equal(t, "Plan a trip to Kyoto for 3 days in spring", h.o.Input())

	require.NoError(t, h.o.ApplySuggestion(4))
	require.Equal(t, "Write a thank you note for a job interview", h.o.Input())

	require.ErrorIs(t, h.o.ApplySuggestion(0), ErrUnknownSuggestion)
	require.ErrorIs(t, h.o.ApplySuggestion(len(Suggestions())+1), ErrUnknownSuggestion)
	require.Equal(t, "Write a thank you note for a job interview", h.o.Input())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	h := newHarness(t, settings.Default())

	var count atomic.Int32
	unsubscribe := h.o.Subscribe(func(Event) { count.Add(1) })
	h.o.SetInput("a")
	unsubscribe()
	h.o.SetInput("b")

	require.Equal(t, int32(1), count.Load())
}

func TestCurrent_AndSearch(t *testing.T) {
	h := newHarness(t, settings.Default(), transporttest.Reply{Fragments: []string{"Goroutines are cheap."}})
	ctx := context.Background()

	_, ok := h.o.Current(ctx)
	require.False(t, ok)

	id := h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "Tell me about goroutines"))

	cur, ok := h.o.Current(ctx)
	require.True(t, ok)
	require.Equal(t, id, cur.ID)
	require.Equal(t, "Tell me about goroutines", cur.Title)
	require.Len(t, cur.Messages, 2)

	found, err := h.o.SearchSessions(ctx, "CHEAP")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = h.o.SearchSessions(ctx, "channels")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestCurrent_Incognito(t *testing.T) {
	s := settings.Default()
	s.Incognito = true
	h := newHarness(t, s)
	ctx := context.Background()
	h.o.NewSession(ctx)
	require.True(t, h.o.Send(ctx, "Hi"))

	cur, ok := h.o.Current(ctx)
	require.True(t, ok)
	require.Equal(t, "Hi", cur.Title)
	require.Len(t, cur.Messages, 2)
}
