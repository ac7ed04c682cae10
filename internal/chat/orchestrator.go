// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates a conversation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/gemclone/internal/model"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/storage"
	"github.com/jeranaias/gemclone/internal/transport"
)

// ErrorText replaces a reply whose stream failed. Provider error text is
// logged, never shown.
const ErrorText = "Sorry, I encountered an error processing your request."

// DefaultPacing is the delay between revealed tokens.
const DefaultPacing = 10 * time.Millisecond

// SettingsSaver persists settings on SaveSettings.
type SettingsSaver interface {
	Save(settings.AppSettings) error
}

// =============================================================================
// CONFIG
// =============================================================================

// Config configures an Orchestrator. Adapter is required.
type Config struct {
	Store    storage.Store
	Adapter  *transport.Adapter
	Settings settings.AppSettings
	// Saver is optional.
	Saver SettingsSaver
	// Pacing separates token reveals; 0 reveals tokens as fast as they arrive.
	Pacing time.Duration
	Logger *zap.Logger

	// Now and NewID default to time.Now and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns the displayed conversation. It is safe for concurrent
// use; all state sits behind one mutex and only the goroutine inside Send
// drives a stream.
type Orchestrator struct {
	store   storage.Store
	adapter *transport.Adapter
	saver   SettingsSaver
	pacing  time.Duration
	log     *zap.Logger
	now     func() time.Time
	newID   func() string

	mu        sync.Mutex
	state     State
	settings  settings.AppSettings
	sessionID string
	messages  []model.Message
	input     string
	seq       uint64

	// in-flight stream
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool

	subMu       sync.RWMutex
	subscribers map[int]func(Event)
	nextSub     int
}

// New creates an orchestrator with no active session. Call NewSession (or
// just Send) to start one.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		store:       cfg.Store,
		adapter:     cfg.Adapter,
		saver:       cfg.Saver,
		pacing:      cfg.Pacing,
		log:         cfg.Logger,
		now:         cfg.Now,
		newID:       cfg.NewID,
		settings:    cfg.Settings,
		subscribers: make(map[int]func(Event)),
	}
	if o.store == nil {
		o.store = storage.NewMemoryStore()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn for every event and returns a function that removes it.
func (o *Orchestrator) Subscribe(fn func(Event)) (unsubscribe func()) {
	o.subMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.subMu.Unlock()

	return func() {
		o.subMu.Lock()
		delete(o.subscribers, id)
		o.subMu.Unlock()
	}
}

// emit delivers events. It must be called without o.mu held, so events from
// different goroutines can arrive out of order; Snapshot.Seq orders them.
func (o *Orchestrator) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	o.subMu.RLock()
	subs := make([]func(Event), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.subMu.RUnlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// snapshotLocked copies the displayed state. Caller holds o.mu.
func (o *Orchestrator) snapshotLocked() Snapshot {
	o.seq++
	return Snapshot{
		Seq:       o.seq,
		State:     o.state,
		SessionID: o.sessionID,
		Messages:  model.CloneMessages(o.messages),
		Input:     o.input,
		Settings:  o.settings,
	}
}

// eventsLocked builds one event per kind sharing a single snapshot.
func (o *Orchestrator) eventsLocked(kinds ...EventKind) []Event {
	snap := o.snapshotLocked()
	events := make([]Event, len(kinds))
	for i, k := range kinds {
		events[i] = Event{Kind: k, Snapshot: snap}
	}
	return events
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Snapshot returns a copy of the displayed state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// State returns the send state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Settings returns the current settings.
func (o *Orchestrator) Settings() settings.AppSettings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Input returns the input buffer.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// Sessions lists the stored sessions, newest first.
func (o *Orchestrator) Sessions(ctx context.Context) ([]model.ChatSession, error) {
	return o.store.List(ctx)
}

// SearchSessions returns stored sessions whose title or text contains query.
func (o *Orchestrator) SearchSessions(ctx context.Context, query string) ([]model.ChatSession, error) {
	return storage.Search(ctx, o.store, query)
}

// Current returns the active session as displayed. A session that is not in
// the store (incognito) is built from the displayed messages. It returns
// false with no active session.
func (o *Orchestrator) Current(ctx context.Context) (model.ChatSession, bool) {
	snap := o.Snapshot()
	if snap.SessionID == "" {
		return model.ChatSession{}, false
	}
	if sess, err := o.store.Get(ctx, snap.SessionID); err == nil {
		sess.Messages = snap.Messages
		return sess, true
	}
	now := o.now()
	sess := model.NewChatSession(snap.SessionID, now)
	sess.ApplyMessages(snap.Messages, now)
	return sess, true
}

// =============================================================================
// INPUT BUFFER
// =============================================================================

// SetInput replaces the input buffer.
func (o *Orchestrator) SetInput(text string) {
	o.mu.Lock()
	o.input = text
	events := o.eventsLocked(InputChanged)
	o.mu.Unlock()
	o.emit(events...)
}

// appendInput adds text to the end of the input buffer.
func (o *Orchestrator) appendInput(text string) {
	o.mu.Lock()
	o.input += text
	events := o.eventsLocked(InputChanged)
	o.mu.Unlock()
	o.emit(events...)
}

// =============================================================================
// STREAM CONTROL
// =============================================================================

// lockIdle acquires o.mu with no stream in flight, stopping and waiting for
// any running stream first.
func (o *Orchestrator) lockIdle() {
	for {
		o.mu.Lock()
		if o.state == Idle {
			return
		}
		o.stopped = true
		cancel, done := o.cancel, o.done
		o.mu.Unlock()

		cancel()
		<-done
	}
}

// Stop cancels the in-flight reply. Text already shown is kept and
// persisted; an empty placeholder is removed. It returns false when idle.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	if o.state != Streaming {
		o.mu.Unlock()
		return false
	}
	o.stopped = true
	cancel := o.cancel
	o.mu.Unlock()

	cancel()
	return true
}

// Shutdown stops any in-flight reply and waits for it to settle.
func (o *Orchestrator) Shutdown() {
	o.lockIdle()
	o.mu.Unlock()
}

// =============================================================================
// SEND
// =============================================================================

// Submit sends the current input buffer.
func (o *Orchestrator) Submit(ctx context.Context) bool {
	return o.Send(ctx, o.Input())
}

// Send posts text as a user message and streams the reply into a model
// message, blocking until the reply settles. Blank text, or a call while a
// reply is already streaming, does nothing and returns false. With no active
// session a new one is started first.
func (o *Orchestrator) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return false
	}

	o.mu.Lock()
	if o.state != Idle {
		o.mu.Unlock()
		return false
	}

	var kinds []EventKind
	if o.sessionID == "" {
		o.startSessionLocked(ctx)
		kinds = append(kinds, SessionsChanged)
	}

	now := o.now()
	o.input = ""
	o.messages = append(o.messages, model.NewUserMessage(o.newID(), text, now))
	if o.persistLocked(ctx) {
		kinds = append(kinds, SessionsChanged)
	}

	replyID := o.newID()
	o.messages = append(o.messages, model.NewModelPlaceholder(replyID, now))

	streamCtx, cancel := context.WithCancel(ctx)
	o.state = Streaming
	o.cancel = cancel
	o.done = make(chan struct{})
	o.stopped = false

	kinds = append(kinds, InputChanged, MessagesChanged, StateChanged)
	events := o.eventsLocked(kinds...)
	o.mu.Unlock()
	o.emit(events...)

	err := o.stream(streamCtx, text, replyID)
	cancel()
	o.finish(context.WithoutCancel(ctx), replyID, err)
	return true
}

// stream reveals the reply token by token into the message replyID.
func (o *Orchestrator) stream(ctx context.Context, text, replyID string) error {
	p := newPacer(o.pacing)
	var shown strings.Builder

	for fragment, err := range o.adapter.SendStream(ctx, text) {
		if err != nil {
			return err
		}
		for _, tok := range SplitTokens(fragment) {
			if err := p.wait(ctx); err != nil {
				return err
			}
			shown.WriteString(tok)
			o.setReplyText(replyID, shown.String())
		}
	}
	return nil
}

func (o *Orchestrator) setReplyText(replyID, text string) {
	o.mu.Lock()
	i := o.indexLocked(replyID)
	if i < 0 {
		o.mu.Unlock()
		return
	}
	o.messages[i].Text = text
	msg := o.messages[i]
	ev := Event{Kind: MessageUpdated, Snapshot: o.snapshotLocked(), Message: msg}
	o.mu.Unlock()
	o.emit(ev)
}

// finish settles the reply and returns to Idle.
func (o *Orchestrator) finish(ctx context.Context, replyID string, err error) {
	o.mu.Lock()

	i := o.indexLocked(replyID)
	cancelled := err != nil && (o.stopped || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
	kinds := []EventKind{StateChanged}

	switch {
	case err == nil, cancelled:
		if cancelled {
			o.log.Info("reply stopped", zap.String("session", o.sessionID))
		}
		if i >= 0 && o.messages[i].Text == "" && cancelled {
			o.messages = append(o.messages[:i], o.messages[i+1:]...)
			kinds = append(kinds, MessagesChanged)
		}
		if o.persistLocked(ctx) {
			kinds = append(kinds, SessionsChanged)
		}
		// Providers record a turn only when its stream completes, so a
		// stopped turn is missing from the chat until it is rebuilt.
		if cancelled {
			_ = o.adapter.Initialize(ctx, o.settings, o.messages)
		}

	default:
		o.log.Error("reply failed", zap.String("session", o.sessionID), zap.Error(err))
		if i >= 0 {
			o.messages[i].Text = ErrorText
			o.messages[i].IsError = true
			kinds = append(kinds, MessagesChanged)
		}
	}

	o.state = Idle
	o.cancel = nil
	o.stopped = false
	close(o.done)
	o.done = nil

	events := o.eventsLocked(kinds...)
	o.mu.Unlock()
	o.emit(events...)
}

func (o *Orchestrator) indexLocked(id string) int {
	for i := range o.messages {
		if o.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the displayed messages to the active session unless
// incognito is on. A session missing from the store (started while incognito)
// is created first. Failures are logged. It reports whether the store changed.
func (o *Orchestrator) persistLocked(ctx context.Context) bool {
	if o.settings.Incognito || o.sessionID == "" {
		return false
	}

	now := o.now()
	_, err := o.store.Update(ctx, o.sessionID, o.messages, now)
	if errors.Is(err, storage.ErrSessionNotFound) {
		if err = o.store.Create(ctx, model.NewChatSession(o.sessionID, now)); err == nil {
			_, err = o.store.Update(ctx, o.sessionID, o.messages, now)
		}
	}
	if err != nil {
		o.log.Error("failed to persist session", zap.String("session", o.sessionID), zap.Error(err))
		return false
	}
	return true
}

// =============================================================================
// SESSIONS
// =============================================================================

// startSessionLocked makes a fresh empty session active and rebuilds the chat
// with no history. The session is stored unless incognito is on.
func (o *Orchestrator) startSessionLocked(ctx context.Context) {
	now := o.now()
	sess := model.NewChatSession(o.newID(), now)
	if !o.settings.Incognito {
		if err := o.store.Create(ctx, sess); err != nil {
			o.log.Error("failed to store new session", zap.String("session", sess.ID), zap.Error(err))
		}
	}
	o.sessionID = sess.ID
	o.messages = nil
	// A failed rebuild is logged by the adapter and retried on the next send.
	_ = o.adapter.Initialize(ctx, o.settings, nil)
}

// NewSession starts an empty session and clears the input. A reply in flight
// is stopped first.
func (o *Orchestrator) NewSession(ctx context.Context) string {
	o.lockIdle()
	o.startSessionLocked(ctx)
	o.input = ""
	id := o.sessionID
	events := o.eventsLocked(SessionsChanged, MessagesChanged, InputChanged)
	o.mu.Unlock()
	o.emit(events...)
	return id
}

// SelectSession shows the stored messages of id and rebuilds the chat with
// them as history. An unknown id returns storage.ErrSessionNotFound and
// changes nothing. A reply in flight is stopped first.
func (o *Orchestrator) SelectSession(ctx context.Context, id string) error {
	if _, err := o.store.Get(ctx, id); err != nil {
		return err
	}

	o.lockIdle()
	// Re-read: stopping a reply in this same session may have just saved it.
	sess, err := o.store.Get(ctx, id)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	o.sessionID = sess.ID
	o.messages = model.CloneMessages(sess.Messages)
	_ = o.adapter.Initialize(ctx, o.settings, o.messages)
	events := o.eventsLocked(MessagesChanged, SessionsChanged)
	o.mu.Unlock()
	o.emit(events...)
	return nil
}

// DeleteSession removes id from the store. When it is the active session the
// display is cleared and the chat rebuilt with no history; a reply in flight
// is stopped first. Other sessions are removed without touching the display.
func (o *Orchestrator) DeleteSession(ctx context.Context, id string) error {
	o.mu.Lock()
	active := id != "" && id == o.sessionID
	if active && o.state != Idle {
		o.mu.Unlock()
		o.lockIdle()
		active = id == o.sessionID
	}

	err := o.store.Delete(ctx, id)
	if err != nil && !(active && errors.Is(err, storage.ErrSessionNotFound)) {
		o.mu.Unlock()
		return err
	}

	kinds := []EventKind{SessionsChanged}
	if active {
		o.sessionID = ""
		o.messages = nil
		o.input = ""
		_ = o.adapter.Initialize(ctx, o.settings, nil)
		kinds = append(kinds, MessagesChanged, InputChanged)
	}
	events := o.eventsLocked(kinds...)
	o.mu.Unlock()
	o.emit(events...)
	return nil
}

// Logout stops any reply and clears the displayed conversation. Stored
// sessions are kept.
func (o *Orchestrator) Logout(ctx context.Context) {
	o.lockIdle()
	o.sessionID = ""
	o.messages = nil
	o.input = ""
	events := o.eventsLocked(MessagesChanged, InputChanged, SessionsChanged)
	o.mu.Unlock()
	o.emit(events...)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveSettings validates s, makes it current, saves it through the
// configured saver and rebuilds the chat with the displayed messages as
// history. A reply in flight is stopped first.
func (o *Orchestrator) SaveSettings(ctx context.Context, s settings.AppSettings) error {
	return o.applySettings(ctx, s, true)
}

// ApplySettings is SaveSettings without saving, for settings that were
// changed on disk.
func (o *Orchestrator) ApplySettings(ctx context.Context, s settings.AppSettings) error {
	return o.applySettings(ctx, s, false)
}

func (o *Orchestrator) applySettings(ctx context.Context, s settings.AppSettings, save bool) error {
	if err := s.Validate(); err != nil {
		return err
	}

	o.lockIdle()
	o.settings = s
	var saveErr error
	if save && o.saver != nil {
		if err := o.saver.Save(s); err != nil {
			o.log.Error("failed to save settings", zap.Error(err))
			saveErr = fmt.Errorf("settings applied but not saved: %w", err)
		}
	}
	_ = o.adapter.Initialize(ctx, s, o.messages)
	events := o.eventsLocked(SettingsChanged)
	o.mu.Unlock()
	o.emit(events...)
	return saveErr
}

// ToggleThinking flips thinking mode, applies it like SaveSettings and notes
// the change in the input buffer.
func (o *Orchestrator) ToggleThinking(ctx context.Context) error {
	s := o.Settings()
	s.EnableThinking = !s.EnableThinking
	err := o.SaveSettings(ctx, s)
	if err != nil && errors.Is(err, settings.ErrInvalid) {
		return err
	}

	state := "Disabled"
	if s.EnableThinking {
		state = "Enabled"
	}
	o.appendInput("[System: Thinking Mode " + state + "] ")
	return err
}
