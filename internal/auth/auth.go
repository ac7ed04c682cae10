// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the mock sign-in used to gate the chat screen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
)

var (
	// ErrInvalidEmail is returned for an address that does not parse.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUnknownProvider is returned for a social provider with no button.
	ErrUnknownProvider = errors.New("unknown sign-in provider")
)

// Social sign-in providers.
const (
	ProviderGoogle    = "Google"
	ProviderApple     = "Apple"
	ProviderMicrosoft = "Microsoft"
	ProviderPhone     = "Phone"
)

// Providers lists the social sign-in options in display order.
var Providers = []string{ProviderGoogle, ProviderApple, ProviderMicrosoft, ProviderPhone}

// =============================================================================
// USER
// =============================================================================

// User is the signed-in identity.
type User struct {
	Email    string
	Provider string // "" for email sign-in
	LoginAt  time.Time
}

// DisplayName is the local part of the email address.
func (u User) DisplayName() string {
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

// Initial is the upper-cased first letter of the email, for avatars.
func (u User) Initial() string {
	for _, r := range u.Email {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// =============================================================================
// VALIDATION
// =============================================================================

// NormalizeEmail trims addr and checks that it is a bare address. Display
// names ("Ada <ada@example.com>") are rejected.
func NormalizeEmail(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Name != "" || parsed.Address != addr {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
	}
	return parsed.Address, nil
}

// SocialEmail returns the mock address for a social provider: Google maps to
// user@gmail.com, anything else to <provider>@example.com.
func SocialEmail(provider string) (string, error) {
	for _, p := range Providers {
		if strings.EqualFold(p, provider) {
			if p == ProviderGoogle {
				return "user@gmail.com", nil
			}
			return strings.ToLower(p) + "@example.com", nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
}

// =============================================================================
// MANAGER
// =============================================================================

// Config configures a Manager.
type Config struct {
	// Delay simulates the network round trip of a sign-in.
	Delay time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Manager tracks the signed-in user. It is safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	user  *User
	delay time.Duration
	now   func() time.Time
}

// NewManager creates a signed-out manager.
func NewManager(cfg Config) *Manager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{delay: cfg.Delay, now: now}
}

// LoginEmail signs in with addr after the simulated delay.
func (m *Manager) LoginEmail(ctx context.Context, addr string) (User, error) {
	email, err := NormalizeEmail(addr)
	if err != nil {
		return User{}, err
	}
	return m.login(ctx, email, "")
}

// LoginSocial signs in through a social provider after the simulated delay.
func (m *Manager) LoginSocial(ctx context.Context, provider string) (User, error) {
	email, err := SocialEmail(provider)
	if err != nil {
		return User{}, err
	}
	for _, p := range Providers {
		if strings.EqualFold(p, provider) {
			provider = p
		}
	}
	return m.login(ctx, email, provider)
}

func (m *Manager) login(ctx context.Context, email, provider string) (User, error) {
	if m.delay > 0 {
		t := time.NewTimer(m.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return User{}, ctx.Err()
		}
	}

	u := User{Email: email, Provider: provider, LoginAt: m.now()}
	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return u, nil
}

// Current returns the signed-in user.
func (m *Manager) Current() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// LoggedIn reports whether anyone is signed in.
func (m *Manager) LoggedIn() bool {
	_, ok := m.Current()
	return ok
}

// Logout signs the user out.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}
