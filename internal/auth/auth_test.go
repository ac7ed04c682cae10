// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ada@example.com", "ada@example.com", false},
		{"  ada@example.com\n", "ada@example.com", false},
		{"first.last+tag@sub.example.org", "first.last+tag@sub.example.org", false},
		{"", "", true},
		{"   ", "", true},
		{"not-an-email", "", true},
		{"@example.com", "", true},
		{"Ada <ada@example.com>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Errorf("NormalizeEmail(%q) error = %v, want ErrInvalidEmail", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEmail(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSocialEmail(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"Google", "user@gmail.com"},
		{"google", "user@gmail.com"},
		{"Apple", "apple@example.com"},
		{"Microsoft", "microsoft@example.com"},
		{"Phone", "phone@example.com"},
	}
	for _, tt := range tests {
		got, err := SocialEmail(tt.provider)
		if err != nil {
			t.Fatalf("SocialEmail(%q): %v", tt.provider, err)
		}
		if got != tt.want {
			t.Errorf("SocialEmail(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}

	_, err := SocialEmail("MySpace")
	require.ErrorIs(t, err, ErrUnknownProvider)
}

func TestManager_LoginLogout(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewManager(Config{Now: func() time.Time { return now }})
	require.False(t, m.LoggedIn())

	u, err := m.LoginEmail(context.Background(), "grace@example.com")
	require.NoError(t, err)
	require.Equal(t, User{Email: "grace@example.com", LoginAt: now}, u)
	require.Equal(t, "grace", u.DisplayName())
	require.Equal(t, "G", u.Initial())

	cur, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, u, cur)

	m.Logout()
	require.False(t, m.LoggedIn())
}

func TestManager_LoginSocial(t *testing.T) {
	m := NewManager(Config{})
	u, err := m.LoginSocial(context.Background(), "microsoft")
	require.NoError(t, err)
	require.Equal(t, "microsoft@example.com", u.Email)
	require.Equal(t, ProviderMicrosoft, u.Provider)
}

func TestManager_InvalidEmailStaysLoggedOut(t *testing.T) {
	m := NewManager(Config{})
	_, err := m.LoginEmail(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidEmail)
	require.False(t, m.LoggedIn())
}

func TestManager_DelayHonorsContext(t *testing.T) {
	m := NewManager(Config{Delay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.LoginEmail(ctx, "ada@example.com")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, m.LoggedIn())
}

func TestManager_DelayElapses(t *testing.T) {
	m := NewManager(Config{Delay: 5 * time.Millisecond})
	start := time.Now()
	_, err := m.LoginSocial(context.Background(), ProviderGoogle)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
