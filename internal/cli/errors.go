// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the gemclone command line.
//
// Commands return errors and never print and exit themselves. Execute maps
// the returned error onto a process exit code.
package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/gemclone/internal/auth"
	"github.com/jeranaias/gemclone/internal/config"
	"github.com/jeranaias/gemclone/internal/settings"
	"github.com/jeranaias/gemclone/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file error
	ExitConfigError = 3
	// ExitAuthError indicates a failed sign-in
	ExitAuthError = 4
	// ExitNotFoundError indicates a session was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError wraps a bad flag, argument or value.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ConfigError wraps a failure to load the configuration file.
type ConfigError struct {
	Path string // empty for the default location
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ExitCode maps err onto a process exit code.
func ExitCode(err error) int {
	var (
		usage   *UsageError
		cfgErr  *ConfigError
		invalid config.ValidateErrors
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage), errors.Is(err, settings.ErrInvalid), errors.Is(err, storage.ErrInvalidID):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &invalid):
		return ExitConfigError
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrUnknownProvider):
		return ExitAuthError
	case errors.Is(err, storage.ErrSessionNotFound):
		return ExitNotFoundError
	default:
		return ExitGeneralError
	}
}
