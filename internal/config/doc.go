// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides process configuration loading for gemclone.
//
// Supports TOML, JSON and YAML configuration formats, with sensible defaults,
// environment variable overrides, and validation. Chat settings the user edits
// from inside the app live in the settings package, not here.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - ProviderConfig: which chat backend to use and its credentials
//   - StorageConfig: session store backend and location
//   - StreamConfig: reply pacing
//   - LogConfig: zap logger level, encoding and output file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GEMINI_API_KEY, GEMCLONE_*)
//   - ~/.gemclone/config.toml
//   - ~/.gemclone/config.json
//   - ~/.gemclone/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	pacing := cfg.Stream.Pacing()
package config
