// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across gemclone.
//
// The terminal belongs to the chat UI, so logs go to a file by default.
// Components take a *zap.Logger and call Named on it.
//
// # Usage
//
//	log, err := logging.New(cfg.Log)
//	if err != nil {
//	    return err
//	}
//	defer log.Sync()
//	orch := chat.New(chat.Config{Logger: log.Named("chat")})
package logging
