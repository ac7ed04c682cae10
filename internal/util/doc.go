// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across gemclone.
//
// # Key Functions
//
// String Utilities:
//   - PrefixRunes: UTF-8 safe prefix with an appended ellipsis when cut
//   - TruncateRunes: UTF-8 safe truncation that fits the ellipsis inside the limit
//   - TruncateWidth: display-width truncation for terminal columns
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.PrefixRunes(firstMessage, 30)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
