// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns message markdown into terminal output.
package render

import "strings"

// Block is a run of prose or one fenced code block.
type Block struct {
	Code     bool
	Language string
	Text     string
}

// SplitBlocks separates fenced code blocks from the prose around them. An
// unclosed fence runs to the end of the text, which is what a reply looks
// like while it is still streaming.
func SplitBlocks(text string) []Block {
	var (
		blocks []Block
		prose  []string
		code   []string
		lang   string
		inCode bool
	)

	flushProse := func() {
		if len(prose) == 0 {
			return
		}
		joined := strings.Join(prose, "\n")
		if strings.TrimSpace(joined) != "" {
			blocks = append(blocks, Block{Text: joined})
		}
		prose = nil
	}

	for _, line := range strings.Split(text, "\n") {
		fence := strings.HasPrefix(strings.TrimSpace(line), "```")
		switch {
		case fence && inCode:
			blocks = append(blocks, Block{Code: true, Language: lang, Text: strings.Join(code, "\n")})
			code, lang, inCode = nil, "", false
		case fence:
			flushProse()
			lang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
			inCode = true
		case inCode:
			code = append(code, line)
		default:
			prose = append(prose, line)
		}
	}

	if inCode {
		blocks = append(blocks, Block{Code: true, Language: lang, Text: strings.Join(code, "\n")})
	}
	flushProse()
	return blocks
}
