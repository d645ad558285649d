// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code block of a plain-mode message.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// Render renders the block with a language badge and syntax highlighting.
func (c CodeBlock) Render(theme *styles.Theme) string {
	code := strings.TrimRight(c.Code, "\n")
	highlighted := Highlight(code, c.Language, theme.ChromaStyle(), theme.ColorProfile)

	var header string
	if c.Language != "" {
		header = theme.CodeLangBadge.Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 2
	if maxWidth < 20 {
		maxWidth = 20
	}
	return theme.CodeBlock.MaxWidth(maxWidth).Render(header + highlighted)
}

// ParseCodeBlocks replaces ``` fenced blocks of text with rendered blocks.
// The remaining lines are wrapped to maxWidth and their `inline code` is
// styled.
func ParseCodeBlocks(text string, maxWidth int, theme *styles.Theme) string {
	var (
		result    []string
		codeLines []string
		language  string
		inBlock   bool
	)

	flush := func() {
		cb := CodeBlock{Language: language, Code: strings.Join(codeLines, "\n"), MaxWidth: maxWidth}
		result = append(result, cb.Render(theme))
		codeLines = nil
		language = ""
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```") && inBlock:
			flush()
			inBlock = false
		case strings.HasPrefix(trimmed, "```"):
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			inBlock = true
		case inBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, parseInlineCode(wrapText(line, maxWidth), theme))
		}
	}

	// Unclosed block
	if inBlock && len(codeLines) > 0 {
		flush()
	}

	return strings.Join(result, "\n")
}

// parseInlineCode styles `code` spans of a single line.
func parseInlineCode(line string, theme *styles.Theme) string {
	if !strings.Contains(line, "`") {
		return line
	}

	var (
		out    strings.Builder
		code   strings.Builder
		inCode bool
	)
	for _, r := range line {
		switch {
		case r == '`' && inCode:
			out.WriteString(theme.InlineCode.Render(code.String()))
			code.Reset()
			inCode = false
		case r == '`':
			inCode = true
		case inCode:
			code.WriteRune(r)
		default:
			out.WriteRune(r)
		}
	}
	if inCode {
		out.WriteString("`")
		out.WriteString(code.String())
	}
	return out.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// Highlight applies chroma highlighting for the given color profile. The
// code is returned unchanged on an Ascii profile or when highlighting fails.
func Highlight(code, language, styleName string, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return code
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatterName := "terminal256"
	switch profile {
	case termenv.TrueColor:
		formatterName = "terminal16m"
	case termenv.ANSI:
		formatterName = "terminal16"
	}
	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
