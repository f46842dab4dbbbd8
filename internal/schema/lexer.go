// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema turns one schema file's text into a structural tree:
// package, imports, messages with nesting, enums, services, and the
// comments attached to each declaration. Parsing is recoverable: a
// malformed construct is skipped with a warning, never a fatal error.
package schema

import "strings"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokComment
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLAngle
	tokRAngle
	tokEquals
	tokSemi
	tokComma
)

// token is one lexical unit. Comments are tokens too; the parser decides
// which declaration they attach to.
type token struct {
	kind    tokenKind
	text    string // Ident/number text, string contents, or raw comment body
	line    int    // 1-based line of the token's first character
	endLine int    // Last line; differs from line only for block comments
	block   bool   // Comment form: true for /* */, false for //
}

// lex scans the whole input into tokens. Unknown characters are dropped
// rather than reported; recovery happens at the parser level where a
// line number and surrounding construct are known.
func lex(src string) []token {
	var toks []token
	line := 1
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i + 2
			for i < n && src[i] != '\n' {
				i++
			}
			toks = append(toks, token{kind: tokComment, text: strings.TrimRight(src[start:i], " \t\r"), line: line, endLine: line})
		case c == '/' && i+1 < n && src[i+1] == '*':
			startLine := line
			i += 2
			start := i
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				if src[i] == '\n' {
					line++
				}
				i++
			}
			end := i
			if i+1 < n {
				i += 2 // closing */
			} else {
				i = n // unterminated; take the rest
				end = n
			}
			toks = append(toks, token{kind: tokComment, text: src[start:end], line: startLine, endLine: line, block: true})
		case c == '"' || c == '\'':
			quote := c
			i++
			start := i
			for i < n && src[i] != quote {
				if src[i] == '\\' && i+1 < n {
					i++
				}
				if src[i] == '\n' {
					line++
				}
				i++
			}
			toks = append(toks, token{kind: tokString, text: src[start:i], line: line, endLine: line})
			if i < n {
				i++ // closing quote
			}
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], line: line, endLine: line})
		case c >= '0' && c <= '9' || (c == '-' && i+1 < n && src[i+1] >= '0' && src[i+1] <= '9'):
			start := i
			i++
			for i < n && (src[i] >= '0' && src[i] <= '9' || src[i] == '.' || src[i] == 'e' || src[i] == '-') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], line: line, endLine: line})
		default:
			if kind, ok := punctKind(c); ok {
				toks = append(toks, token{kind: kind, text: string(c), line: line, endLine: line})
			}
			i++
		}
	}

	toks = append(toks, token{kind: tokEOF, line: line, endLine: line})
	return toks
}

func punctKind(c byte) (tokenKind, bool) {
	switch c {
	case '{':
		return tokLBrace, true
	case '}':
		return tokRBrace, true
	case '(':
		return tokLParen, true
	case ')':
		return tokRParen, true
	case '[':
		return tokLBracket, true
	case ']':
		return tokRBracket, true
	case '<':
		return tokLAngle, true
	case '>':
		return tokRAngle, true
	case '=':
		return tokEquals, true
	case ';':
		return tokSemi, true
	case ',':
		return tokComma, true
	}
	return 0, false
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// isIdentPart admits dots so qualified references like user.User lex as
// a single identifier token.
func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '.'
}

// cleanBlockComment strips the decoration from a /* */ body: leading *
// markers go away, blank comment lines split paragraphs, and lines within
// a paragraph collapse to single spaces. Paragraphs join with "\n\n".
func cleanBlockComment(body string) string {
	lines := strings.Split(body, "\n")
	var paragraphs []string
	var current []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimSpace(l)
		if l == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.Join(current, " "))
				current = nil
			}
			continue
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

// joinLineComments merges consecutive // comment lines into one text,
// treating an empty comment line as a paragraph break.
func joinLineComments(lines []string) string {
	var paragraphs []string
	var current []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.Join(current, " "))
				current = nil
			}
			continue
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.Join(current, " "))
	}
	return strings.Join(paragraphs, "\n\n")
}
