// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides length accounting and windowing helpers for
// mixed CJK/Latin text. A "length unit" is one CJK character or one
// Latin word, so budgets behave sensibly for both scripts.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// CountWords returns the length of text in length units: each CJK rune
// counts as one unit, and each whitespace-separated run of non-CJK
// characters counts as one unit.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			count++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

// TailWindow returns the trailing window of text holding at most n runes.
// The cut is rune-aligned so multi-byte characters are never split.
func TailWindow(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

// Truncate shortens text to at most max runes, appending "..." when a
// cut was made.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs splits text on blank lines and drops empty paragraphs.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplit.Split(text, -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
