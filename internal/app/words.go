package app

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordList returns the distinct words of text that start with prefix, in
// byte order and joined by sep. The prefix itself is not offered. At most
// limit words are returned when limit is positive.
func wordList(text, prefix string, sep byte, limit int) string {
	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !isWordRune(r) }) {
		if w == prefix || !strings.HasPrefix(w, prefix) || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	sort.Strings(words)
	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, string(sep))
}

// wordBefore returns the word that ends at byte offset pos of line.
func wordBefore(line string, pos int) string {
	pos = min(max(pos, 0), len(line))
	start := pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return line[start:pos]
}

// signatureFor finds the declaration of function name in Go source text and
// returns it without the body.
func signatureFor(text, name string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "func ")
		if !ok {
			continue
		}
		if strings.HasPrefix(rest, "(") {
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				continue
			}
			rest = strings.TrimSpace(rest[end+1:])
		}
		if !strings.HasPrefix(rest, name+"(") && !strings.HasPrefix(rest, name+"[") {
			continue
		}
		return strings.TrimSpace(strings.TrimSuffix(line, "{"))
	}
	return ""
}
