package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r can be part of a word: any letter, digit,
// combining mark or underscore, in any script.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// WordPattern finds whole-word, case-insensitive occurrences of a set of
// literal alternatives. A match only counts when the runes on both sides of
// it are not word runes, so "no" never matches inside "Noël".
type WordPattern struct {
	re *regexp.Regexp
}

// NewWordPattern compiles the alternatives. Earlier alternatives win when
// several match at the same position, so list longer phrases first.
func NewWordPattern(alternatives ...string) *WordPattern {
	quoted := make([]string, len(alternatives))
	for i, a := range alternatives {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return &WordPattern{re: regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)}
}

// Index returns the byte offsets of every whole-word match in s.
func (p *WordPattern) Index(s string) [][2]int {
	var out [][2]int
	for at := 0; at <= len(s); {
		loc := p.re.FindStringIndex(s[at:])
		if loc == nil {
			break
		}
		start, end := at+loc[0], at+loc[1]
		if end > start && atBoundary(s, start, end) {
			out = append(out, [2]int{start, end})
			at = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		at = start + max(size, 1)
	}
	return out
}

// MatchString reports whether s holds at least one whole-word match.
func (p *WordPattern) MatchString(s string) bool {
	return len(p.Index(s)) > 0
}

// ReplaceFunc replaces every whole-word match with repl(match).
func (p *WordPattern) ReplaceFunc(s string, repl func(string) string) string {
	locs := p.Index(s)
	if len(locs) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// Replace replaces every whole-word match with repl.
func (p *WordPattern) Replace(s, repl string) string {
	return p.ReplaceFunc(s, func(string) string { return repl })
}

func atBoundary(s string, start, end int) bool {
	if before, size := utf8.DecodeLastRuneInString(s[:start]); size > 0 && IsWordRune(before) {
		return false
	}
	if after, size := utf8.DecodeRuneInString(s[end:]); size > 0 && IsWordRune(after) {
		return false
	}
	return true
}

// MapWords calls f on every maximal run of word runes in s and splices in
// the result. Everything between words is left alone.
func MapWords(s string, f func(word string) string) string {
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case IsWordRune(r):
			if start < 0 {
				start = i
			}
		case start >= 0:
			b.WriteString(f(s[start:i]))
			start = -1
			fallthrough
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	if start >= 0 {
		b.WriteString(f(s[start:]))
	}
	return b.String()
}

// StartsWithWord reports whether s begins with word as a whole word. Case
// matters.
func StartsWithWord(s, word string) bool {
	if !strings.HasPrefix(s, word) {
		return false
	}
	next, size := utf8.DecodeRuneInString(s[len(word):])
	return size == 0 || !IsWordRune(next)
}
