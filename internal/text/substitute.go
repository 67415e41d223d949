package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule replaces every whole-word, case-insensitive occurrence of Match.
type Rule struct {
	Match       string
	Replacement string
}

// Table is an ordered rule list. Rules run in order and later rules see the
// output of earlier ones, so a phrase must come before any single word it
// contains.
type Table struct {
	rules []compiledRule
}

type compiledRule struct {
	Rule
	pat *WordPattern
}

// NewTable compiles the rules. Match phrases are quoted, never treated as
// patterns.
func NewTable(rules ...Rule) *Table {
	t := &Table{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		t.rules = append(t.rules, compiledRule{
			Rule: r,
			pat:  NewWordPattern(r.Match),
		})
	}
	return t
}

// Rules returns a copy of the table's rules in application order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Rule
	}
	return out
}

// Len reports the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Apply runs every rule over s. A match that starts with an upper-case letter
// gets a replacement with an upper-case first letter.
func (t *Table) Apply(s string) string {
	for _, r := range t.rules {
		repl := r.Replacement
		s = r.pat.ReplaceFunc(s, func(m string) string {
			if StartsUpper(m) {
				return CapitalizeFirst(repl)
			}
			return repl
		})
	}
	return s
}

// CapitalizeFirst upper-cases the first rune of s.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// StartsUpper reports whether s begins with an upper-case letter.
func StartsUpper(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsUpper(r)
}

// HasTerminal reports whether s ends with '.', '!' or '?'.
func HasTerminal(s string) bool {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && isTerminal(r)
}

// TrimTrailingMarks strips trailing sentence punctuation (.,!?;) and spaces
// and returns the stripped text plus the last terminal mark it removed.
func TrimTrailingMarks(s string) (string, string) {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	var mark string
	for len(s) > 0 {
		c := s[len(s)-1]
		if !strings.ContainsRune(".,!?;", rune(c)) {
			break
		}
		if mark == "" && isTerminal(rune(c)) {
			mark = string(c)
		}
		s = strings.TrimRightFunc(s[:len(s)-1], unicode.IsSpace)
	}
	return s, mark
}

var spaceRun = regexp.MustCompile(`\s+`)

// Tidy collapses whitespace runs and removes spaces before commas.
func Tidy(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.TrimSpace(s)
}
