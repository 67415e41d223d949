// Package text holds the string plumbing shared by every persona: sentence
// segmentation, ordered whole-word substitution tables and a few casing
// helpers.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fragment is one sentence-like unit of the input. Punct is the mark that
// ended it: one of ".", "!", "?", ";", "," or "" when the input just stopped.
// Run is the whole run of marks Punct came from, so "what?!" keeps "?!" and
// "wait..." keeps "...".
type Fragment struct {
	Text  string
	Punct string
	Run   string
}

// String reassembles the fragment with its full run of marks.
func (f Fragment) String() string {
	if f.Run != "" {
		return f.Text + f.Run
	}
	return f.Text + f.Punct
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Segment splits text on every run of '.', '!' or '?'. The run stays with
// the sentence it ends: "Really?!" yields Punct "!" and Run "?!".
// Abbreviations and decimals split too.
func Segment(text string) []Fragment {
	return segment(text, false)
}

// SegmentAtWhitespace only splits where a run of terminal marks is followed
// by whitespace or the end of input, so "3.14" and "e.g." mid-word survive.
func SegmentAtWhitespace(text string) []Fragment {
	return segment(text, true)
}

func segment(text string, needSpace bool) []Fragment {
	var (
		out   []Fragment
		start int
	)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}
		end := i
		for end < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[end:])
			if !isTerminal(r2) {
				break
			}
			end += s2
		}
		if needSpace && end < len(text) {
			next, _ := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(next) {
				i = end
				continue
			}
		}
		out = appendFragment(out, text[start:i], text[i:end])
		start = end
		i = end
	}
	if start < len(text) {
		tail := strings.TrimSpace(text[start:])
		punct := ""
		if n := len(tail); n > 0 && (tail[n-1] == ';' || tail[n-1] == ',') {
			punct = tail[n-1:]
			tail = tail[:n-1]
		}
		out = appendFragment(out, tail, punct)
	}
	return out
}

func appendFragment(out []Fragment, body, run string) []Fragment {
	body = strings.TrimSpace(body)
	if body == "" {
		return out
	}
	f := Fragment{Text: body, Run: run}
	if run != "" {
		f.Punct = run[len(run)-1:]
	}
	return append(out, f)
}

// Join reassembles fragments separated by single spaces.
func Join(frags []Fragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, " ")
}
