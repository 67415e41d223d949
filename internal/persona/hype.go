package persona

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/text"
)

var hypeInfo = Info{
	Name:        "Elon Musk",
	Description: "Transforms text to sound like tech entrepreneur Elon Musk",
	Examples: []Example{{
		Original:    "This is a good idea.",
		Transformed: "This is insanely great... potentially revolutionary! 🚀",
	}},
}

// Per-sentence probabilities.
const (
	hypeSuperlativeChance = 0.4
	hypeFillerChance      = 0.3
	hypeButChance         = 0.25
	hypeQualifierChance   = 0.3
	hypeHyperboleChance   = 0.35
	hypeEllipsisChance    = 0.25
	hypeUpgradeChance     = 0.4
	hypeMissingBangChance = 0.3

	hypeEmojiChance    = 0.5
	hypeSecondEmoji    = 0.5
	hypeReferenceEvery = 3
	hypeEllipsisMinLen = 15
)

var hypeSuperlatives = text.NewTable(
	text.Rule{Match: "good", Replacement: "insanely great"},
	text.Rule{Match: "bad", Replacement: "fundamentally flawed"},
	text.Rule{Match: "interesting", Replacement: "mind-blowing"},
	text.Rule{Match: "difficult", Replacement: "extremely hard, but doable"},
	text.Rule{Match: "impossible", Replacement: "just a matter of innovation"},
	text.Rule{Match: "important", Replacement: "absolutely critical"},
)

// Longer phrases first so "electric vehicles" is not split into "EV s".
var hypeAcronyms = []struct {
	pat  *text.WordPattern
	repl string
}{
	{text.NewWordPattern("artificial intelligence", "ai"), "AI"},
	{text.NewWordPattern("electric vehicles", "electric vehicle", "ev"), "EV"},
	{text.NewWordPattern("sustainable energy"), "Sustainable Energy"},
}

var hypeBut = text.NewWordPattern("but")

var (
	hypeFillers    = []string{"actually", "literally", "fundamentally", "obviously"}
	hypeButClauses = []string{
		"but we need to innovate faster",
		"but the potential is enormous",
		"but that's just the beginning",
		"but we're making progress",
		"but physics still applies",
	}
	hypeQualifiers = []string{
		"I think",
		"In my view",
		"Based on first principles",
		"From a physics standpoint",
	}
	hypeHyperboles = []string{
		"... potentially revolutionary",
		"... could change everything",
		"... this is just the beginning",
		"... the implications are massive",
	}
	hypeReferences = []string{
		"This is similar to what we're doing with Tesla's FSD.",
		"Think of it like SpaceX's approach to reusability.",
		"At Neuralink, we're solving similar problems.",
		"This reminds me of the challenges at The Boring Company.",
		"It's all about sustainable innovation.",
		"AI will be transformative here.",
		"First principles thinking is key to this.",
		"We need to become a multi-planetary species for reasons like this.",
	}
	hypeEmojis = []string{"🚀", "⚡", "🤖", "🧠", "🔋", "🛰️", "🔥"}
)

// Hype speaks like a hype-driven technologist.
type Hype struct {
	sel embellish.Selector
}

// NewHype returns the Elon Musk persona drawing from sel. A nil sel uses the
// global random source.
func NewHype(sel embellish.Selector) *Hype {
	return &Hype{sel: selectorOrGlobal(sel)}
}

func (h *Hype) Info() Info { return copyInfo(hypeInfo) }

func (h *Hype) Transform(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}

	frags := text.SegmentAtWhitespace(message)
	out := make([]string, 0, len(frags))
	for i, f := range frags {
		out = append(out, h.sentence(f, i+1))
	}
	if len(out) == 0 {
		return strings.TrimSpace(message)
	}
	return h.emojis(strings.Join(out, " "))
}

// sentence rewrites one fragment. n is its 1-based position in the message
// and drives the topical reference cadence.
func (h *Hype) sentence(f text.Fragment, n int) string {
	s, mark := text.TrimTrailingMarks(f.Text)
	if mark == "" && isTerminalMark(f.Punct) {
		mark = f.Run
	}

	if h.sel.Chance(hypeSuperlativeChance) {
		s = hypeSuperlatives.Apply(s)
	}
	if h.sel.Chance(hypeFillerChance) {
		s = h.insertFiller(s)
	}
	if h.sel.Chance(hypeButChance) && !hypeBut.MatchString(s) {
		s += ", " + embellish.Choose(h.sel, hypeButClauses)
	}
	if h.sel.Chance(hypeQualifierChance) && !text.StartsUpper(s) {
		s = embellish.Choose(h.sel, hypeQualifiers) + ", " + s
	}
	if h.sel.Chance(hypeHyperboleChance) {
		s += embellish.Choose(h.sel, hypeHyperboles)
	}
	if h.sel.Chance(hypeEllipsisChance) && utf8.RuneCountInString(s) > hypeEllipsisMinLen {
		words := strings.Split(s, " ")
		s = strings.Join(slices.Insert(words, len(words)/2, "..."), " ")
	}
	for _, a := range hypeAcronyms {
		s = a.pat.Replace(s, a.repl)
	}

	switch {
	case mark == ".":
		if h.sel.Chance(hypeUpgradeChance) {
			mark = "!"
		}
	case mark == "":
		mark = "."
		if h.sel.Chance(hypeMissingBangChance) {
			mark = "!"
		}
	}
	s = text.CapitalizeFirst(s) + mark

	if n%hypeReferenceEvery == 0 {
		s += " " + embellish.Choose(h.sel, hypeReferences)
	}
	return s
}

// insertFiller puts a filler word somewhere other than the first or last
// word; short sentences get it as a prefix.
func (h *Hype) insertFiller(s string) string {
	filler := embellish.Choose(h.sel, hypeFillers)
	words := strings.Split(s, " ")
	if len(words) <= 2 {
		return filler + " " + s
	}
	pos := h.sel.IntN(len(words)-2) + 1
	return strings.Join(slices.Insert(words, pos, filler), " ")
}

// emojis appends up to two distinct signature symbols.
func (h *Hype) emojis(message string) string {
	if !h.sel.Chance(hypeEmojiChance) {
		return message
	}
	count := 1
	if !h.sel.Chance(hypeSecondEmoji) {
		count = 2
	}
	var picked []string
	for i := 0; i < count; i++ {
		e := embellish.Choose(h.sel, hypeEmojis)
		if !slices.Contains(picked, e) {
			picked = append(picked, e)
		}
	}
	return message + " " + strings.Join(picked, "")
}

func isTerminalMark(p string) bool {
	return p == "." || p == "!" || p == "?"
}
