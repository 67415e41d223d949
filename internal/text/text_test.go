package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Fragment
	}{
		{"single sentence", "Hello there.", []Fragment{{"Hello there", ".", "."}}},
		{"no terminal", "hello there", []Fragment{{"hello there", "", ""}}},
		{"mixed marks", "Hi! How are you? Fine.", []Fragment{{"Hi", "!", "!"}, {"How are you", "?", "?"}, {"Fine", ".", "."}}},
		{"run of marks", "Really?! Yes...", []Fragment{{"Really", "!", "?!"}, {"Yes", ".", "..."}}},
		{"empty fragments dropped", "  ..  Go!  ", []Fragment{{"Go", "!", "!"}}},
		{"marks only", " ... ", nil},
		{"trailing semicolon", "one. two;", []Fragment{{"one", ".", "."}, {"two", ";", ";"}}},
		{"trailing comma", "well,", []Fragment{{"well", ",", ","}}},
		{"decimal splits", "Pi is 3.14 ok", []Fragment{{"Pi is 3", ".", "."}, {"14 ok", "", ""}}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.in))
		})
	}
}

func TestSegmentAtWhitespace(t *testing.T) {
	got := SegmentAtWhitespace("Pi is 3.14 today. Neat!Right? ok")
	assert.Equal(t, []Fragment{
		{"Pi is 3.14 today", ".", "."},
		{"Neat!Right", "?", "?"},
		{"ok", "", ""},
	}, got)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "A. B? c", Join([]Fragment{{"A", ".", "."}, {"B", "?", "?"}, {"c", "", ""}}))
	assert.Equal(t, "Wait... what?!", Join(Segment("Wait... what?!")))
	assert.Equal(t, "x!", Fragment{Text: "x", Punct: "!"}.String())
}

func TestTableWholeWord(t *testing.T) {
	table := NewTable(Rule{"is", "be"})
	assert.Equal(t, "This be a test", table.Apply("This is a test"))
	assert.Equal(t, "Be it? this island", table.Apply("Is it? this island"))
}

func TestTableWholeWordUnicode(t *testing.T) {
	table := NewTable(Rule{"no", "nay"}, Rule{"is", "IS"})
	tests := []struct {
		in, want string
	}{
		{"Noël is here", "Noël IS here"},
		{"the isé word", "the isé word"},
		{"ëis is", "ëis IS"},
		{"no, no_way nö no", "nay, no_way nö nay"},
		{"Naïve no2 is", "Naïve no2 IS"},
		{"No", "Nay"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Apply(tt.in))
		})
	}
}

func TestWordPattern(t *testing.T) {
	p := NewWordPattern("electric vehicles", "ev")
	assert.Equal(t, "EV and EV, evé", p.Replace("electric vehicles and Ev, evé", "EV"))
	assert.Equal(t, [][2]int{{6, 8}}, p.Index("évé ev"))

	but := NewWordPattern("but")
	assert.True(t, but.MatchString("This, BUT that"))
	assert.False(t, but.MatchString("butter"))
	assert.False(t, but.MatchString("débutant"))
}

func TestMapWords(t *testing.T) {
	wrap := func(w string) string { return "<" + w + ">" }
	assert.Equal(t, "<Noël>, <ça> <va>?", MapWords("Noël, ça va?", wrap))
	assert.Equal(t, "", MapWords("", wrap))
	assert.Equal(t, "... ", MapWords("... ", wrap))
}

func TestStartsWithWord(t *testing.T) {
	assert.True(t, StartsWithWord("I deduce", "I"))
	assert.True(t, StartsWithWord("I", "I"))
	assert.False(t, StartsWithWord("Iñigo spoke", "I"))
	assert.False(t, StartsWithWord("It is", "I"))
}

func TestTableOrderCascades(t *testing.T) {
	phraseFirst := NewTable(Rule{"thank you", "I thank thee"}, Rule{"you", "thou"})
	assert.Equal(t, "I thank thee, thou", phraseFirst.Apply("thank you, you"))

	wordFirst := NewTable(Rule{"you", "thou"}, Rule{"thank you", "I thank thee"})
	assert.Equal(t, "thank thou, thou", wordFirst.Apply("thank you, you"))
}

func TestTableQuotesMatch(t *testing.T) {
	table := NewTable(Rule{"a.b", "x"})
	assert.Equal(t, "x axb", table.Apply("a.b axb"))
}

func TestTableRules(t *testing.T) {
	rules := []Rule{{"a", "b"}, {"c", "d"}}
	table := NewTable(rules...)
	require.Equal(t, 2, table.Len())
	got := table.Rules()
	got[0].Match = "z"
	assert.Equal(t, rules, table.Rules())
}

func TestCasingHelpers(t *testing.T) {
	assert.Equal(t, "Hello", CapitalizeFirst("hello"))
	assert.Equal(t, "", CapitalizeFirst(""))
	assert.Equal(t, "éclair", LowerFirst("Éclair"))
	assert.True(t, StartsUpper("Yes"))
	assert.False(t, StartsUpper("yes"))
	assert.False(t, StartsUpper("1 yes"))
}

func TestTrimTrailingMarks(t *testing.T) {
	s, m := TrimTrailingMarks("Hello there?! ")
	assert.Equal(t, "Hello there", s)
	assert.Equal(t, "!", m)

	s, m = TrimTrailingMarks("a list,")
	assert.Equal(t, "a list", s)
	assert.Equal(t, "", m)
}

func TestHasTerminalAndTidy(t *testing.T) {
	assert.True(t, HasTerminal("done. "))
	assert.False(t, HasTerminal("done,"))
	assert.Equal(t, "a, b c", Tidy("  a ,  b   c "))
}
