package persona

import (
	"strings"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/text"
)

var shakespeareInfo = Info{
	Name:        "Shakespeare",
	Description: "Transforms text into Shakespearean English",
	Examples: []Example{{
		Original:    "Hello, how are you today?",
		Transformed: "Hark! How dost thou fare on this fine day?",
	}},
}

// Phrases run before the single words they contain.
var shakespeareTable = text.NewTable(
	text.Rule{Match: "thank you", Replacement: "I thank thee"},
	text.Rule{Match: "you", Replacement: "thou"},
	text.Rule{Match: "your", Replacement: "thy"},
	text.Rule{Match: "yours", Replacement: "thine"},
	text.Rule{Match: "are", Replacement: "art"},
	text.Rule{Match: "is", Replacement: "doth be"},
	text.Rule{Match: "am", Replacement: "be"},
	text.Rule{Match: "my", Replacement: "mine"},
	text.Rule{Match: "hello", Replacement: "hark"},
	text.Rule{Match: "hi", Replacement: "good morrow"},
	text.Rule{Match: "hey", Replacement: "hail"},
	text.Rule{Match: "friend", Replacement: "gentle companion"},
	text.Rule{Match: "friends", Replacement: "gentle companions"},
	text.Rule{Match: "thanks", Replacement: "many thanks"},
	text.Rule{Match: "goodbye", Replacement: "fare thee well"},
	text.Rule{Match: "bye", Replacement: "adieu"},
	text.Rule{Match: "really", Replacement: "verily"},
	text.Rule{Match: "very", Replacement: "most"},
	text.Rule{Match: "happy", Replacement: "merry"},
	text.Rule{Match: "sad", Replacement: "woeful"},
	text.Rule{Match: "person", Replacement: "fellow"},
	text.Rule{Match: "people", Replacement: "folk"},
	text.Rule{Match: "know", Replacement: "knoweth"},
	text.Rule{Match: "think", Replacement: "thinketh"},
	text.Rule{Match: "speak", Replacement: "speaketh"},
	text.Rule{Match: "love", Replacement: "adore"},
	text.Rule{Match: "yes", Replacement: "aye"},
	text.Rule{Match: "no", Replacement: "nay"},
)

// archaicSuffix gives every word ending in "s" an "eth" and turns a
// trailing "ed" into "'d".
func archaicSuffix(word string) string {
	switch {
	case len(word) > 1 && strings.HasSuffix(word, "s"):
		return word + "eth"
	case len(word) > 2 && strings.HasSuffix(word, "ed"):
		return strings.TrimSuffix(word, "ed") + "'d"
	}
	return word
}

var (
	shakespeareQuestions = []string{
		"Pray tell, ",
		"I beseech thee, ",
		"Prithee, ",
		"Wouldst thou tell me, ",
	}
	shakespeareExclamations = []string{
		"Zounds! ",
		"Forsooth! ",
		"By my troth! ",
		"Odds bodkins! ",
	}
	// The empty entry leaves a statement without an interjection.
	shakespeareStatements = []string{
		"Verily, ",
		"In sooth, ",
		"Indeed, ",
		"As I live and breathe, ",
		"",
	}
	shakespeareEndings = []embellish.Weighted[string]{
		{Value: ".", Weight: 3},
		{Value: ", I say!", Weight: 1},
		{Value: ", good fellow!", Weight: 1},
		{Value: ", forsooth!", Weight: 1},
	}
)

// Shakespeare speaks in archaic English.
type Shakespeare struct {
	sel embellish.Selector
}

// NewShakespeare returns the Shakespeare persona drawing from sel. A nil sel
// uses the global random source.
func NewShakespeare(sel embellish.Selector) *Shakespeare {
	return &Shakespeare{sel: selectorOrGlobal(sel)}
}

func (s *Shakespeare) Info() Info { return copyInfo(shakespeareInfo) }

func (s *Shakespeare) Transform(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}

	frags := text.Segment(strings.ToLower(message))
	for i, f := range frags {
		frags[i].Text = text.MapWords(shakespeareTable.Apply(f.Text), archaicSuffix)
	}
	result := text.Join(frags)
	if result == "" {
		return strings.TrimSpace(message)
	}

	var bank []string
	switch {
	case strings.Contains(message, "?"):
		bank = shakespeareQuestions
	case strings.Contains(message, "!"):
		bank = shakespeareExclamations
	default:
		bank = shakespeareStatements
	}
	if !text.StartsUpper(result) {
		result = embellish.Choose(s.sel, bank) + result
	}

	result = text.CapitalizeFirst(result)

	if !text.HasTerminal(result) {
		result = strings.TrimRight(result, ",; ")
		result += embellish.ChooseWeighted(s.sel, shakespeareEndings)
	}
	return result
}
