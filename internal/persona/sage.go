package persona

import (
	"strings"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/text"
)

var sageInfo = Info{
	Name:        "Yoda",
	Description: "Transforms text to sound like Jedi Master Yoda",
	Examples: []Example{{
		Original:    "I am going to the store.",
		Transformed: "Going to the store, I am. Hmm.",
	}},
}

// Identity rules are placeholders for future phrasing.
var sageTable = text.NewTable(
	text.Rule{Match: "have to", Replacement: "must"},
	text.Rule{Match: "has to", Replacement: "must"},
	text.Rule{Match: "need to", Replacement: "must"},
	text.Rule{Match: "needs to", Replacement: "must"},
	text.Rule{Match: "is", Replacement: "is"},
	text.Rule{Match: "are", Replacement: "are"},
)

const (
	sageInterjectionChance = 0.2
	sageClosingChance      = 0.5
)

var (
	sageInterjections = []string{"Hmm.", "Mmm.", "Herh herh."}
	sageClosings      = []string{
		"Yes, hmmm.",
		"Much to learn, you still have.",
		"Strong with the Force, this one is.",
		"Hmm.",
	}
)

// Sage speaks with inverted syntax.
type Sage struct {
	sel embellish.Selector
}

// NewSage returns the Yoda persona drawing from sel. A nil sel uses the
// global random source.
func NewSage(sel embellish.Selector) *Sage {
	return &Sage{sel: selectorOrGlobal(sel)}
}

func (s *Sage) Info() Info { return copyInfo(sageInfo) }

func (s *Sage) Transform(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}

	var sentences []string
	for _, f := range text.Segment(message) {
		if out := s.sentence(f); out != "" {
			sentences = append(sentences, out)
		}
	}
	if len(sentences) == 0 {
		return strings.TrimSpace(message)
	}

	if s.sel.Chance(sageInterjectionChance) {
		sentences = append([]string{embellish.Choose(s.sel, sageInterjections)}, sentences...)
	}
	if s.sel.Chance(sageClosingChance) {
		sentences = append(sentences, embellish.Choose(s.sel, sageClosings))
	}
	return text.CapitalizeFirst(strings.Join(sentences, " "))
}

func (s *Sage) sentence(f text.Fragment) string {
	body, mark := text.TrimTrailingMarks(f.Text)
	if mark == "" {
		mark = f.Run
	}
	if mark == "" || mark == "," || mark == ";" {
		mark = "."
	}
	if body == "" {
		return ""
	}

	out := text.Tidy(reorder(sageTable.Apply(body)))
	out, _ = text.TrimTrailingMarks(out)
	if out == "" {
		return ""
	}
	return text.CapitalizeFirst(out) + mark
}
