package persona

import (
	"strings"

	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/text"
)

var detectiveInfo = Info{
	Name:        "Sherlock Holmes",
	Description: "Transforms text to sound like the famous detective Sherlock Holmes",
	Examples: []Example{{
		Original:    "I think we should investigate this further.",
		Transformed: "I deduce we must investigate this matter further, Watson. The evidence demands it!",
	}},
}

const (
	detectiveQuestionChance   = 0.7
	detectiveStatementChance  = 0.6
	detectiveCompanionChance  = 0.3
	detectiveConclusionChance = 0.2
	detectiveMidpointMinLen   = 20
)

// "look for" must run before "look"; plurals sit beside their singulars
// since whole-word matching keeps them apart.
var detectiveTable = text.NewTable(
	text.Rule{Match: "look for", Replacement: "investigate"},
	text.Rule{Match: "think", Replacement: "deduce"},
	text.Rule{Match: "believe", Replacement: "deduce"},
	text.Rule{Match: "guess", Replacement: "deduce"},
	text.Rule{Match: "thought", Replacement: "deduction"},
	text.Rule{Match: "idea", Replacement: "deduction"},
	text.Rule{Match: "look", Replacement: "observe"},
	text.Rule{Match: "see", Replacement: "observe"},
	text.Rule{Match: "looking", Replacement: "observing"},
	text.Rule{Match: "saw", Replacement: "observed"},
	text.Rule{Match: "find", Replacement: "uncover"},
	text.Rule{Match: "found", Replacement: "uncovered"},
	text.Rule{Match: "learn", Replacement: "ascertain"},
	text.Rule{Match: "learned", Replacement: "ascertained"},
	text.Rule{Match: "interesting", Replacement: "most intriguing"},
	text.Rule{Match: "problems", Replacement: "cases"},
	text.Rule{Match: "problem", Replacement: "case"},
	text.Rule{Match: "issue", Replacement: "case"},
	text.Rule{Match: "good", Replacement: "most excellent"},
	text.Rule{Match: "very", Replacement: "exceedingly"},
	text.Rule{Match: "really", Replacement: "indeed"},
	text.Rule{Match: "person", Replacement: "individual"},
	text.Rule{Match: "people", Replacement: "individuals"},
	text.Rule{Match: "obvious", Replacement: "elementary"},
	text.Rule{Match: "strange", Replacement: "curious"},
	text.Rule{Match: "weird", Replacement: "most peculiar"},
	text.Rule{Match: "unusual", Replacement: "singular"},
	text.Rule{Match: "clue", Replacement: "evidence"},
	text.Rule{Match: "clues", Replacement: "evidence"},
	text.Rule{Match: "amazing", Replacement: "remarkable"},
	text.Rule{Match: "surprising", Replacement: "astonishing"},
	text.Rule{Match: "bad", Replacement: "dreadful"},
	text.Rule{Match: "wrong", Replacement: "erroneous"},
	text.Rule{Match: "criminal", Replacement: "nefarious individual"},
	text.Rule{Match: "criminals", Replacement: "nefarious individuals"},
	text.Rule{Match: "understand", Replacement: "comprehend"},
	text.Rule{Match: "need", Replacement: "require"},
	text.Rule{Match: "try", Replacement: "endeavor"},
	text.Rule{Match: "help", Replacement: "assistance"},
	text.Rule{Match: "important", Replacement: "of the utmost importance"},
	text.Rule{Match: "fast", Replacement: "with considerable haste"},
	text.Rule{Match: "quickly", Replacement: "with considerable haste"},
	text.Rule{Match: "friend", Replacement: "dear fellow"},
	text.Rule{Match: "woman", Replacement: "lady"},
	text.Rule{Match: "man", Replacement: "gentleman"},
)

var (
	detectiveQuestionLeads = []string{
		"A curious question indeed. ",
		"An intriguing inquiry. ",
		"A most pertinent question. ",
		"",
	}
	detectiveStatementLeads = []string{
		"Upon careful observation, ",
		"After thorough analysis, ",
		"By my deduction, ",
		"It is evident that ",
		"Logic dictates that ",
		"",
	}
	detectiveCompanions  = []string{"Watson", "my dear Watson", "old friend"}
	detectiveConclusions = []string{
		"The evidence is clear.",
		"The facts are incontrovertible.",
		"This is most elementary.",
		"This case is most singular.",
		"The game is afoot!",
	}
)

// Detective reasons aloud like a consulting detective.
type Detective struct {
	sel embellish.Selector
}

// NewDetective returns the Sherlock Holmes persona drawing from sel. A nil
// sel uses the global random source.
func NewDetective(sel embellish.Selector) *Detective {
	return &Detective{sel: selectorOrGlobal(sel)}
}

func (d *Detective) Info() Info { return copyInfo(detectiveInfo) }

func (d *Detective) Transform(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}

	result := detectiveTable.Apply(message)

	if strings.Contains(message, "?") {
		if d.sel.Chance(detectiveQuestionChance) {
			result = embellish.Choose(d.sel, detectiveQuestionLeads) + result
		}
	} else if d.sel.Chance(detectiveStatementChance) {
		lead := embellish.Choose(d.sel, detectiveStatementLeads)
		if lead != "" && !text.StartsWithWord(result, "I") {
			result = text.LowerFirst(result)
		}
		result = lead + result
	}

	if d.sel.Chance(detectiveCompanionChance) {
		result = insertCompanion(result, embellish.Choose(d.sel, detectiveCompanions))
	}

	if d.sel.Chance(detectiveConclusionChance) {
		if !text.HasTerminal(result) {
			result = strings.TrimRight(result, ",; ") + "."
		}
		result += " " + embellish.Choose(d.sel, detectiveConclusions)
	}

	return text.CapitalizeFirst(result)
}

// insertCompanion addresses the companion at the first comma, else at the
// word boundary nearest the middle of a long message, else just before the
// final mark.
func insertCompanion(s, name string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[:i] + ", " + name + s[i:]
	}
	if len(s) > detectiveMidpointMinLen {
		if at := wordBoundaryNear(s, len(s)/2); at > 0 {
			return s[:at] + ", " + name + "," + s[at:]
		}
	}
	body, mark := text.TrimTrailingMarks(s)
	if mark == "" {
		mark = "."
	}
	return body + ", " + name + mark
}

// wordBoundaryNear returns the index of the space closest to pos, or -1.
func wordBoundaryNear(s string, pos int) int {
	best := -1
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		if best < 0 || abs(i-pos) < abs(best-pos) {
			best = i
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
