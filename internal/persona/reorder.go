package persona

import (
	"regexp"
	"strings"
)

// reorderStep tries one way of inverting a sentence. ok is false when the
// step does not apply or would leave one side empty.
type reorderStep func(sentence string) (out string, ok bool)

// sageChain is tried in order. The word-count split always succeeds, so
// every sentence gets an answer.
var sageChain = []reorderStep{
	invertClauses,
	invertAuxiliary,
	splitByWordCount,
}

// reorder inverts a sentence with no trailing punctuation.
func reorder(sentence string) string {
	sentence = strings.TrimSpace(sentence)
	for _, step := range sageChain {
		if out, ok := step(sentence); ok {
			return out
		}
	}
	return sentence
}

// invertClauses moves everything after the first comma to the front.
func invertClauses(s string) (string, bool) {
	before, after, found := strings.Cut(s, ",")
	if !found {
		return "", false
	}
	before, after = strings.TrimSpace(before), strings.TrimSpace(after)
	if before == "" || after == "" {
		return "", false
	}
	return after + ", " + before, true
}

var auxiliaryPattern = regexp.MustCompile(
	`^((?i:i|you|we|they|he|she|it)|[A-Z][a-z]+)\s+` +
		`((?i:am|are|is|was|were|have|has|had|will|would|can|could|may|might|shall|should|must))\s+(.+)$`,
)

// invertAuxiliary turns "subject aux predicate" into "predicate, subject aux".
func invertAuxiliary(s string) (string, bool) {
	m := auxiliaryPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	subject, verb, predicate := m[1], m[2], strings.TrimSpace(m[3])
	if predicate == "" {
		return "", false
	}
	return predicate + ", " + subject + " " + verb, true
}

// splitByWordCount emits "secondHalf, firstHalf" with the first half taking
// the larger share. A single word passes through unchanged.
func splitByWordCount(s string) (string, bool) {
	words := strings.Fields(s)
	if len(words) < 2 {
		return s, true
	}
	mid := (len(words) + 1) / 2
	return strings.Join(words[mid:], " ") + ", " + strings.Join(words[:mid], " "), true
}
