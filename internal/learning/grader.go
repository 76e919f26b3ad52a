package learning

import "strings"

// GradeRecognition reports whether the picked option belongs to the item
// under challenge, i.e. the option that carried the correct flag.
func GradeRecognition(ch *Challenge, selectedItemID uint) bool {
	return selectedItemID == ch.ItemID
}

// GradeProduction compares the typed text against the expected answer after
// trimming surrounding whitespace and lower-casing both sides. No fuzzy
// matching, no partial credit, no accent folding.
func GradeProduction(answer, submitted string) bool {
	return normalizeAnswer(submitted) == normalizeAnswer(answer)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
