package intent

import (
	"strings"

	"golang.org/x/text/cases"
)

// Default is returned when no intent in the table matches
const Default = "default"

// Rule binds an intent name to its trigger substrings
type Rule struct {
	Intent   string
	Triggers []string
}

// KeywordTable is evaluated in declaration order; the first rule with a matching trigger wins
type KeywordTable []Rule

// Normalize case-folds and trims an utterance before classification.
// A Caser is stateful, so each call builds its own.
func Normalize(utterance string) string {
	return strings.TrimSpace(cases.Fold().String(utterance))
}

// Classify returns the first intent whose trigger occurs anywhere in the utterance.
// Matching is whole-substring containment, not tokenized, so "school" also matches "schools".
func Classify(utterance string, table KeywordTable) string {
	normalized := Normalize(utterance)
	if normalized == "" {
		return Default
	}

	for _, rule := range table {
		if containsAny(normalized, rule.Triggers) {
			return rule.Intent
		}
	}
	return Default
}

func containsAny(s string, substrs []string) bool {
	folder := cases.Fold()
	for _, sub := range substrs {
		if sub == "" {
			continue
		}
		if strings.Contains(s, folder.String(sub)) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any phrase occurs in the case-folded utterance.
// The hand-off machine uses the same policy for its trigger and affirmative sets.
func ContainsAny(utterance string, phrases []string) bool {
	return containsAny(Normalize(utterance), phrases)
}
