package engine

import "strings"

// Matches reports whether a stage's trigger condition matches the batch
// text. The match is case-insensitive substring containment, with no word
// boundary or normalization rules. An empty condition never matches, so a
// stage without a condition cannot be auto-selected.
func Matches(condition, batchText string) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return false
	}
	return strings.Contains(strings.ToLower(batchText), strings.ToLower(condition))
}
