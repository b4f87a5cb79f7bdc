package stage

import "strings"

// Fixed keyword sets for intent signals. Matching is case-insensitive
// substring containment, so "yes, please book it" confirms while
// "sounds good" does not.
var (
	confirmationKeywords = []string{"confirm", "yes", "book", "proceed", "go ahead"}
	farewellKeywords     = []string{"thank", "bye", "goodbye", "done", "finished"}
)

// IsConfirmation reports whether the message carries a confirmation intent.
func IsConfirmation(message string) bool {
	return containsAny(message, confirmationKeywords)
}

// IsFarewell reports whether the message carries a farewell intent.
func IsFarewell(message string) bool {
	return containsAny(message, farewellKeywords)
}

func containsAny(message string, keywords []string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
