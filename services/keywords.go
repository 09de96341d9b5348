package services

import "strings"

// KeywordSet matches a description against a fixed list of phrases,
// case-insensitively, with OR semantics.
type KeywordSet []string

// Match reports whether any keyword occurs in text.
func (k KeywordSet) Match(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range k {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Description flag keywords, as used when the model was trained.
var (
	HighFloorKeywords = KeywordSet{"high floor"}
	NewKeywords       = KeywordSet{"brand new", "new unit"}
	RenovatedKeywords = KeywordSet{"renovated", "renovation"}
	ViewKeywords      = KeywordSet{
		"sea view", "seaview", "panoramic view", "unblocked view", "unblock view", "stunning view",
		"park view", "breathtaking view", "river view", "pool view", "spectacular view", "city view",
		"greenery view", "gorgeous view",
	}
	PenthouseKeywords = KeywordSet{"penthouse"}
)

// DescriptionFlags holds the boolean features derived from agent text.
type DescriptionFlags struct {
	HighFloor bool
	New       bool
	Renovated bool
	View      bool
	Penthouse bool
}

// DetectFlags derives the description flags for text.
func DetectFlags(text string) DescriptionFlags {
	return DescriptionFlags{
		HighFloor: HighFloorKeywords.Match(text),
		New:       NewKeywords.Match(text),
		Renovated: RenovatedKeywords.Match(text),
		View:      ViewKeywords.Match(text),
		Penthouse: PenthouseKeywords.Match(text),
	}
}
