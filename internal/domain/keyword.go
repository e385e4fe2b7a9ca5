package domain

// Keyword is a de-identified topic phrase distilled from free text, scored by
// occurrence frequency with a bonus for multi-word phrases.
type Keyword struct {
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}
