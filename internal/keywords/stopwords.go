package keywords

func englishStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now", "i", "me", "my", "mine", "we", "us",
		"our", "ours", "you", "your", "yours", "he", "him", "his", "she", "her", "hers", "they", "them",
		"their", "theirs", "what", "which", "who", "whom", "where", "when", "why", "how", "all", "any",
		"both", "each", "few", "more", "most", "other", "some", "no", "nor", "not", "only", "do", "does",
		"did", "doing", "have", "has", "had", "having", "am", "would", "could", "may", "might", "must",
		"shall", "here", "there", "once", "while", "because", "until", "against", "also",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// domainStopwords are PII-adjacent and generic resume words that carry no
// topic signal on their own.
func domainStopwords() map[string]struct{} {
	words := []string{
		"email", "phone", "website", "link", "country", "city", "nationality", "birth", "date", "place",
		"address", "current", "year", "student", "bachelor", "degree", "university", "institution",
		"forum", "event", "exhibition", "program", "participant",
		"mother", "tongue", "language", "languages", "level", "levels",
		"basic", "user", "independent", "proficient",
		"contact", "http", "https", "www", "com", "net", "org",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
