// Package keywords distills free text (CV text, chat input) into a ranked,
// de-identified topic signal. URLs, emails and phone numbers are scrubbed
// before any linguistic analysis so PII cannot leak into candidate phrases
// even when named-entity recognition misses it.
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"

	"pathfinder/internal/domain"
)

const topN = 25

var (
	urlRE     = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)
	emailRE   = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneRE   = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	numericRE = regexp.MustCompile(`^[0-9\-() +]+$`)
	spaceRE   = regexp.MustCompile(`\s+`)
	letterRE  = regexp.MustCompile(`\p{L}`)
)

// Entity labels treated as PII or non-skill.
var ignoreEntityLabels = map[string]struct{}{
	"PERSON": {},
	"GPE":    {},
}

// Part-of-speech tags excluded from candidates: pronouns, interjections,
// symbols, list markers and foreign words.
var ignoreTags = map[string]struct{}{
	"PRP": {}, "PRP$": {}, "WP": {}, "WP$": {},
	"UH": {}, "SYM": {}, "FW": {}, "LS": {},
}

// Extractor turns raw text into ranked keyword phrases. A zero-signal result
// is an empty list, never an error; if the linguistic models fail to load the
// extractor runs degraded and always reports no signal.
type Extractor struct {
	lemmatizer *golem.Lemmatizer
	stopwords  map[string]struct{}
	domainStop map[string]struct{}
	available  bool
}

// New builds an extractor, loading the English lemmatizer dictionary once.
func New() *Extractor {
	lem, err := golem.New(en.New())
	if err != nil {
		return &Extractor{}
	}
	return &Extractor{
		lemmatizer: lem,
		stopwords:  englishStopwords(),
		domainStop: domainStopwords(),
		available:  true,
	}
}

// Available reports whether the linguistic capability loaded.
func (e *Extractor) Available() bool { return e.available }

// Extract returns the ranked phrases as a comma-joined string.
func (e *Extractor) Extract(text string) string {
	scored := e.ExtractScored(text)
	phrases := make([]string, len(scored))
	for i, kw := range scored {
		phrases[i] = kw.Phrase
	}
	return strings.Join(phrases, ", ")
}

// ExtractScored returns the top-ranked keyword phrases with their scores,
// ordered by (score desc, phrase length desc, phrase asc) so equal scores
// still produce deterministic output.
func (e *Extractor) ExtractScored(text string) []domain.Keyword {
	if !e.available || strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := e.scrub(text)
	doc, err := prose.NewDocument(cleaned, prose.WithSegmentation(false))
	if err != nil {
		return nil
	}

	entityWords := entityWordSet(doc.Entities())
	tokens := doc.Tokens()

	candidates := e.collectCandidates(tokens, entityWords)
	if len(candidates) == 0 {
		return nil
	}

	// Score each distinct candidate by whole-word occurrences in the cleaned
	// text, boosted for multi-word phrases.
	textLC := strings.ToLower(cleaned)
	distinct := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		distinct[c] = struct{}{}
	}

	scored := make([]domain.Keyword, 0, len(distinct))
	for c := range distinct {
		occurrences := countWholeWord(textLC, c)
		words := strings.Count(c, " ") + 1
		scored = append(scored, domain.Keyword{
			Phrase: c,
			Score:  float64(occurrences) * (1.0 + 0.25*float64(words-1)),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Phrase) != len(b.Phrase) {
			return len(a.Phrase) > len(b.Phrase)
		}
		return a.Phrase < b.Phrase
	})

	if len(scored) > topN {
		scored = scored[:topN]
	}
	return scored
}

// scrub removes URL, email and phone patterns. Hyphens survive (for phrases
// like "full-stack"); standalone numbers are dropped later.
func (e *Extractor) scrub(text string) string {
	cleaned := urlRE.ReplaceAllString(text, " ")
	cleaned = emailRE.ReplaceAllString(cleaned, " ")
	cleaned = phoneRE.ReplaceAllString(cleaned, " ")
	return cleaned
}

func (e *Extractor) collectCandidates(tokens []prose.Token, entityWords map[string]struct{}) []string {
	var candidates []string

	// Multi-word noun chunks first: runs of adjective/noun tokens, kept only
	// when the normalized phrase still spans more than one word. These carry
	// compound skills like "machine learning".
	var run []prose.Token
	flush := func() {
		if len(run) >= 2 {
			if norm := e.normalizePhrase(run, entityWords); norm != "" && len(norm) >= 3 && strings.Contains(norm, " ") {
				candidates = append(candidates, norm)
			}
		}
		run = run[:0]
	}
	for _, tok := range tokens {
		if chunkable(tok.Tag) {
			run = append(run, tok)
			continue
		}
		flush()
	}
	flush()

	// Single nouns and proper nouns as fallback coverage for one-word tools.
	for _, tok := range tokens {
		if strings.HasPrefix(tok.Tag, "NN") && e.validToken(tok, entityWords) {
			candidates = append(candidates, e.lemma(tok))
		}
	}

	// Drop residual numeric or URL-like candidates.
	kept := candidates[:0]
	for _, c := range candidates {
		if numericRE.MatchString(c) {
			continue
		}
		if strings.Contains(c, "http") || strings.Contains(c, "www") {
			continue
		}
		if _, ok := e.domainStop[c]; ok {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func (e *Extractor) validToken(tok prose.Token, entityWords map[string]struct{}) bool {
	if !letterRE.MatchString(tok.Text) {
		return false
	}
	lower := strings.ToLower(tok.Text)
	if _, ok := e.stopwords[lower]; ok {
		return false
	}
	if tok.Tag == "CD" || numericRE.MatchString(tok.Text) {
		return false
	}
	if _, ok := ignoreTags[tok.Tag]; ok {
		return false
	}
	if _, ok := entityWords[lower]; ok {
		return false
	}
	lemma := e.lemma(tok)
	if len(lemma) < 3 {
		return false
	}
	if _, ok := e.domainStop[lemma]; ok {
		return false
	}
	return true
}

// lemma lowercases and normalizes plural nouns to their singular form. Other
// forms are kept as-is so technology names survive intact.
func (e *Extractor) lemma(tok prose.Token) string {
	lower := strings.TrimSpace(strings.ToLower(tok.Text))
	if tok.Tag == "NNS" || tok.Tag == "NNPS" {
		return e.lemmatizer.Lemma(lower)
	}
	return lower
}

func (e *Extractor) normalizePhrase(tokens []prose.Token, entityWords map[string]struct{}) string {
	lemmas := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if e.validToken(tok, entityWords) {
			lemmas = append(lemmas, e.lemma(tok))
		}
	}
	phrase := strings.Join(lemmas, " ")
	phrase = spaceRE.ReplaceAllString(phrase, " ")
	return strings.Trim(phrase, "- ")
}

func chunkable(tag string) bool {
	return strings.HasPrefix(tag, "NN") || strings.HasPrefix(tag, "JJ") || tag == "VBG"
}

func entityWordSet(entities []prose.Entity) map[string]struct{} {
	words := make(map[string]struct{})
	for _, ent := range entities {
		if _, ok := ignoreEntityLabels[ent.Label]; !ok {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(ent.Text)) {
			words[w] = struct{}{}
		}
	}
	return words
}

// countWholeWord counts whole-word occurrences of phrase, floored at one:
// lemmatization can rewrite a candidate so it no longer matches the surface
// text, but every candidate was observed at least once.
func countWholeWord(text, phrase string) int {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	if err != nil {
		return 1
	}
	if n := len(re.FindAllString(text, -1)); n > 0 {
		return n
	}
	return 1
}
