package contacts

import "strings"

// Stopwords excluded from keyword-overlap scoring of clarification replies.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "one": {}, "ones": {},
	"who": {}, "which": {}, "that": {}, "this": {}, "those": {},
	"is": {}, "are": {}, "was": {}, "be": {}, "it": {}, "its": {},
	"i": {}, "me": {}, "my": {}, "you": {}, "he": {}, "she": {}, "they": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "with": {},
	"and": {}, "or": {}, "not": {}, "no": {}, "yes": {},
	"call": {}, "mean": {}, "please": {}, "guy": {}, "person": {},
}

// Keywords splits free text into lowercase non-stopword tokens, stripping
// punctuation and possessive suffixes so "Kushal's" matches "kushal".
func Keywords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := normalizeToken(f)
		if tok == "" {
			continue
		}
		if _, skip := stopwords[tok]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// KeywordScore counts how many keywords appear among the candidate's name and
// note tokens.
func KeywordScore(c Candidate, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	have := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(c.DisplayName + " " + c.Note)) {
		if tok := normalizeToken(f); tok != "" {
			have[tok] = struct{}{}
		}
	}
	score := 0
	for _, kw := range keywords {
		if _, ok := have[kw]; ok {
			score++
		}
	}
	return score
}

func normalizeToken(tok string) string {
	tok = strings.TrimFunc(tok, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	tok = strings.TrimSuffix(tok, "'s")
	tok = strings.TrimSuffix(tok, "s'")
	return tok
}
