// Package contacts resolves spoken name references against a contact
// directory. Ranking combines Double Metaphone phonetic overlap with
// Jaro-Winkler string similarity, so "call Hursh" still finds "Harsh".
package contacts

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

type MatchKind string

const (
	MatchExact            MatchKind = "exact"
	MatchMultiple         MatchKind = "multiple"
	MatchNone             MatchKind = "none"
	MatchPermissionDenied MatchKind = "permission_denied"
)

// Match is the resolver outcome. Candidate is set for exact matches;
// Candidates carries the ranked list for multiple matches.
type Match struct {
	Kind       MatchKind
	Candidate  Candidate
	Candidates []Candidate
}

type Resolver interface {
	Resolve(ctx context.Context, query string) (Match, error)
	ResolveWithKeywords(ctx context.Context, query string, keywords []string) (Match, error)
}

const (
	defaultPhoneticThreshold = 0.70
	exactScore               = 1.0
	maxCandidates            = 5
)

// DirectoryResolver ranks directory entries against a name query.
// Safe for concurrent use; read-only after construction.
type DirectoryResolver struct {
	dir               Directory
	phoneticThreshold float64
}

func NewDirectoryResolver(dir Directory) *DirectoryResolver {
	return &DirectoryResolver{
		dir:               dir,
		phoneticThreshold: defaultPhoneticThreshold,
	}
}

func (r *DirectoryResolver) Resolve(ctx context.Context, query string) (Match, error) {
	return r.ResolveWithKeywords(ctx, query, nil)
}

// ResolveWithKeywords ranks like Resolve, then applies keyword-overlap
// scoring to break apart multiple matches: the candidate with strictly the
// most keyword hits wins; ties stay ambiguous.
func (r *DirectoryResolver) ResolveWithKeywords(ctx context.Context, query string, keywords []string) (Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Match{Kind: MatchNone}, nil
	}

	entries, err := r.dir.Search(ctx, query)
	if errors.Is(err, ErrPermissionDenied) {
		return Match{Kind: MatchPermissionDenied}, nil
	}
	if err != nil {
		return Match{}, err
	}

	ranked := rankCandidates(query, entries, r.phoneticThreshold)
	if len(ranked) > 1 && len(keywords) > 0 {
		if winner, ok := keywordWinner(ranked, keywords); ok {
			return Match{Kind: MatchExact, Candidate: winner}, nil
		}
	}

	switch len(ranked) {
	case 0:
		return Match{Kind: MatchNone}, nil
	case 1:
		return Match{Kind: MatchExact, Candidate: ranked[0]}, nil
	default:
		if len(ranked) > maxCandidates {
			ranked = ranked[:maxCandidates]
		}
		return Match{Kind: MatchMultiple, Candidates: ranked}, nil
	}
}

// keywordWinner returns the unique candidate with the strictly highest
// positive keyword score.
func keywordWinner(candidates []Candidate, keywords []string) (Candidate, bool) {
	best, bestScore, tied := Candidate{}, 0, false
	for _, c := range candidates {
		score := KeywordScore(c, keywords)
		switch {
		case score > bestScore:
			best, bestScore, tied = c, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return Candidate{}, false
	}
	return best, true
}

type scoredCandidate struct {
	candidate Candidate
	score     float64
}

// rankCandidates scores every entry and returns those above the phonetic
// threshold, best first. Exact token matches score 1.0 and, when any exist,
// suppress the fuzzier tail so "Harsh" against {Harsh Singh, Harsha} yields
// only the exact hits.
func rankCandidates(query string, entries []Candidate, threshold float64) []Candidate {
	queryTokens := strings.Fields(strings.ToLower(query))
	queryCodes := phoneticCodes(queryTokens)

	scored := make([]scoredCandidate, 0, len(entries))
	anyExact := false
	for _, entry := range entries {
		score := scoreEntry(queryTokens, queryCodes, entry)
		if score < threshold {
			continue
		}
		if score >= exactScore {
			anyExact = true
		}
		scored = append(scored, scoredCandidate{candidate: entry, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]Candidate, 0, len(scored))
	for _, sc := range scored {
		if anyExact && sc.score < exactScore {
			continue
		}
		out = append(out, sc.candidate)
	}
	return out
}

func scoreEntry(queryTokens []string, queryCodes map[string]struct{}, entry Candidate) float64 {
	nameLower := strings.ToLower(strings.TrimSpace(entry.DisplayName))
	if nameLower == "" {
		return 0
	}
	nameTokens := strings.Fields(nameLower)

	full := strings.Join(queryTokens, " ")
	if full == nameLower {
		return exactScore
	}

	best := 0.0
	for _, qt := range queryTokens {
		for _, nt := range nameTokens {
			if qt == nt {
				return exactScore
			}
			if !codesOverlap(queryCodes, phoneticCodes([]string{nt})) {
				continue
			}
			if s := matchr.JaroWinkler(qt, nt, false); s > best {
				best = s
			}
		}
	}
	if s := matchr.JaroWinkler(full, nameLower, false); s > best {
		best = s
	}
	return best
}

func phoneticCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, tok := range tokens {
		primary, secondary := matchr.DoubleMetaphone(tok)
		if primary != "" {
			codes[primary] = struct{}{}
		}
		if secondary != "" {
			codes[secondary] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	for code := range b {
		if _, ok := a[code]; ok {
			return true
		}
	}
	return false
}
