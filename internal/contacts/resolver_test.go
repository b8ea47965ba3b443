package contacts

import (
	"context"
	"testing"
)

func testDirectory() *InMemoryDirectory {
	return NewInMemoryDirectory([]Candidate{
		{ID: "1", DisplayName: "Harsh Singh", Number: "+911111111111", Note: "Kushal's roommate"},
		{ID: "2", DisplayName: "Harsh Patel", Number: "+912222222222", Note: "gym"},
		{ID: "3", DisplayName: "Ananya Rao", Number: "+913333333333"},
		{ID: "4", DisplayName: "Kushal Verma", Number: "+914444444444"},
	})
}

func TestResolveExactUniqueName(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	m, err := r.Resolve(context.Background(), "Ananya")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Kind != MatchExact {
		t.Fatalf("Kind = %q, want exact (match: %+v)", m.Kind, m)
	}
	if m.Candidate.DisplayName != "Ananya Rao" {
		t.Fatalf("Candidate = %+v, want Ananya Rao", m.Candidate)
	}
}

func TestResolveMultipleMatches(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	m, err := r.Resolve(context.Background(), "Harsh")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Kind != MatchMultiple {
		t.Fatalf("Kind = %q, want multiple (match: %+v)", m.Kind, m)
	}
	if len(m.Candidates) != 2 {
		t.Fatalf("Candidates = %+v, want both Harsh entries", m.Candidates)
	}
}

func TestResolvePhoneticMisrecognition(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	m, err := r.Resolve(context.Background(), "Anania")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Kind != MatchExact || m.Candidate.DisplayName != "Ananya Rao" {
		t.Fatalf("match = %+v, want phonetic hit on Ananya Rao", m)
	}
}

func TestResolveNoMatch(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	m, err := r.Resolve(context.Background(), "Zzyzx")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Kind != MatchNone {
		t.Fatalf("Kind = %q, want none", m.Kind)
	}
}

func TestResolvePermissionDenied(t *testing.T) {
	dir := testDirectory()
	dir.SetPermission(false)
	r := NewDirectoryResolver(dir)
	m, err := r.Resolve(context.Background(), "Harsh")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.Kind != MatchPermissionDenied {
		t.Fatalf("Kind = %q, want permission_denied", m.Kind)
	}
}

func TestResolveWithKeywordsPicksUniqueWinner(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	keywords := Keywords("the one who is Kushal's roommate")
	m, err := r.ResolveWithKeywords(context.Background(), "Harsh", keywords)
	if err != nil {
		t.Fatalf("ResolveWithKeywords() error = %v", err)
	}
	if m.Kind != MatchExact {
		t.Fatalf("Kind = %q, want exact (match: %+v)", m.Kind, m)
	}
	if m.Candidate.DisplayName != "Harsh Singh" {
		t.Fatalf("Candidate = %+v, want Harsh Singh", m.Candidate)
	}
}

func TestResolveWithKeywordsTieStaysAmbiguous(t *testing.T) {
	r := NewDirectoryResolver(testDirectory())
	// "harsh" hits both candidates equally; no other keyword separates them.
	m, err := r.ResolveWithKeywords(context.Background(), "Harsh", []string{"harsh"})
	if err != nil {
		t.Fatalf("ResolveWithKeywords() error = %v", err)
	}
	if m.Kind != MatchMultiple {
		t.Fatalf("Kind = %q, want multiple on tie", m.Kind)
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("The one who is Kushal's roommate!")
	want := []string{"kushal", "roommate"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keywords() = %v, want %v", got, want)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	c := Candidate{DisplayName: "Harsh Singh", Note: "Kushal's roommate"}
	if got := KeywordScore(c, []string{"kushal", "roommate"}); got != 2 {
		t.Fatalf("KeywordScore() = %d, want 2", got)
	}
	if got := KeywordScore(c, []string{"gym"}); got != 0 {
		t.Fatalf("KeywordScore() = %d, want 0", got)
	}
	if got := KeywordScore(c, nil); got != 0 {
		t.Fatalf("KeywordScore(nil) = %d, want 0", got)
	}
}
