package index

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/thodaniel3/chatbot-backend/internal/models"
)

func doc(id, text, keywords, sourceName string) models.Document {
	return models.Document{
		ID:         id,
		SourceName: sourceName,
		Text:       text,
		Keywords:   keywords,
	}
}

func TestScoreCountsWordBoundaryOccurrences(t *testing.T) {
	candidates := []models.Document{
		doc("1", "the category page", "category,page", "cats.txt"),
	}

	// "cat" substring-matches "category" at retrieval time but must not
	// score: no word-boundary occurrence exists.
	matches := ScoreAndRank(candidates, []string{"cat"}, 10, 800)
	if len(matches) != 0 {
		t.Errorf("Expected no matches for substring-only candidate, got %v", matches)
	}

	matches = ScoreAndRank(candidates, []string{"category"}, 10, 800)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	// once in text, once in keywords
	if matches[0].Score != 2 {
		t.Errorf("Expected score 2, got %d", matches[0].Score)
	}
}

func TestScorePluralDoesNotMatchSingular(t *testing.T) {
	candidates := []models.Document{
		doc("1", "Binary search trees are balanced trees used for search",
			"binary,search,trees,balanced,used,notes,txt", "notes.txt"),
	}

	// "tree" does not word-boundary-match stored "trees"; only "balanced"
	// contributes, so the document is still returned.
	matches := ScoreAndRank(candidates, []string{"balanced", "tree"}, 2, 800)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match despite tree/trees mismatch, got %d", len(matches))
	}
	if matches[0].Score < 1 {
		t.Errorf("Expected score >= 1, got %d", matches[0].Score)
	}
}

func TestScoreRanksByOccurrenceCount(t *testing.T) {
	candidates := []models.Document{
		doc("once", "balanced structures", "balanced,structures", "a.txt"),
		doc("twice", "balanced trees stay balanced", "balanced,trees,stay", "b.txt"),
	}

	matches := ScoreAndRank(candidates, []string{"balanced"}, 2, 800)
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].DocumentID != "twice" {
		t.Errorf("Expected the double-occurrence document first, got %s", matches[0].DocumentID)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("Expected strictly higher score first: %d vs %d", matches[0].Score, matches[1].Score)
	}
}

func TestScoreTiesKeepRetrievalOrder(t *testing.T) {
	candidates := []models.Document{
		doc("first", "alpha", "alpha", "1.txt"),
		doc("second", "alpha", "alpha", "2.txt"),
		doc("third", "alpha", "alpha", "3.txt"),
	}

	matches := ScoreAndRank(candidates, []string{"alpha"}, 3, 800)
	ids := []string{matches[0].DocumentID, matches[1].DocumentID, matches[2].DocumentID}
	if ids[0] != "first" || ids[1] != "second" || ids[2] != "third" {
		t.Errorf("Tie order not stable: %v", ids)
	}
}

func TestScoreTopKBound(t *testing.T) {
	var candidates []models.Document
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		candidates = append(candidates, doc(id, "shared term", "shared,term", id+".txt"))
	}

	matches := ScoreAndRank(candidates, []string{"shared"}, 2, 800)
	if len(matches) != 2 {
		t.Errorf("Expected topK=2 matches, got %d", len(matches))
	}

	matches = ScoreAndRank(candidates, []string{"shared"}, 50, 800)
	if len(matches) != 5 {
		t.Errorf("Expected matches bounded by candidate count, got %d", len(matches))
	}
}

func TestScoreZeroScoreExcluded(t *testing.T) {
	candidates := []models.Document{
		doc("hit", "balanced trees", "balanced,trees", "a.txt"),
		doc("miss", "unrelated content", "unrelated,content", "b.txt"),
	}

	matches := ScoreAndRank(candidates, []string{"balanced"}, 10, 800)
	for _, m := range matches {
		if m.Score == 0 {
			t.Errorf("Match with score 0 returned: %v", m)
		}
		if m.DocumentID == "miss" {
			t.Errorf("Zero-score candidate was not discarded")
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := doc("1", "balanced trees", "balanced,trees", "a.txt")
	more := doc("1", "balanced trees stay balanced", "balanced,trees,stay", "a.txt")

	baseMatches := ScoreAndRank([]models.Document{base}, []string{"balanced"}, 1, 800)
	moreMatches := ScoreAndRank([]models.Document{more}, []string{"balanced"}, 1, 800)
	if moreMatches[0].Score < baseMatches[0].Score {
		t.Errorf("Adding an occurrence decreased the score: %d -> %d",
			baseMatches[0].Score, moreMatches[0].Score)
	}
}

func TestScoreSnippetIsTextPrefix(t *testing.T) {
	longText := "balanced " + strings.Repeat("x", 2000)
	candidates := []models.Document{doc("1", longText, "balanced", "a.txt")}

	matches := ScoreAndRank(candidates, []string{"balanced"}, 1, 800)
	if len(matches[0].Snippet) != 800 {
		t.Errorf("Expected 800-char snippet, got %d chars", len(matches[0].Snippet))
	}
	if !strings.HasPrefix(longText, matches[0].Snippet) {
		t.Errorf("Snippet is not a prefix of the stored text")
	}
}

func TestScoreSnippetKeepsRunesIntact(t *testing.T) {
	// A two-byte rune sits where a byte-counted cut would land, so a cut
	// that slices bytes instead of characters leaves invalid UTF-8.
	longText := "balanced " + strings.Repeat("x", 790) + strings.Repeat("é", 40)
	candidates := []models.Document{doc("1", longText, "balanced", "a.txt")}

	matches := ScoreAndRank(candidates, []string{"balanced"}, 1, 800)
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
	snippet := matches[0].Snippet
	if !utf8.ValidString(snippet) {
		t.Fatalf("Snippet contains invalid UTF-8: % x", snippet[len(snippet)-4:])
	}
	if got := utf8.RuneCountInString(snippet); got != 800 {
		t.Errorf("Expected an 800-char snippet, got %d chars", got)
	}
	if !strings.HasPrefix(longText, snippet) {
		t.Errorf("Snippet is not a prefix of the stored text")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"abcdef", 4, "abcd"},
		{"abc", 8, "abc"},
		{"abc", 3, "abc"},
		{"", 3, ""},
		{"aéz", 2, "aé"},
		{"héllo wörld", 5, "héllo"},
	}

	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestCountWordOccurrences(t *testing.T) {
	tests := []struct {
		haystack string
		token    string
		want     int
	}{
		{"the cat sat", "cat", 1},
		{"category", "cat", 0},
		{"cat cat cat", "cat", 3},
		{"cat,cat.cat", "cat", 3},
		{"concat", "cat", 0},
		{"cat", "cat", 1},
		{"", "cat", 0},
		{"cat", "", 0},
		{"a1b a1b", "a1b", 2},
	}

	for _, tt := range tests {
		if got := countWordOccurrences(tt.haystack, tt.token); got != tt.want {
			t.Errorf("countWordOccurrences(%q, %q) = %d, want %d", tt.haystack, tt.token, got, tt.want)
		}
	}
}
