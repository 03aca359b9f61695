package index

import (
	"sort"
	"strings"

	"github.com/thodaniel3/chatbot-backend/internal/models"
)

// ScoreAndRank computes an exact relevance score for each candidate and
// returns the top K matches, best first.
//
// The retriever admits candidates on a loose substring test, so this is the
// correction step: each query token is counted only at word boundaries in
// the candidate's haystack (text + keywords + source name, lower-cased).
// Candidates that score zero are dropped. Ties keep retrieval order — the
// sort must stay stable to keep results deterministic.
func ScoreAndRank(candidates []models.Document, queryTokens []string, topK, snippetLen int) []models.Match {
	if len(candidates) == 0 || len(queryTokens) == 0 {
		return nil
	}

	type scoredDoc struct {
		doc   *models.Document
		score int
	}

	scored := make([]scoredDoc, 0, len(candidates))
	for i := range candidates {
		doc := &candidates[i]
		haystack := strings.ToLower(doc.Text + " " + doc.Keywords + " " + doc.SourceName)
		score := 0
		for _, token := range queryTokens {
			score += countWordOccurrences(haystack, token)
		}
		if score > 0 {
			scored = append(scored, scoredDoc{doc: doc, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topK > len(scored) {
		topK = len(scored)
	}

	matches := make([]models.Match, 0, topK)
	for _, s := range scored[:topK] {
		snippet := truncateRunes(s.doc.Text, snippetLen)
		matches = append(matches, models.Match{
			Score:      s.score,
			DocumentID: s.doc.ID,
			Snippet:    snippet,
			OwnerLabel: s.doc.OwnerLabel,
			SourceName: s.doc.SourceName,
			FileRef:    s.doc.FileRef,
		})
	}
	return matches
}

// countWordOccurrences counts occurrences of token in haystack that sit on
// word boundaries on both sides. Tokens are lower-case ASCII alphanumerics,
// so byte comparisons are sufficient.
func countWordOccurrences(haystack, token string) int {
	if token == "" {
		return 0
	}
	count := 0
	for i := 0; ; {
		j := strings.Index(haystack[i:], token)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(token)
		if (start == 0 || !isWordByte(haystack[start-1])) &&
			(end == len(haystack) || !isWordByte(haystack[end])) {
			count++
		}
		i = start + 1
	}
	return count
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// truncateRunes returns the first max runes of s. The stored-text and
// snippet caps are character counts; slicing bytes could split a multi-byte
// rune and leave invalid UTF-8 in the record.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
