// Package index implements the keyword-index pipeline: tokenization at
// ingestion time and candidate retrieval plus exact scoring at query time.
package index

import "strings"

// MaxTokens bounds every tokenize call. It caps both the stored keyword
// set and the worst-case per-query scoring cost.
const MaxTokens = 2000

// stopWords is a fixed list of English function words excluded from both
// indexing and querying. Not configurable at runtime.
var stopWords = map[string]struct{}{
	"all": {}, "and": {}, "are": {}, "but": {}, "can": {},
	"for": {}, "from": {}, "had": {}, "has": {}, "have": {},
	"her": {}, "his": {}, "how": {}, "into": {}, "its": {},
	"not": {}, "onto": {}, "our": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"they": {}, "this": {}, "was": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// Tokenize turns raw text into a deduplicated, order-stable token sequence.
// Input is ASCII-lower-cased, every rune outside [a-z0-9] becomes a space,
// and the result is split on whitespace. Tokens of length <= 2 and stop
// words are dropped; first occurrence wins on duplicates; the sequence is
// capped at MaxTokens. Empty input yields an empty sequence.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	seen := make(map[string]struct{})
	var tokens []string
	for _, word := range strings.Fields(b.String()) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		tokens = append(tokens, word)
		if len(tokens) >= MaxTokens {
			break
		}
	}
	return tokens
}

// JoinKeywords serializes a token sequence into the stored keyword-set form.
func JoinKeywords(tokens []string) string {
	return strings.Join(tokens, ",")
}
