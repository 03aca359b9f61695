package index

import (
	"context"
	"fmt"

	"github.com/thodaniel3/chatbot-backend/internal/models"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

// Retriever fetches the coarse candidate set for a tokenized query. The
// membership test is delegated to the record store's substring matching, so
// false positives (a token matching inside a larger stored token) are
// expected here and corrected by the scorer.
type Retriever struct {
	records storage.RecordStore
	limit   int
}

func NewRetriever(records storage.RecordStore, limit int) *Retriever {
	return &Retriever{records: records, limit: limit}
}

// Retrieve returns at most the configured limit of candidate documents. An
// empty token sequence short-circuits to an empty set without touching the
// store.
func (r *Retriever) Retrieve(ctx context.Context, queryTokens []string) ([]models.Document, error) {
	if len(queryTokens) == 0 {
		return nil, nil
	}
	candidates, err := r.records.CandidatesByTokens(ctx, queryTokens, r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return candidates, nil
}
