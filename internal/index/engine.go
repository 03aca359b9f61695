package index

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/thodaniel3/chatbot-backend/internal/models"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

// Engine answers natural-language questions with ranked document matches.
// It runs the query path end to end: tokenize, retrieve candidates, score
// and rank.
type Engine struct {
	retriever *Retriever
	params    Params
	log       zerolog.Logger
}

func NewEngine(records storage.RecordStore, params Params, log zerolog.Logger) *Engine {
	return &Engine{
		retriever: NewRetriever(records, params.CandidateLimit),
		params:    params,
		log:       log,
	}
}

// Answer returns the topK best matches for a question. A question that
// tokenizes to nothing (empty, or all stop words) yields an empty match
// list and is not an error. Invalid topK values fall back to the default;
// requests above the configured maximum are clamped to it.
func (e *Engine) Answer(ctx context.Context, question string, topK int) ([]models.Match, error) {
	if topK < 1 {
		topK = e.params.DefaultTopK
	}
	if topK > e.params.MaxTopK {
		topK = e.params.MaxTopK
	}

	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return nil, nil
	}

	candidates, err := e.retriever.Retrieve(ctx, tokens)
	if err != nil {
		return nil, err
	}

	matches := ScoreAndRank(candidates, tokens, topK, e.params.SnippetLen)
	e.log.Debug().Int("tokens", len(tokens)).Int("candidates", len(candidates)).
		Int("matches", len(matches)).Msg("query answered")
	return matches, nil
}
