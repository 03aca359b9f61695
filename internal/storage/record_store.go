package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thodaniel3/chatbot-backend/internal/models"
)

// RecordStore persists document records and serves the coarse candidate
// query. The indexer is the only writer; retrieval is read-only.
type RecordStore interface {
	// Insert stores a new record, assigning its ID and creation time.
	Insert(ctx context.Context, doc *models.Document) error
	// CandidatesByTokens returns documents whose keywords, text or source
	// name contain any of the given tokens as a case-insensitive
	// substring. This is a blunt filter: substring matches inside larger
	// tokens are admitted on purpose and corrected at scoring time. At
	// most limit records are returned.
	CandidatesByTokens(ctx context.Context, tokens []string, limit int) ([]models.Document, error)
	// All returns every stored record.
	All(ctx context.Context) ([]models.Document, error)
	// HasSource reports whether a record with the given source name exists.
	HasSource(ctx context.Context, sourceName string) (bool, error)
	Close() error
}

// MemoryRecordStore is an in-memory RecordStore used in tests and
// single-process development runs.
type MemoryRecordStore struct {
	mu   sync.RWMutex
	docs []models.Document
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (m *MemoryRecordStore) Insert(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *MemoryRecordStore) CandidatesByTokens(_ context.Context, tokens []string, limit int) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(tokens) == 0 {
		return nil, nil
	}

	var out []models.Document
	for _, doc := range m.docs {
		haystack := strings.ToLower(doc.Keywords + " " + doc.Text + " " + doc.SourceName)
		for _, token := range tokens {
			if strings.Contains(haystack, strings.ToLower(token)) {
				out = append(out, doc)
				break
			}
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRecordStore) All(_ context.Context) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *MemoryRecordStore) HasSource(_ context.Context, sourceName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.docs {
		if doc.SourceName == sourceName {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRecordStore) Close() error { return nil }
