package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/thodaniel3/chatbot-backend/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteRecordStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "records.db")
	store, err := NewSQLiteRecordStore(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create SQLite record store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func insertTestDocument(t *testing.T, store RecordStore, sourceName, text, keywords string) *models.Document {
	t.Helper()
	doc := &models.Document{
		SourceName: sourceName,
		OwnerLabel: "lecturer",
		Text:       text,
		Keywords:   keywords,
		FileRef:    "https://blobs.example.com/documents/" + sourceName,
	}
	if err := store.Insert(context.Background(), doc); err != nil {
		t.Fatalf("Failed to insert document: %v", err)
	}
	return doc
}

func TestSQLiteRecordStoreInsertAssignsID(t *testing.T) {
	store := setupTestStore(t)

	doc := insertTestDocument(t, store, "notes.txt", "balanced trees", "balanced,trees,notes,txt")
	if doc.ID == "" {
		t.Error("Expected an ID to be assigned on insert")
	}
	if doc.CreatedAt.IsZero() {
		t.Error("Expected a creation time to be assigned on insert")
	}
}

func TestSQLiteRecordStoreCandidatesByTokens(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "trees.txt", "Binary search trees", "binary,search,trees")
	insertTestDocument(t, store, "sorting.txt", "Merge sort", "merge,sort,sorting")

	candidates, err := store.CandidatesByTokens(context.Background(), []string{"trees"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].SourceName != "trees.txt" {
		t.Errorf("Expected only trees.txt, got %v", candidates)
	}

	// Substring semantics: "sort" is a substring of both "sort" and "sorting"
	candidates, err = store.CandidatesByTokens(context.Background(), []string{"sort"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected 1 candidate for sort, got %d", len(candidates))
	}

	// Any-token semantics: one token per document still admits both
	candidates, err = store.CandidatesByTokens(context.Background(), []string{"binary", "merge"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(candidates))
	}
}

func TestSQLiteRecordStoreCandidatesCaseInsensitive(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "Lecture-Notes.PDF", "BALANCED Trees", "balanced,trees")

	candidates, err := store.CandidatesByTokens(context.Background(), []string{"lecture"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected a case-insensitive source-name match, got %d", len(candidates))
	}

	candidates, err = store.CandidatesByTokens(context.Background(), []string{"BALANCED"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected a case-insensitive text match, got %d", len(candidates))
	}
}

func TestSQLiteRecordStoreCandidatesLimit(t *testing.T) {
	store := setupTestStore(t)
	for i := 0; i < 10; i++ {
		insertTestDocument(t, store, "doc.txt", "shared token", "shared,token")
	}

	candidates, err := store.CandidatesByTokens(context.Background(), []string{"shared"}, 3)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("Expected the candidate cap to apply, got %d", len(candidates))
	}
}

func TestSQLiteRecordStoreLikeWildcardsAreEscaped(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "plain.txt", "ordinary content", "ordinary,content")

	// A bare % would match everything if not escaped
	candidates, err := store.CandidatesByTokens(context.Background(), []string{"%"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no matches for a literal %%, got %d", len(candidates))
	}

	candidates, err = store.CandidatesByTokens(context.Background(), []string{"_"}, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no matches for a literal _, got %d", len(candidates))
	}
}

func TestSQLiteRecordStoreEmptyTokens(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "doc.txt", "content", "content")

	candidates, err := store.CandidatesByTokens(context.Background(), nil, 100)
	if err != nil {
		t.Fatalf("Failed to query candidates: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates for empty tokens, got %d", len(candidates))
	}
}

func TestSQLiteRecordStoreHasSource(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "known.txt", "content", "content")

	ok, err := store.HasSource(context.Background(), "known.txt")
	if err != nil {
		t.Fatalf("Failed to check source: %v", err)
	}
	if !ok {
		t.Error("Expected known.txt to exist")
	}

	ok, err = store.HasSource(context.Background(), "unknown.txt")
	if err != nil {
		t.Fatalf("Failed to check source: %v", err)
	}
	if ok {
		t.Error("Expected unknown.txt to be absent")
	}
}

func TestSQLiteRecordStoreAll(t *testing.T) {
	store := setupTestStore(t)
	insertTestDocument(t, store, "a.txt", "alpha", "alpha")
	insertTestDocument(t, store, "b.txt", "beta", "beta")

	docs, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents, got %d", len(docs))
	}
}
