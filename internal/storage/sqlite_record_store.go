// Package storage provides the document record store backing the keyword
// index.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"github.com/thodaniel3/chatbot-backend/internal/models"
)

// SQLiteRecordStore implements RecordStore on a SQLite database. The coarse
// candidate query is delegated to SQL LIKE matching, which is the store's
// pattern-matching capability; exact word-boundary relevance is computed by
// the scorer, not here.
type SQLiteRecordStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRecordStore opens (and if needed creates) the database at dsn.
func NewSQLiteRecordStore(dsn string, log zerolog.Logger) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteRecordStore{db: db, log: log}
	if err := store.initDB(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *SQLiteRecordStore) initDB() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		owner_label TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		keywords TEXT NOT NULL DEFAULT '',
		file_ref TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_source_name ON documents(source_name);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

// Insert stores a new document record, assigning its ID and creation time.
func (s *SQLiteRecordStore) Insert(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO documents (id, source_name, owner_label, text, keywords, file_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		doc.ID, doc.SourceName, doc.OwnerLabel, doc.Text, doc.Keywords, doc.FileRef, doc.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert document record: %w", err)
	}
	return nil
}

// CandidatesByTokens fetches documents where any token appears as a
// substring of the stored keywords, text or source name.
func (s *SQLiteRecordStore) CandidatesByTokens(ctx context.Context, tokens []string, limit int) ([]models.Document, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	var clauses []string
	var args []any
	for _, token := range tokens {
		pattern := "%" + escapeLike(strings.ToLower(token)) + "%"
		clauses = append(clauses,
			`(LOWER(keywords) LIKE ? ESCAPE '\' OR LOWER(text) LIKE ? ESCAPE '\' OR LOWER(source_name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT id, source_name, owner_label, text, keywords, file_ref, created_at
		FROM documents WHERE %s ORDER BY created_at, id LIMIT ?`,
		strings.Join(clauses, " OR "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanDocuments(rows)
}

// All returns every stored record in insertion order.
func (s *SQLiteRecordStore) All(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_name, owner_label, text, keywords, file_ref, created_at
		FROM documents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.scanDocuments(rows)
}

// HasSource reports whether a record with the given source name exists.
// Used by the startup backfill to skip already-indexed bucket objects.
func (s *SQLiteRecordStore) HasSource(ctx context.Context, sourceName string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE source_name = ?`, sourceName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check source name: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteRecordStore) scanDocuments(rows *sql.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.SourceName, &doc.OwnerLabel,
			&doc.Text, &doc.Keywords, &doc.FileRef, &doc.CreatedAt); err != nil {
			s.log.Error().Err(err).Msg("error scanning document row")
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

// escapeLike escapes LIKE wildcards in a pattern fragment. Tokens produced
// by the tokenizer cannot contain them, but the store does not assume its
// callers tokenized.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
