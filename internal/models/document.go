package models

import "time"

// Document is one ingested file's stored record. Written once by the
// indexer at ingestion time, read-only afterwards.
type Document struct {
	ID         string    `json:"id"`
	SourceName string    `json:"source_name"`
	OwnerLabel string    `json:"owner_label"`
	Text       string    `json:"text"`
	Keywords   string    `json:"keywords"` // comma-joined, order-stable token set
	FileRef    string    `json:"file_ref"`
	CreatedAt  time.Time `json:"created_at"`
}

// KeywordCount returns the number of tokens in the stored keyword set.
func (d *Document) KeywordCount() int {
	if d.Keywords == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(d.Keywords); i++ {
		if d.Keywords[i] == ',' {
			n++
		}
	}
	return n
}

// Match is one scored query result.
type Match struct {
	Score      int    `json:"score"`
	DocumentID string `json:"document_id"`
	Snippet    string `json:"snippet"`
	OwnerLabel string `json:"owner_label"`
	SourceName string `json:"source_name"`
	FileRef    string `json:"file_ref"`
}

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type AskResponse struct {
	Matches []Match `json:"matches"`
}

type UploadResponse struct {
	ID           string `json:"id"`
	SourceName   string `json:"source_name"`
	FileRef      string `json:"file_ref"`
	KeywordCount int    `json:"keyword_count"`
}

type DocumentSummary struct {
	ID           string `json:"id"`
	SourceName   string `json:"source_name"`
	OwnerLabel   string `json:"owner_label"`
	KeywordCount int    `json:"keyword_count"`
	FileRef      string `json:"file_ref"`
}

type DocumentListResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
