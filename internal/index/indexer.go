package index

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thodaniel3/chatbot-backend/internal/blob"
	apperrors "github.com/thodaniel3/chatbot-backend/internal/errors"
	"github.com/thodaniel3/chatbot-backend/internal/extract"
	"github.com/thodaniel3/chatbot-backend/internal/models"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

// Params holds the fixed caps of the index pipeline, constructed once at
// startup and passed in explicitly.
type Params struct {
	// MaxStoredText bounds the text persisted per record.
	MaxStoredText int
	// SnippetLen bounds the text prefix returned with each match.
	SnippetLen int
	// DefaultTopK is used when a query requests no (or an invalid) result count.
	DefaultTopK int
	// MaxTopK bounds the result count a query may request.
	MaxTopK int
	// CandidateLimit bounds the coarse retrieval stage.
	CandidateLimit int
	// MaxUploadBytes bounds accepted upload sizes.
	MaxUploadBytes int64
}

// DefaultParams returns the production caps.
func DefaultParams() Params {
	return Params{
		MaxStoredText:  20000,
		SnippetLen:     800,
		DefaultTopK:    2,
		MaxTopK:        50,
		CandidateLimit: 2000,
		MaxUploadBytes: 10 << 20,
	}
}

// Source is the tagged ingestion input: either a fresh upload carrying its
// bytes, or an object already present in the blob store. Both feed the same
// Ingest entry point.
type Source struct {
	Filename    string
	ContentType string
	Data        []byte
	// FromBlob marks an object that already exists in the blob store under
	// Filename; its bytes are downloaded instead of uploaded.
	FromBlob bool
}

// FreshUpload builds a Source for bytes received from a client.
func FreshUpload(filename, contentType string, data []byte) Source {
	return Source{Filename: filename, ContentType: contentType, Data: data}
}

// ExistingBlob builds a Source for an object already in the blob store.
func ExistingBlob(name, contentType string) Source {
	return Source{Filename: name, ContentType: contentType, FromBlob: true}
}

// Meta carries the user-supplied attribution and tags for an ingestion.
// OwnerLabel is provenance only; SourceDocument and UserKeywords participate
// in indexing like extracted text.
type Meta struct {
	OwnerLabel     string
	SourceDocument string
	UserKeywords   string
}

// Indexer runs the ingestion pipeline: extract text, build the keyword set,
// store the original bytes, persist the record. It is the sole writer of
// document records.
type Indexer struct {
	blobs     blob.Store
	records   storage.RecordStore
	extractor extract.Extractor
	params    Params
	log       zerolog.Logger
}

func NewIndexer(blobs blob.Store, records storage.RecordStore, extractor extract.Extractor, params Params, log zerolog.Logger) *Indexer {
	return &Indexer{
		blobs:     blobs,
		records:   records,
		extractor: extractor,
		params:    params,
		log:       log,
	}
}

// Ingest processes one document and returns the persisted record.
//
// Extraction failure is recoverable: the document is indexed with empty
// text so the filename and user keywords still make it retrievable. A blob
// upload failure or record insert failure aborts the ingestion; callers on
// the batch path may choose to log and continue.
func (ix *Indexer) Ingest(ctx context.Context, src Source, meta Meta) (*models.Document, error) {
	data := src.Data
	if src.FromBlob {
		var err error
		data, err = ix.blobs.Download(ctx, src.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to download %q for indexing: %w", src.Filename, err)
		}
	}

	text, err := ix.extractor.Extract(data, src.ContentType, src.Filename)
	if err != nil {
		ix.log.Warn().Err(err).Str("file", src.Filename).
			Msg("text extraction failed, indexing with empty text")
		text = ""
	}

	// Tokenize the full text before the stored copy is truncated, so the
	// keyword set can reference content beyond the stored window.
	tokens := Tokenize(text + " " + src.Filename + " " + meta.SourceDocument + " " + meta.UserKeywords)

	stored := truncateRunes(text, ix.params.MaxStoredText)

	if !src.FromBlob {
		if err := ix.blobs.Put(ctx, src.Filename, bytes.NewReader(data), int64(len(data)), src.ContentType); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrBlobUpload, err)
		}
	}

	doc := &models.Document{
		SourceName: src.Filename,
		OwnerLabel: meta.OwnerLabel,
		Text:       stored,
		Keywords:   JoinKeywords(tokens),
		FileRef:    ix.blobs.PublicRef(src.Filename),
	}
	if err := ix.records.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRecordInsert, err)
	}

	ix.log.Info().Str("id", doc.ID).Str("file", doc.SourceName).
		Int("keywords", len(tokens)).Msg("document indexed")
	return doc, nil
}
