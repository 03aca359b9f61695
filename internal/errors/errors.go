// Package errors defines the ingestion and query error taxonomy.
package errors

import "errors"

// Ingestion-path failures. Extraction failure is recoverable: the indexer
// proceeds with empty text. Blob upload failure aborts the ingestion. Record
// insert failure aborts an upload request but is logged and skipped during
// batch backfill.
var (
	ErrExtractionFailed = errors.New("text extraction failed")
	ErrBlobUpload       = errors.New("blob upload failed")
	ErrRecordInsert     = errors.New("record insert failed")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
