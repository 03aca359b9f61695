// Package extract provides format-specific text extraction for ingested
// documents. Callers treat any extraction error as "proceed with empty
// text": a document must still be ingestible when its body cannot be read.
package extract

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor turns raw document bytes into plain text.
type Extractor interface {
	Extract(data []byte, contentType, filename string) (string, error)
}

// DocumentExtractor dispatches on declared content type, falling back to
// the filename extension, then to raw-bytes-as-UTF8 for unrecognized types.
type DocumentExtractor struct{}

func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

func (e *DocumentExtractor) Extract(data []byte, contentType, filename string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	switch detectKind(contentType, filename) {
	case kindPDF:
		return extractPDF(data)
	case kindDOCX:
		return extractDOCX(data)
	default:
		return decodePlain(data), nil
	}
}

type documentKind int

const (
	kindPlain documentKind = iota
	kindPDF
	kindDOCX
)

func detectKind(contentType, filename string) documentKind {
	ct := strings.ToLower(contentType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case strings.Contains(ct, "application/pdf") || ext == ".pdf":
		return kindPDF
	case strings.Contains(ct, "officedocument.wordprocessingml") || ext == ".docx":
		return kindDOCX
	default:
		return kindPlain
	}
}

// decodePlain returns the bytes as a string, replacing invalid UTF-8
// sequences. Covers CSV, plain text and every unrecognized type.
func decodePlain(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), " ")
}
