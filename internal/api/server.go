package api

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ory/herodot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/thodaniel3/chatbot-backend/internal/config"
	apperrors "github.com/thodaniel3/chatbot-backend/internal/errors"
	"github.com/thodaniel3/chatbot-backend/internal/index"
	"github.com/thodaniel3/chatbot-backend/internal/models"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

// Interfaces for dependency injection

type IngestService interface {
	Ingest(ctx context.Context, src index.Source, meta index.Meta) (*models.Document, error)
}

type AnswerService interface {
	Answer(ctx context.Context, question string, topK int) ([]models.Match, error)
}

type Server struct {
	mux     *http.ServeMux
	ingest  IngestService
	answers AnswerService
	records storage.RecordStore
	writer  *herodot.JSONWriter
	cfg     *config.Config
	log     zerolog.Logger
}

func NewServer(ingest IngestService, answers AnswerService, records storage.RecordStore, cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		ingest:  ingest,
		answers: answers,
		records: records,
		writer:  herodot.NewJSONWriter(nil),
		cfg:     cfg,
		log:     log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/upload", s.handleUpload)
	s.mux.HandleFunc("/ask", s.handleAsk)
	s.mux.HandleFunc("/documents", s.listDocuments)
	s.mux.HandleFunc("/health", s.healthCheck)
	s.mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(metricsMiddleware(s.mux))
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		TLSConfig:    s.cfg.GetTLSConfig(),
	}

	s.log.Info().Str("addr", addr).Msg("server starting")
	if s.cfg.Server.TLS.Enabled {
		return srv.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
	}
	return srv.ListenAndServe()
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	// Reject oversized uploads before extraction starts
	maxBytes := s.cfg.Index.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writer.WriteError(w, r, errUploadTooLarge)
			return
		}
		s.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason("Invalid multipart request"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason("Missing file field"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason("Failed to read file"))
		return
	}

	meta := index.Meta{
		OwnerLabel:     cmp.Or(r.FormValue("lecturer"), r.FormValue("uploaded_by")),
		SourceDocument: r.FormValue("source_document"),
		UserKeywords:   r.FormValue("keywords"),
	}

	contentType := header.Header.Get("Content-Type")
	doc, err := s.ingest.Ingest(r.Context(), index.FreshUpload(header.Filename, contentType, data), meta)
	if err != nil {
		switch {
		case apperrors.Is(err, apperrors.ErrBlobUpload):
			s.writer.WriteError(w, r, s.internalError(err, "Failed to store file"))
		case apperrors.Is(err, apperrors.ErrRecordInsert):
			s.writer.WriteError(w, r, s.internalError(err, "Failed to store document record"))
		default:
			s.writer.WriteError(w, r, s.internalError(err, "Failed to ingest document"))
		}
		return
	}

	response := &models.UploadResponse{
		ID:           doc.ID,
		SourceName:   doc.SourceName,
		FileRef:      doc.FileRef,
		KeywordCount: doc.KeywordCount(),
	}
	s.writer.WriteCreated(w, r, "", response)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writer.WriteError(w, r, herodot.ErrBadRequest.WithReason("Invalid request body"))
		return
	}

	matches, err := s.answers.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.writer.WriteError(w, r, s.internalError(err, "Failed to search documents"))
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}

	s.writer.Write(w, r, &models.AskResponse{Matches: matches})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	docs, err := s.records.All(r.Context())
	if err != nil {
		s.writer.WriteError(w, r, s.internalError(err, "Failed to list documents"))
		return
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for i := range docs {
		summaries = append(summaries, models.DocumentSummary{
			ID:           docs[i].ID,
			SourceName:   docs[i].SourceName,
			OwnerLabel:   docs[i].OwnerLabel,
			KeywordCount: docs[i].KeywordCount(),
			FileRef:      docs[i].FileRef,
		})
	}
	s.writer.Write(w, r, &models.DocumentListResponse{Documents: summaries, Count: len(summaries)})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	s.writer.Write(w, r, &models.HealthResponse{Status: "healthy"})
}

var errUploadTooLarge = &herodot.DefaultError{
	CodeField:   http.StatusRequestEntityTooLarge,
	StatusField: http.StatusText(http.StatusRequestEntityTooLarge),
	ErrorField:  "Upload exceeds the size limit",
}

// internalError maps an ingestion/query failure to a 500. Error details are
// only exposed outside production.
func (s *Server) internalError(err error, reason string) error {
	s.log.Error().Err(err).Msg(reason)
	herr := herodot.ErrInternalServerError.WithReason(reason)
	if !s.cfg.IsProduction() {
		herr = herr.WithDebug(err.Error())
	}
	return herr
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Info().Str("method", r.Method).Str("uri", r.RequestURI).
			Str("remote", r.RemoteAddr).Msg("request")
		next.ServeHTTP(w, r)
	})
}
