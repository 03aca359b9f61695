// Chatbot backend: ingests uploaded documents, builds a keyword index per
// document, and answers questions with ranked document excerpts.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/thodaniel3/chatbot-backend/internal/api"
	"github.com/thodaniel3/chatbot-backend/internal/backfill"
	"github.com/thodaniel3/chatbot-backend/internal/blob"
	"github.com/thodaniel3/chatbot-backend/internal/config"
	"github.com/thodaniel3/chatbot-backend/internal/extract"
	"github.com/thodaniel3/chatbot-backend/internal/index"
	"github.com/thodaniel3/chatbot-backend/internal/logging"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

const backfillTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	logger.Info().Str("environment", cfg.App.Environment).Msg("starting chatbot backend")

	ctx := context.Background()

	var blobs blob.Store
	switch cfg.Blob.Backend {
	case "s3":
		blobs, err = blob.NewS3Store(ctx, blob.S3Options{
			Endpoint:      cfg.Blob.Endpoint,
			AccessKey:     cfg.Blob.AccessKey,
			SecretKey:     cfg.Blob.SecretKey,
			Bucket:        cfg.Blob.Bucket,
			UseSSL:        cfg.Blob.UseSSL,
			PublicBaseURL: cfg.Blob.PublicBaseURL,
		})
	default:
		blobs, err = blob.NewDirStore(cfg.Blob.LocalDir)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize blob store")
	}

	records, err := storage.NewSQLiteRecordStore(cfg.GetDatabaseDSN(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize record store")
	}
	defer func() {
		if err := records.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing record store")
		}
	}()

	params := index.Params{
		MaxStoredText:  cfg.Index.MaxStoredText,
		SnippetLen:     cfg.Index.SnippetLength,
		DefaultTopK:    cfg.Index.DefaultTopK,
		MaxTopK:        cfg.Index.MaxTopK,
		CandidateLimit: cfg.Index.CandidateLimit,
		MaxUploadBytes: cfg.Index.MaxUploadBytes,
	}

	extractor := extract.NewDocumentExtractor()
	indexer := index.NewIndexer(blobs, records, extractor, params, logger)
	engine := index.NewEngine(records, params, logger)

	// Index bucket objects that were uploaded before this process existed
	bfCtx, cancel := context.WithTimeout(ctx, backfillTimeout)
	if err := backfill.Run(bfCtx, blobs, records, indexer, logger); err != nil {
		logger.Error().Err(err).Msg("startup backfill failed")
	}
	cancel()

	server := api.NewServer(indexer, engine, records, cfg, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := server.Run(addr); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}
