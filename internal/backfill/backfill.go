// Package backfill reconciles the blob store with the record store at
// startup: objects present in the bucket but never indexed are run through
// the ingestion pipeline.
package backfill

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/thodaniel3/chatbot-backend/internal/blob"
	"github.com/thodaniel3/chatbot-backend/internal/index"
	"github.com/thodaniel3/chatbot-backend/internal/storage"
)

// maxConcurrent bounds how many files are extracted and indexed at once.
const maxConcurrent = 4

// Run lists the blob store and indexes every object that has no record yet.
// Per-file failures are logged and skipped; one bad file must not stop the
// batch. Only a failure to list the bucket is returned.
func Run(ctx context.Context, blobs blob.Store, records storage.RecordStore, indexer *index.Indexer, log zerolog.Logger) error {
	objects, err := blobs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list blob store: %w", err)
	}
	if len(objects) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	var indexed atomic.Int64
	for _, obj := range objects {
		g.Go(func() error {
			exists, err := records.HasSource(ctx, obj.Name)
			if err != nil {
				log.Error().Err(err).Str("file", obj.Name).Msg("backfill: record check failed, skipping")
				return nil
			}
			if exists {
				return nil
			}

			if _, err := indexer.Ingest(ctx, index.ExistingBlob(obj.Name, obj.ContentType), index.Meta{}); err != nil {
				log.Error().Err(err).Str("file", obj.Name).Msg("backfill: indexing failed, skipping")
				return nil
			}
			indexed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int("objects", len(objects)).Int64("indexed", indexed.Load()).Msg("backfill complete")
	return nil
}
