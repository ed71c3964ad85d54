// Package ragpod - ingest.go
// The index-facing half of ingestion: embedding pre-chunked passages and
// inserting them in batches. Parsing and chunking happen upstream.

package ragpod

import (
	"context"
	"log/slog"
	"strings"
)

// Chunk is one pre-chunked passage of a source document.
type Chunk struct {
	Text       string
	PageNumber int64
}

// ChunkInserter is the write side of the vector index.
type ChunkInserter interface {
	Insert(ctx context.Context, rows []IndexRow) error
}

// Ingestor embeds chunks and writes them to the vector index in batches.
type Ingestor struct {
	embedder  Embedder
	index     ChunkInserter
	batchSize int
	logger    *slog.Logger
}

func NewIngestor(embedder Embedder, index ChunkInserter, batchSize int) *Ingestor {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Ingestor{
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		logger:    slog.Default(),
	}
}

func (g *Ingestor) SetLogger(logger *slog.Logger) {
	g.logger = logger
}

// InsertChunks embeds each non-empty chunk and flushes to the index every
// batchSize rows. Returns the number of rows inserted.
func (g *Ingestor) InsertChunks(ctx context.Context, chunks []Chunk) (int, error) {
	rows := make([]IndexRow, 0, g.batchSize)
	inserted := 0

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := g.index.Insert(ctx, rows); err != nil {
			return &UpstreamError{Op: "insert", Err: err}
		}
		inserted += len(rows)
		g.logger.Info("Inserted batch", "rows", len(rows), "total", inserted)
		rows = rows[:0]
		return nil
	}

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		vector, err := g.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return inserted, &UpstreamError{Op: "embed", Err: err}
		}
		rows = append(rows, IndexRow{Vector: vector, Content: chunk.Text, PageNumber: chunk.PageNumber})
		if len(rows) >= g.batchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, err
	}
	return inserted, nil
}
