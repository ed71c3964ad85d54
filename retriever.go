package ragpod

import (
	"context"
	"log/slog"
)

// DefaultTopK bounds retrieval when the caller does not ask for a specific
// result count.
const DefaultTopK = 5

// RetrievalHit is one ranked passage from the knowledge base.
type RetrievalHit struct {
	Content    string
	PageNumber int64
	Score      float64
}

// Retriever turns a natural-language query into ranked passages by embedding
// the query and running a similarity search against the vector index. It
// never retries; retry policy belongs to the caller.
type Retriever struct {
	embedder Embedder
	index    VectorSearcher
	logger   *slog.Logger
}

func NewRetriever(embedder Embedder, index VectorSearcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		logger:   slog.Default(),
	}
}

func (r *Retriever) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Retrieve returns up to topK passages ordered by descending similarity.
// A query with no matches yields an empty slice, not an error. Ties keep the
// order the index returned them in.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]RetrievalHit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &UpstreamError{Op: "embed", Err: err}
	}

	indexHits, err := r.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, &UpstreamError{Op: "vector search", Err: err}
	}

	hits := make([]RetrievalHit, len(indexHits))
	for i, hit := range indexHits {
		hits[i] = RetrievalHit{
			Content:    hit.Content,
			PageNumber: hit.PageNumber,
			Score:      hit.Score,
		}
	}
	return hits, nil
}
