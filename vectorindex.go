package ragpod

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	fieldID          = "id"
	fieldVector      = "vector"
	fieldTextContent = "text_content"
	fieldPageNumber  = "page_number"

	textContentMaxLength = 65535
	ivfNList             = 128
	ivfNProbe            = 16
)

// IndexHit is one raw similarity-search result from the vector index.
type IndexHit struct {
	Content    string
	PageNumber int64
	Score      float64
}

// VectorSearcher is the read side of the vector index collaborator. The
// query vector's dimensionality must match the index's.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]IndexHit, error)
}

// IndexRow is one passage staged for insertion into the vector index.
type IndexRow struct {
	Vector     []float32
	Content    string
	PageNumber int64
}

// MilvusIndex talks to a Milvus collection holding the document passages.
// The connection is established lazily once per process; concurrent first
// callers share a single client.
type MilvusIndex struct {
	URI        string
	Token      string
	Collection string
	Dim        int

	connectOnce sync.Once
	connectErr  error
	conn        client.Client
	logger      *slog.Logger
}

var _ VectorSearcher = &MilvusIndex{}

func NewMilvusIndex(uri string, token string, collection string, dim int) *MilvusIndex {
	return &MilvusIndex{
		URI:        uri,
		Token:      token,
		Collection: collection,
		Dim:        dim,
		logger:     slog.Default(),
	}
}

func (m *MilvusIndex) connect(ctx context.Context) (client.Client, error) {
	m.connectOnce.Do(func() {
		conn, err := client.NewClient(ctx, client.Config{
			Address: m.URI,
			APIKey:  m.Token,
		})
		if err != nil {
			m.connectErr = fmt.Errorf("failed to connect to milvus at %s: %w", m.URI, err)
			return
		}
		m.conn = conn
		m.logger.Info("Connected to Milvus", "uri", m.URI, "collection", m.Collection)
	})
	return m.conn, m.connectErr
}

// EnsureCollection creates, indexes and loads the collection when it does
// not exist yet. Safe to call on every startup.
func (m *MilvusIndex) EnsureCollection(ctx context.Context) error {
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}

	exists, err := conn.HasCollection(ctx, m.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", m.Collection, err)
	}
	if exists {
		return conn.LoadCollection(ctx, m.Collection, false)
	}

	schema := entity.NewSchema().
		WithName(m.Collection).
		WithAutoID(true).
		WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeInt64).WithIsPrimaryKey(true).WithIsAutoID(true)).
		WithField(entity.NewField().WithName(fieldVector).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(m.Dim))).
		WithField(entity.NewField().WithName(fieldTextContent).WithDataType(entity.FieldTypeVarChar).WithMaxLength(textContentMaxLength)).
		WithField(entity.NewField().WithName(fieldPageNumber).WithDataType(entity.FieldTypeInt64))

	if err := conn.CreateCollection(ctx, schema, 1); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", m.Collection, err)
	}

	index, err := entity.NewIndexIvfFlat(entity.COSINE, ivfNList)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	if err := conn.CreateIndex(ctx, m.Collection, fieldVector, index, false); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", m.Collection, err)
	}
	if err := conn.LoadCollection(ctx, m.Collection, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", m.Collection, err)
	}

	m.logger.Info("Created collection", "collection", m.Collection, "dim", m.Dim)
	return nil
}

// Insert writes one batch of passages to the collection.
func (m *MilvusIndex) Insert(ctx context.Context, rows []IndexRow) error {
	if len(rows) == 0 {
		return nil
	}
	conn, err := m.connect(ctx)
	if err != nil {
		return err
	}

	vectors := make([][]float32, len(rows))
	contents := make([]string, len(rows))
	pages := make([]int64, len(rows))
	for i, row := range rows {
		vectors[i] = row.Vector
		contents[i] = row.Content
		pages[i] = row.PageNumber
	}

	_, err = conn.Insert(ctx, m.Collection, "",
		entity.NewColumnFloatVector(fieldVector, m.Dim, vectors),
		entity.NewColumnVarChar(fieldTextContent, contents),
		entity.NewColumnInt64(fieldPageNumber, pages),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %d rows into %s: %w", len(rows), m.Collection, err)
	}
	return nil
}

// Search returns the passages most similar to the query vector, ordered by
// descending similarity as ranked by the index.
func (m *MilvusIndex) Search(ctx context.Context, vector []float32, limit int) ([]IndexHit, error) {
	conn, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(ivfNProbe)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := conn.Search(ctx, m.Collection, nil, "",
		[]string{fieldTextContent, fieldPageNumber},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, entity.COSINE, limit, sp)
	if err != nil {
		return nil, fmt.Errorf("search against %s failed: %w", m.Collection, err)
	}

	hits := []IndexHit{}
	for _, result := range results {
		contents, ok := result.Fields.GetColumn(fieldTextContent).(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("collection %s is missing a varchar %s field", m.Collection, fieldTextContent)
		}
		pages, _ := result.Fields.GetColumn(fieldPageNumber).(*entity.ColumnInt64)

		for i := 0; i < result.ResultCount; i++ {
			content, err := contents.ValueByIdx(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read hit %d: %w", i, err)
			}
			hit := IndexHit{Content: content, Score: float64(result.Scores[i])}
			if pages != nil {
				if page, err := pages.ValueByIdx(i); err == nil {
					hit.PageNumber = page
				}
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// Close releases the underlying connection if one was established.
func (m *MilvusIndex) Close() error {
	if m.conn == nil {
		return nil
	}
	return m.conn.Close()
}
