package ragpod

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeInserter struct {
	batches [][]IndexRow
	err     error
}

func (f *fakeInserter) Insert(ctx context.Context, rows []IndexRow) error {
	if f.err != nil {
		return f.err
	}
	batch := make([]IndexRow, len(rows))
	copy(batch, rows)
	f.batches = append(f.batches, batch)
	return nil
}

func TestInsertChunksBatches(t *testing.T) {
	inserter := &fakeInserter{}
	ingestor := NewIngestor(&fakeEmbedder{vec: []float32{0.1}}, inserter, 2)

	chunks := []Chunk{
		{Text: "one", PageNumber: 1},
		{Text: "two", PageNumber: 1},
		{Text: "three", PageNumber: 2},
	}
	inserted, err := ingestor.InsertChunks(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}
	if len(inserter.batches) != 2 || len(inserter.batches[0]) != 2 || len(inserter.batches[1]) != 1 {
		t.Errorf("batch sizes = %v", inserter.batches)
	}
	if inserter.batches[1][0].Content != "three" || inserter.batches[1][0].PageNumber != 2 {
		t.Errorf("final row = %+v", inserter.batches[1][0])
	}
}

func TestInsertChunksSkipsBlank(t *testing.T) {
	inserter := &fakeInserter{}
	ingestor := NewIngestor(&fakeEmbedder{vec: []float32{0.1}}, inserter, 10)

	inserted, err := ingestor.InsertChunks(context.Background(), []Chunk{
		{Text: "  "},
		{Text: "kept"},
		{Text: ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}

func TestInsertChunksEmbedFailure(t *testing.T) {
	ingestor := NewIngestor(&fakeEmbedder{err: fmt.Errorf("quota exceeded")}, &fakeInserter{}, 10)

	_, err := ingestor.InsertChunks(context.Background(), []Chunk{{Text: "one"}})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
}

func TestInsertChunksInsertFailure(t *testing.T) {
	ingestor := NewIngestor(&fakeEmbedder{vec: []float32{0.1}}, &fakeInserter{err: fmt.Errorf("collection dropped")}, 1)

	inserted, err := ingestor.InsertChunks(context.Background(), []Chunk{{Text: "one"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}
}
