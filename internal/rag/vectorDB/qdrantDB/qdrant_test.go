package qdrantDB

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jortega/docrag/internal/config"
	"github.com/qdrant/go-client/qdrant"
)

func retrievedPoint(docId string, index int) *qdrant.RetrievedPoint {
	return &qdrant.RetrievedPoint{
		Id: qdrant.NewIDNum(uint64(index)),
		Payload: qdrant.NewValueMap(map[string]any{
			"chunk_id":    fmt.Sprintf("%s-%d", docId, index),
			"document_id": docId,
			"chunk_index": index,
			"excerpt":     fmt.Sprintf("excerpt %d of %s", index, docId),
		}),
	}
}

// pagedScroll serves points page by page the way the scroll API does: each
// call returns up to pageSize points and the offset of the next page, or a
// nil offset once exhausted.
func pagedScroll(points []*qdrant.RetrievedPoint, calls *int) func(offset *qdrant.PointId, pageSize uint32) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
	pos := 0
	return func(offset *qdrant.PointId, pageSize uint32) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
		*calls++
		end := pos + int(pageSize)
		if end > len(points) {
			end = len(points)
		}
		page := points[pos:end]
		pos = end
		if pos >= len(points) {
			return page, nil, nil
		}
		return page, points[pos].Id, nil
	}
}

func TestCollectScan_PaginatesPastOnePage(t *testing.T) {
	total := config.QdrantScanPageSize*2 + 7
	points := make([]*qdrant.RetrievedPoint, 0, total)
	for i := 0; i < total; i++ {
		points = append(points, retrievedPoint("doc-a", i))
	}

	var calls int
	entries, err := collectScan(0, pagedScroll(points, &calls))
	if err != nil {
		t.Fatalf("collectScan failed: %v", err)
	}
	if len(entries) != total {
		t.Fatalf("expected %d entries, got %d", total, len(entries))
	}
	if calls < 3 {
		t.Errorf("expected at least 3 scroll pages, got %d", calls)
	}
}

func TestCollectScan_SortsByDocumentThenChunkIndex(t *testing.T) {
	points := []*qdrant.RetrievedPoint{
		retrievedPoint("doc-b", 1),
		retrievedPoint("doc-a", 2),
		retrievedPoint("doc-b", 0),
		retrievedPoint("doc-a", 0),
		retrievedPoint("doc-a", 1),
	}

	var calls int
	entries, err := collectScan(0, pagedScroll(points, &calls))
	if err != nil {
		t.Fatalf("collectScan failed: %v", err)
	}

	want := []struct {
		docId string
		index int
	}{
		{"doc-a", 0}, {"doc-a", 1}, {"doc-a", 2}, {"doc-b", 0}, {"doc-b", 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].DocumentId != w.docId || entries[i].ChunkIndex != w.index {
			t.Errorf("position %d: got (%s, %d), want (%s, %d)",
				i, entries[i].DocumentId, entries[i].ChunkIndex, w.docId, w.index)
		}
	}
}

func TestCollectScan_LimitStopsPaging(t *testing.T) {
	total := config.QdrantScanPageSize * 4
	points := make([]*qdrant.RetrievedPoint, 0, total)
	for i := 0; i < total; i++ {
		points = append(points, retrievedPoint("doc-a", i))
	}

	var calls int
	limit := config.QdrantScanPageSize + 3
	entries, err := collectScan(limit, pagedScroll(points, &calls))
	if err != nil {
		t.Fatalf("collectScan failed: %v", err)
	}
	if len(entries) != limit {
		t.Fatalf("expected %d entries, got %d", limit, len(entries))
	}
	if calls != 2 {
		t.Errorf("expected 2 scroll pages for this limit, got %d", calls)
	}
}

func TestCollectScan_PayloadRoundtrip(t *testing.T) {
	var calls int
	entries, err := collectScan(0, pagedScroll([]*qdrant.RetrievedPoint{retrievedPoint("doc-a", 3)}, &calls))
	if err != nil {
		t.Fatalf("collectScan failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ChunkId != "doc-a-3" || got.DocumentId != "doc-a" || got.ChunkIndex != 3 || got.Excerpt != "excerpt 3 of doc-a" {
		t.Errorf("payload fields lost in scan: %+v", got)
	}
}

func TestCollectScan_ScrollErrorPropagates(t *testing.T) {
	scrollErr := errors.New("connection refused")
	_, err := collectScan(0, func(_ *qdrant.PointId, _ uint32) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
		return nil, nil, scrollErr
	})
	if !errors.Is(err, scrollErr) {
		t.Fatalf("expected scroll error to propagate, got %v", err)
	}
}
