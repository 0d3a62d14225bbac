package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
	"github.com/jortega/docrag/internal/rag/vectorDB"
	"github.com/jortega/docrag/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var (
	logger         *logger_i.Logger
	qdrantInstance *qdrant.Client
	once           sync.Once
)

var dimension = uint64(config.EmbeddingDimension)

type ClientHolder struct {
	qObj       *qdrant.Client
	collection string
}

// GetQdrantClient wires the production vector index. Returns nil when the
// endpoint is unreachable; main falls back to the in-memory index.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		qObj:       qdrantInstance,
		collection: config.CollectionName,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err = ensureCollection(context.Background(), client, config.CollectionName); err != nil {
		logger.Error("could not create collection", "collectionName", config.CollectionName, "error", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func ensureCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (db *ClientHolder) Dimension() int { return int(dimension) }

func (db *ClientHolder) Upsert(ctx context.Context, entries []ragModel.IndexEntry) error {
	loggr := logger.WithTrace(ctx)

	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		if len(e.Vector) != int(dimension) {
			return &ragModel.IndexError{
				Reason: fmt.Sprintf("vector dimension %d does not match index dimension %d", len(e.Vector), dimension),
			}
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(e.ChunkId),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    e.ChunkId,
				"document_id": e.DocumentId,
				"chunk_index": e.ChunkIndex,
				"excerpt":     e.Excerpt,
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("qdrant upsert failed", "error", err)
		return &ragModel.IndexError{Reason: "upsert failed", Err: err}
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, k int, threshold float32, filter vectorDB.Filter) ([]ragModel.ScoredChunk, error) {
	loggr := logger.WithTrace(ctx)

	if len(vector) != int(dimension) {
		return nil, &ragModel.IndexError{
			Reason: fmt.Sprintf("query vector dimension %d does not match index dimension %d", len(vector), dimension),
		}
	}

	query := &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter.DocumentId != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", filter.DocumentId),
			},
		}
	}

	result, err := db.qObj.Query(ctx, query)
	if err != nil {
		loggr.Error("qdrant query failed", "error", err)
		return nil, &ragModel.IndexError{Reason: "query failed", Err: err}
	}

	hits := make([]ragModel.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, ragModel.ScoredChunk{
			ChunkId:    hit.Payload["chunk_id"].GetStringValue(),
			DocumentId: hit.Payload["document_id"].GetStringValue(),
			ChunkIndex: int(hit.Payload["chunk_index"].GetIntegerValue()),
			Excerpt:    hit.Payload["excerpt"].GetStringValue(),
			Score:      hit.Score,
		})
	}
	return hits, nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentId string) error {
	loggr := logger.WithTrace(ctx)

	_, err := db.qObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("qdrant delete failed", "documentId", documentId, "error", err)
		return &ragModel.IndexError{Reason: "delete failed", Err: err}
	}
	return nil
}

func (db *ClientHolder) Scan(ctx context.Context, limit int) ([]ragModel.ScoredChunk, error) {
	loggr := logger.WithTrace(ctx)

	entries, err := collectScan(limit, func(offset *qdrant.PointId, pageSize uint32) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
		return db.qObj.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: db.collection,
			WithPayload:    qdrant.NewWithPayload(true),
			Limit:          qdrant.PtrOf(pageSize),
			Offset:         offset,
		})
	})
	if err != nil {
		loggr.Error("qdrant scroll failed", "error", err)
		return nil, &ragModel.IndexError{Reason: "scan failed", Err: err}
	}
	return entries, nil
}

// collectScan pages through the collection with the scroll offset until the
// server reports no next page or limit entries are collected. Scroll returns
// points in id order, so the result is sorted by (document, chunk index) to
// match the in-memory index. limit <= 0 means the whole collection, capped at
// QdrantScanMaxPoints.
func collectScan(limit int, scroll func(offset *qdrant.PointId, pageSize uint32) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error)) ([]ragModel.ScoredChunk, error) {
	if limit <= 0 || limit > config.QdrantScanMaxPoints {
		limit = config.QdrantScanMaxPoints
	}

	var entries []ragModel.ScoredChunk
	var offset *qdrant.PointId
	for len(entries) < limit {
		pageSize := uint32(config.QdrantScanPageSize)
		if remaining := limit - len(entries); remaining < config.QdrantScanPageSize {
			pageSize = uint32(remaining)
		}

		points, next, err := scroll(offset, pageSize)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			entries = append(entries, ragModel.ScoredChunk{
				ChunkId:    p.Payload["chunk_id"].GetStringValue(),
				DocumentId: p.Payload["document_id"].GetStringValue(),
				ChunkIndex: int(p.Payload["chunk_index"].GetIntegerValue()),
				Excerpt:    p.Payload["excerpt"].GetStringValue(),
			})
		}
		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DocumentId != entries[j].DocumentId {
			return entries[i].DocumentId < entries[j].DocumentId
		}
		return entries[i].ChunkIndex < entries[j].ChunkIndex
	})
	return entries, nil
}
