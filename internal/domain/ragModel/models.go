package ragModel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is immutable once ingested; re-ingesting the same id replaces
// its chunk set in the index. Text is part of the persisted payload: the
// document store is what ingestion retries read the body back from. API
// responses use adapter.ToDocumentInfo, which does not carry the text.
type Document struct {
	Id         string    `json:"document_id"`
	Name       string    `json:"doc_name"`
	Text       string    `json:"text"`
	Length     int       `json:"length"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is a bounded segment of one document. Index is 0-based and
// contiguous; Start/End are rune offsets into the source text. Chunks cover
// the document without gaps when concatenated in index order (consecutive
// chunks may share up to the configured overlap).
type Chunk struct {
	DocumentId string `json:"document_id"`
	Index      int    `json:"chunk_index"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"content"`
	TokenCount int    `json:"token_count"`
}

// Id is deterministic so that re-ingestion upserts each chunk in place.
// UUIDv5 keeps the id acceptable to vector databases that only take
// UUID or integer point ids.
func (c Chunk) Id() string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", c.DocumentId, c.Index))).String()
}

// IndexEntry is what the vector index owns per chunk: the vector plus the
// minimal metadata needed to cite the chunk back.
type IndexEntry struct {
	ChunkId    string
	Vector     []float32
	DocumentId string
	ChunkIndex int
	Excerpt    string
}

// Query scopes retrieval to one document when DocumentId is set. Zero TopK
// and Threshold mean "use configured defaults".
type Query struct {
	Question   string
	DocumentId string
	TopK       int
	Threshold  float32
}

// ScoredChunk pairs an index hit with its similarity score.
type ScoredChunk struct {
	ChunkId    string
	DocumentId string
	ChunkIndex int
	Excerpt    string
	Score      float32
}

// RetrievalResult is ordered descending by score; every entry clears the
// query threshold. Empty is a valid result, not an error.
type RetrievalResult struct {
	Chunks []ScoredChunk
}

// Manifest bounds the citation set available to the generator: the chunk ids
// actually present in the assembled context, in context order.
type Manifest []string

func (m Manifest) Contains(chunkId string) bool {
	for _, id := range m {
		if id == chunkId {
			return true
		}
	}
	return false
}

// Answer carries the generated text and the citations that survived the
// manifest-membership check. Grounded is false only for the refusal case.
type Answer struct {
	Text      string   `json:"answer"`
	Citations []string `json:"citations"`
	Grounded  bool     `json:"grounded"`
}
