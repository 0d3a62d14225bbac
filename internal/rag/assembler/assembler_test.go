package assembler

import (
	"strings"
	"testing"

	"github.com/jortega/docrag/internal/domain/ragModel"
)

func scored(id string, index int, text string) ragModel.ScoredChunk {
	return ragModel.ScoredChunk{ChunkId: id, DocumentId: "doc", ChunkIndex: index, Excerpt: text, Score: 0.9}
}

func TestAssemble_RankedOrderAndManifest(t *testing.T) {
	result := ragModel.RetrievalResult{Chunks: []ragModel.ScoredChunk{
		scored("c1", 1, "dogs bark"),
		scored("c2", 2, "cats and dogs"),
	}}

	context, manifest := Assemble(result)

	if len(manifest) != 2 || manifest[0] != "c1" || manifest[1] != "c2" {
		t.Fatalf("unexpected manifest %v", manifest)
	}
	if strings.Index(context, "dogs bark") > strings.Index(context, "cats and dogs") {
		t.Error("chunks must appear in ranked order")
	}
	for _, id := range manifest {
		if !strings.Contains(context, "[chunk:"+id+"]") {
			t.Errorf("context missing label for %s", id)
		}
	}
}

func TestAssemble_DeduplicatesChunkIds(t *testing.T) {
	result := ragModel.RetrievalResult{Chunks: []ragModel.ScoredChunk{
		scored("c1", 1, "dogs bark"),
		scored("c1", 1, "dogs bark"),
	}}

	context, manifest := Assemble(result)

	if len(manifest) != 1 {
		t.Fatalf("expected one manifest entry, got %v", manifest)
	}
	if strings.Count(context, "dogs bark") != 1 {
		t.Error("duplicate chunk text must appear once")
	}
}

func TestAssemble_BudgetDropsLowerRankedFirst(t *testing.T) {
	long := strings.Repeat("word ", 100)
	result := ragModel.RetrievalResult{Chunks: []ragModel.ScoredChunk{
		scored("c1", 1, long),
		scored("c2", 2, long),
		scored("c3", 3, long),
	}}

	// budget fits roughly one block
	_, manifest := AssembleWithBudget(result, 150)

	if len(manifest) != 1 {
		t.Fatalf("expected exactly one chunk within budget, got %v", manifest)
	}
	if manifest[0] != "c1" {
		t.Errorf("the highest ranked chunk must survive truncation, got %s", manifest[0])
	}
}

func TestAssemble_EmptyResult(t *testing.T) {
	context, manifest := Assemble(ragModel.RetrievalResult{})
	if context != "" {
		t.Error("empty retrieval must produce empty context")
	}
	if len(manifest) != 0 {
		t.Error("empty retrieval must produce empty manifest")
	}
}

func TestManifest_Contains(t *testing.T) {
	m := ragModel.Manifest{"a", "b"}
	if !m.Contains("a") || m.Contains("z") {
		t.Error("manifest membership check is wrong")
	}
}
