package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jortega/docrag/internal/domain/ragModel"
)

const threeParagraphs = "Paragraph 1 about cats.\n\nParagraph 2 about dogs.\n\nParagraph 3 about cats and dogs."

func TestSplit_Deterministic(t *testing.T) {
	first, err := Split("doc-1", threeParagraphs, 10, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	second, err := Split("doc-1", threeParagraphs, 10, 2)
	if err != nil {
		t.Fatalf("Split failed on second call: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("chunk boundaries differ between identical calls:\n%+v\n%+v", first, second)
	}
}

func TestSplit_ParagraphBoundaries(t *testing.T) {
	chunks, err := Split("doc-1", threeParagraphs, 10, 0)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if !strings.Contains(c.Text, "Paragraph") {
			t.Errorf("chunk %d text unexpected: %q", i, c.Text)
		}
	}
	if !strings.Contains(chunks[1].Text, "dogs") {
		t.Errorf("middle chunk should hold the dogs paragraph, got %q", chunks[1].Text)
	}
}

func TestSplit_CoverageInvariant(t *testing.T) {
	texts := []string{
		threeParagraphs,
		strings.Repeat("All work and no play makes for dull tooling. ", 40),
		"single short line",
		strings.Repeat("x", 5000), // no separators at all, forces hard cuts
	}

	for _, overlap := range []int{0, 5} {
		for _, text := range texts {
			chunks, err := Split("doc-cov", text, 20, overlap)
			if err != nil {
				t.Fatalf("Split failed for overlap=%d: %v", overlap, err)
			}

			runes := []rune(text)
			prevEnd := 0
			for i, c := range chunks {
				if i == 0 && c.Start != 0 {
					t.Fatalf("first chunk starts at %d", c.Start)
				}
				if i > 0 && c.Start > prevEnd {
					t.Fatalf("gap before chunk %d: start %d, previous end %d", i, c.Start, prevEnd)
				}
				if got := string(runes[c.Start:c.End]); got != c.Text {
					t.Fatalf("chunk %d text does not match its offsets", i)
				}
				prevEnd = c.End
			}
			if prevEnd != len(runes) {
				t.Fatalf("chunks end at %d, document has %d runes", prevEnd, len(runes))
			}
		}
	}
}

func TestSplit_TokenBudget(t *testing.T) {
	text := strings.Repeat("word ", 500)
	chunks, err := Split("doc-1", text, 25, 0)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for _, c := range chunks {
		if c.TokenCount > 25 {
			t.Errorf("chunk %d estimate %d exceeds budget", c.Index, c.TokenCount)
		}
	}
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxTokens int
		overlap   int
	}{
		{"empty", "", 10, 0},
		{"whitespace only", "   \n\t ", 10, 0},
		{"zero budget", "some text", 0, 0},
		{"overlap at budget", "some text", 10, 10},
		{"negative overlap", "some text", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("doc-1", tt.text, tt.maxTokens, tt.overlap)
			var ingErr *ragModel.IngestionError
			if !errors.As(err, &ingErr) {
				t.Errorf("expected IngestionError, got %v", err)
			}
		})
	}
}

func TestSplit_DeterministicChunkIds(t *testing.T) {
	a, _ := Split("doc-1", threeParagraphs, 10, 0)
	b, _ := Split("doc-1", threeParagraphs, 10, 0)
	for i := range a {
		if a[i].Id() != b[i].Id() {
			t.Errorf("chunk %d id changed across runs", i)
		}
	}
	other, _ := Split("doc-2", threeParagraphs, 10, 0)
	if a[0].Id() == other[0].Id() {
		t.Error("chunk ids must differ across documents")
	}
}
