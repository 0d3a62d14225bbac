package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jortega/docrag/internal/config"
	"github.com/jortega/docrag/internal/domain/ragModel"
)

type mockLLM struct {
	calls      int
	onGenerate func(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

func (m *mockLLM) Model() string { return "mock" }

func (m *mockLLM) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	m.calls++
	return m.onGenerate(ctx, systemPrompt, userPrompt)
}

func TestAnswer_EmptyManifestRefusesWithoutModelCall(t *testing.T) {
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			t.Fatal("model must not be invoked when the manifest is empty")
			return "", nil
		},
	}
	g := NewGenerator(llm)

	answer, err := g.Answer(context.Background(), "question", "", ragModel.Manifest{})
	if err != nil {
		t.Fatalf("refusal is not an error: %v", err)
	}
	if answer.Grounded {
		t.Error("refusal must set Grounded false")
	}
	if answer.Text != config.RefusalAnswer {
		t.Errorf("unexpected refusal text %q", answer.Text)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("refusal must carry no citations, got %v", answer.Citations)
	}
	if llm.calls != 0 {
		t.Errorf("model was called %d times", llm.calls)
	}
}

func TestAnswer_CitationsAreManifestSubset(t *testing.T) {
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "Dogs bark [chunk:c1] and also play [chunk:c2].", nil
		},
	}
	g := NewGenerator(llm)
	manifest := ragModel.Manifest{"c1", "c2"}

	answer, err := g.Answer(context.Background(), "q", "ctx", manifest)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !answer.Grounded {
		t.Error("answer with evidence must be grounded")
	}
	for _, id := range answer.Citations {
		if !manifest.Contains(id) {
			t.Errorf("citation %s escaped the manifest", id)
		}
	}
	if len(answer.Citations) != 2 {
		t.Errorf("expected 2 citations, got %v", answer.Citations)
	}
}

func TestAnswer_StripsCitationsOutsideManifest(t *testing.T) {
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "Fact one [chunk:c1]. Invented fact [chunk:bogus].", nil
		},
	}
	g := NewGenerator(llm)

	answer, err := g.Answer(context.Background(), "q", "ctx", ragModel.Manifest{"c1"})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Citations) != 1 || answer.Citations[0] != "c1" {
		t.Errorf("expected only c1, got %v", answer.Citations)
	}
	if strings.Contains(answer.Text, "[chunk:bogus]") {
		t.Error("bogus citation label must be removed from the text")
	}
}

func TestAnswer_DuplicateCitationsCollapse(t *testing.T) {
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "A [chunk:c1]. B [chunk:c1].", nil
		},
	}
	g := NewGenerator(llm)

	answer, err := g.Answer(context.Background(), "q", "ctx", ragModel.Manifest{"c1"})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if len(answer.Citations) != 1 {
		t.Errorf("expected one citation, got %v", answer.Citations)
	}
}

func TestAnswer_ProviderFailureIsGenerationError(t *testing.T) {
	underlying := errors.New("transport down")
	llm := &mockLLM{
		onGenerate: func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
			return "", underlying
		},
	}
	g := NewGenerator(llm)

	_, err := g.Answer(context.Background(), "q", "ctx", ragModel.Manifest{"c1"})
	var genErr *ragModel.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Error("GenerationError must wrap the provider error")
	}
	if llm.calls != config.GenerateAttempts {
		t.Errorf("expected %d attempts, got %d", config.GenerateAttempts, llm.calls)
	}
}

func TestAnswer_RetriesTransientFailure(t *testing.T) {
	llm := &mockLLM{}
	llm.onGenerate = func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
		if llm.calls == 1 {
			return "", errors.New("blip")
		}
		return "Recovered [chunk:c1].", nil
	}
	g := NewGenerator(llm)

	answer, err := g.Answer(context.Background(), "q", "ctx", ragModel.Manifest{"c1"})
	if err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if !answer.Grounded {
		t.Error("recovered answer must be grounded")
	}
}
