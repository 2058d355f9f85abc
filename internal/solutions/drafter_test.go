package solutions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/exampapers/backend/internal/catalog"
	"github.com/exampapers/backend/internal/config"
	"github.com/exampapers/backend/internal/logger"
	"github.com/exampapers/backend/internal/models"
)

type scriptedClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (c *scriptedClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*LLMResponse, error) {
	c.lastPrompt = userPrompt
	if c.err != nil {
		return nil, c.err
	}
	return &LLMResponse{Content: c.reply, PromptTokens: 10, OutputTokens: 5}, nil
}

func newSource(t *testing.T) *catalog.MemorySource {
	t.Helper()
	src, err := catalog.NewMemorySource(catalog.SampleFixture())
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func TestDrafter_DraftAndSave(t *testing.T) {
	src := newSource(t)
	llm := &scriptedClient{reply: "```json\n{\"steps\":[{\"step_number\":1,\"content\":\"First differences: 3; 7; 11; 15\"},{\"step_number\":2,\"content\":\"Tn = 2n² − 3n + 2\"}]}\n```"}
	d := NewDrafter(llm, "test-model", src, logger.NewNop())
	ctx := context.Background()

	steps, resp, err := d.DraftSteps(ctx, "question_2_1_1")
	if err != nil {
		t.Fatalf("DraftSteps: %v", err)
	}
	if len(steps) != 2 || steps[0].QuestionID != "question_2_1_1" || resp.PromptTokens != 10 {
		t.Errorf("steps = %+v, resp = %+v", steps, resp)
	}
	if !strings.Contains(llm.lastPrompt, "Question number: 2.1.1") || !strings.Contains(llm.lastPrompt, "June Exam (2024)") {
		t.Errorf("prompt missing question context:\n%s", llm.lastPrompt)
	}

	if err := d.Save(ctx, "question_2_1_1", steps); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, _ := src.ListAnswerSteps(ctx, "question_2_1_1")
	if len(saved) != 2 || saved[1].Content != "Tn = 2n² − 3n + 2" {
		t.Errorf("saved = %+v", saved)
	}
}

func TestDrafter_IncludesExistingSteps(t *testing.T) {
	llm := &scriptedClient{reply: `{"steps":[{"step_number":1,"content":"x = 2"}]}`}
	d := NewDrafter(llm, "m", newSource(t), logger.NewNop())

	if _, _, err := d.DraftSteps(context.Background(), "question_1_1_3"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(llm.lastPrompt, "Current memorandum") || !strings.Contains(llm.lastPrompt, "By inspection") {
		t.Errorf("prompt does not carry existing steps:\n%s", llm.lastPrompt)
	}
}

func TestDrafter_Errors(t *testing.T) {
	src := newSource(t)
	ctx := context.Background()

	if _, _, err := NewDrafter(nil, "", src, logger.NewNop()).DraftSteps(ctx, "question_1_1_1"); !errors.Is(err, ErrDisabled) {
		t.Errorf("nil client = %v, want ErrDisabled", err)
	}

	d := NewDrafter(&scriptedClient{reply: "{}"}, "m", src, logger.NewNop())
	if _, _, err := d.DraftSteps(ctx, "ghost"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown question = %v, want ErrNotFound", err)
	}

	_, resp, err := d.DraftSteps(ctx, "question_1_1_1")
	var ve *ValidationError
	if !errors.As(err, &ve) || resp == nil {
		t.Errorf("empty draft = %v (resp %v), want ValidationError with response", err, resp)
	}

	boom := errors.New("overloaded")
	d = NewDrafter(&scriptedClient{err: boom}, "m", src, logger.NewNop())
	if _, _, err := d.DraftSteps(ctx, "question_1_1_1"); !errors.Is(err, boom) {
		t.Errorf("client failure = %v", err)
	}
}

type readOnlySource struct{ catalog.Source }

func TestDrafter_SaveNeedsWritableSource(t *testing.T) {
	d := NewDrafter(NewMockClient(), "mock", readOnlySource{newSource(t)}, logger.NewNop())
	if err := d.Save(context.Background(), "question_1_1_1", []models.Answer{{StepNumber: 1, Content: "x"}}); err == nil {
		t.Error("Save on a read-only source should fail")
	}
}

func TestMockClient_ProducesParseableSteps(t *testing.T) {
	d := NewDrafter(NewMockClient(), "mock", newSource(t), logger.NewNop())
	steps, _, err := d.DraftSteps(context.Background(), "question_1_1_1")
	if err != nil {
		t.Fatalf("mock draft: %v", err)
	}
	if len(steps) != 3 || !strings.Contains(steps[0].Content, "x² − 7x + 10 = 0") {
		t.Errorf("steps = %+v", steps)
	}
}

func TestNewClient_Modes(t *testing.T) {
	log := logger.NewNop()
	tests := []struct {
		mode    string
		wantNil bool
		model   string
	}{
		{"mock", false, "mock"},
		{"cli", false, "claude-cli"},
		{"api", false, "claude-sonnet-4-5"},
		{"off", true, ""},
	}
	for _, tt := range tests {
		client, model := NewClient(config.SolutionsConfig{Mode: tt.mode, Model: "claude-sonnet-4-5", APIKey: "k"}, log)
		if (client == nil) != tt.wantNil || model != tt.model {
			t.Errorf("NewClient(%s) = %T, %q", tt.mode, client, model)
		}
	}
}
