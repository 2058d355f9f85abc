package solutions

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestParseSteps_Valid(t *testing.T) {
	input := `{"steps":[{"step_number":1,"content":"Using the quadratic formula"},{"step_number":2,"content":" x = 5 or x = 2 "}]}`

	draft, err := ParseSteps(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(draft.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(draft.Steps))
	}
	if draft.Steps[1].Content != "x = 5 or x = 2" {
		t.Errorf("content not trimmed: %q", draft.Steps[1].Content)
	}
}

func TestParseSteps_CodeFences(t *testing.T) {
	body := `{"steps":[{"step_number":1,"content":"x = 2"}]}`
	for _, input := range []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"  " + body + "  ",
	} {
		if _, err := ParseSteps(input); err != nil {
			t.Errorf("ParseSteps(%q) = %v", input, err)
		}
	}
}

func TestParseSteps_SortsOutOfOrderSteps(t *testing.T) {
	draft, err := ParseSteps(`{"steps":[{"step_number":2,"content":"b"},{"step_number":1,"content":"a"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if draft.Steps[0].Content != "a" {
		t.Errorf("steps not sorted: %+v", draft.Steps)
	}
}

func TestParseSteps_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", "Here is the solution: x = 2", "failed to parse JSON"},
		{"no steps", `{"steps":[]}`, "no steps"},
		{"gap", `{"steps":[{"step_number":1,"content":"a"},{"step_number":3,"content":"c"}]}`, "expected step_number 2"},
		{"starts at zero", `{"steps":[{"step_number":0,"content":"a"}]}`, "expected step_number 1"},
		{"empty content", `{"steps":[{"step_number":1,"content":"   "}]}`, "empty content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSteps(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseSteps_ValidationErrorType(t *testing.T) {
	_, err := ParseSteps(`{"steps":[]}`)
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 1 {
		t.Errorf("error = %#v, want *ValidationError with one entry", err)
	}
}

func TestParseSteps_TooMany(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"steps":[`)
	for i := 1; i <= maxSteps+1; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		b.WriteString(`{"step_number":` + strconv.Itoa(i) + `,"content":"s"}`)
	}
	b.WriteString(`]}`)

	if _, err := ParseSteps(b.String()); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("ParseSteps(%d steps) = %v", maxSteps+1, err)
	}
}

func TestDraftedSteps_Answers(t *testing.T) {
	d := &DraftedSteps{Steps: []DraftedStep{{1, "a"}, {2, "b"}}}
	answers := d.Answers("question_2_1_1")
	if len(answers) != 2 || answers[1].ID != "question_2_1_1-s2" || answers[1].QuestionID != "question_2_1_1" {
		t.Errorf("Answers = %+v", answers)
	}
}
