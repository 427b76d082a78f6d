package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/llm"
)

func mathRequest() collab.QuestionRequest {
	return collab.QuestionRequest{
		Domain:         flow.DomainMath,
		GradeLevel:     4,
		QuestionNumber: 1,
	}
}

func openEndedJSON() json.RawMessage {
	return json.RawMessage(`{
		"question_text": "What is 345 + 278?",
		"type": "OPEN_ENDED",
		"answer": "623",
		"answer_type": "integer",
		"options": []
	}`)
}

func multipleChoiceJSON() json.RawMessage {
	return json.RawMessage(`{
		"question_text": "Which number is the largest?",
		"type": "MULTIPLE_CHOICE",
		"answer": "623",
		"answer_type": "text",
		"options": ["512", "623", "601", "599"]
	}`)
}

func TestNextQuestion_OpenEnded(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: openEndedJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.NextQuestion(context.Background(), mathRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Content != "What is 345 + 278?" {
		t.Errorf("unexpected content: %q", q.Content)
	}
	if q.Type != collab.TypeOpenEnded {
		t.Errorf("expected OPEN_ENDED, got %q", q.Type)
	}
	if q.Domain != flow.DomainMath {
		t.Errorf("expected MATH domain, got %q", q.Domain)
	}
	if q.Difficulty != 4 {
		t.Errorf("expected requested difficulty 4, got %d", q.Difficulty)
	}
	if q.ID == "" {
		t.Error("expected a generated question ID")
	}
}

func TestNextQuestion_MultipleChoice(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: multipleChoiceJSON()})
	gen := New(mock, DefaultConfig())

	q, err := gen.NextQuestion(context.Background(), mathRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Type != collab.TypeMultipleChoice {
		t.Errorf("expected MULTIPLE_CHOICE, got %q", q.Type)
	}
	if len(q.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.Options))
	}
}

func TestNextQuestion_StructuralRejection(t *testing.T) {
	raw := json.RawMessage(`{
		"question_text": "Pick one.",
		"type": "MULTIPLE_CHOICE",
		"answer": "missing",
		"answer_type": "text",
		"options": ["a", "b", "c", "d"]
	}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig())

	_, err := gen.NextQuestion(context.Background(), mathRequest())
	if err == nil {
		t.Fatal("expected validation error")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if valErr.Validator != "structural" {
		t.Errorf("expected structural validator, got %q", valErr.Validator)
	}
}

func TestNextQuestion_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("API error")})
	gen := New(mock, DefaultConfig())

	_, err := gen.NextQuestion(context.Background(), mathRequest())
	if err == nil {
		t.Fatal("expected error from provider")
	}
	if !strings.Contains(err.Error(), "LLM generation failed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestNextQuestion_PriorQuestionsInPrompt(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: openEndedJSON()},
		llm.MockResponse{Content: multipleChoiceJSON()},
	)
	gen := New(mock, DefaultConfig())
	ctx := context.Background()

	if _, err := gen.NextQuestion(ctx, mathRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := mathRequest()
	req.QuestionNumber = 2
	if _, err := gen.NextQuestion(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userMsg := mock.Calls[1].Messages[0].Content
	if !strings.Contains(userMsg, "What is 345 + 278?") {
		t.Errorf("expected second prompt to list the first question, got:\n%s", userMsg)
	}
}

func TestNextQuestion_PreviousResultInPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: openEndedJSON()})
	gen := New(mock, DefaultConfig())

	wrong := false
	req := mathRequest()
	req.PreviousResult = &wrong
	if _, err := gen.NextQuestion(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userMsg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(userMsg, "incorrectly") {
		t.Errorf("expected prompt to mention the previous incorrect answer, got:\n%s", userMsg)
	}
}

func TestValidate_CorrectStepsUp(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: openEndedJSON()})
	gen := New(mock, DefaultConfig())
	ctx := context.Background()

	q, err := gen.NextQuestion(ctx, mathRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := gen.Validate(ctx, q.ID, "623")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsCorrect {
		t.Error("expected correct answer to be accepted")
	}
	if res.UpdatedDifficulty != 5 {
		t.Errorf("expected difficulty 5 after correct at 4, got %d", res.UpdatedDifficulty)
	}
}

func TestValidate_IncorrectStepsDown(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: openEndedJSON()})
	gen := New(mock, DefaultConfig())
	ctx := context.Background()

	q, err := gen.NextQuestion(ctx, mathRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := gen.Validate(ctx, q.ID, "999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsCorrect {
		t.Error("expected wrong answer to be rejected")
	}
	if res.UpdatedDifficulty != 3 {
		t.Errorf("expected difficulty 3 after incorrect at 4, got %d", res.UpdatedDifficulty)
	}
}

func TestValidate_ClampedAtBounds(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		correct bool
		want    int
	}{
		{"floor", flow.MinDifficulty, false, flow.MinDifficulty},
		{"ceiling", flow.MaxDifficulty, true, flow.MaxDifficulty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextDifficulty(tt.level, tt.correct); got != tt.want {
				t.Errorf("nextDifficulty(%d, %t) = %d, want %d", tt.level, tt.correct, got, tt.want)
			}
		})
	}
}

func TestValidate_UnknownQuestion(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())
	if _, err := gen.Validate(context.Background(), "nope", "42"); err == nil {
		t.Fatal("expected error for unknown question ID")
	}
}

func TestNextQuestion_ConfigOverrides(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: openEndedJSON()})
	cfg := DefaultConfig()
	cfg.MaxTokens = 256
	cfg.Temperature = 0.5
	gen := New(mock, cfg)

	if _, err := gen.NextQuestion(context.Background(), mathRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Calls[0].MaxTokens != 256 {
		t.Errorf("expected MaxTokens 256, got %d", mock.Calls[0].MaxTokens)
	}
	if mock.Calls[0].Temperature != 0.5 {
		t.Errorf("expected Temperature 0.5, got %f", mock.Calls[0].Temperature)
	}
}
