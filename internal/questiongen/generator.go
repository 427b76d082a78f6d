// Package questiongen generates assessment questions with an LLM and
// scores the answers it generated. It implements the question and
// validation collaborator contracts, acting as the local backend when no
// remote assessment service is configured.
package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/llm"
)

// Generator produces questions via the LLM provider and remembers the
// canonical answer for each, so it can later validate learner responses
// and hand back the adjusted difficulty.
type Generator struct {
	provider llm.Provider
	config   Config

	mu      sync.Mutex
	answers map[string]answerKey
	asked   map[flow.Domain][]string
}

// answerKey is what Validate needs to score a response: the canonical
// answer as generated, plus the difficulty the question was served at.
type answerKey struct {
	answer     string
	answerType AnswerType
	qtype      collab.QuestionType
	options    []string
	difficulty int
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{
		provider: provider,
		config:   cfg,
		answers:  make(map[string]answerKey),
		asked:    make(map[flow.Domain][]string),
	}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	QuestionText string   `json:"question_text"`
	Type         string   `json:"type"`
	Answer       string   `json:"answer"`
	AnswerType   string   `json:"answer_type"`
	Options      []string `json:"options"`
}

// NextQuestion generates the next question for the requested domain at
// the requested difficulty. The returned question carries a fresh ID;
// the canonical answer stays server-side in the generator.
func (g *Generator) NextQuestion(ctx context.Context, req collab.QuestionRequest) (*collab.Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	g.mu.Lock()
	prior := append([]string(nil), g.asked[req.Domain]...)
	g.mu.Unlock()

	userMsg := buildUserMessage(req, prior, g.config)

	llmReq := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	gen := &Generated{
		Text:       raw.QuestionText,
		Type:       collab.QuestionType(raw.Type),
		Answer:     raw.Answer,
		AnswerType: AnswerType(raw.AnswerType),
		Options:    raw.Options,
	}

	// Run validators in order.
	for _, v := range g.config.Validators {
		if verr := v.Validate(gen, req); verr != nil {
			return nil, verr
		}
	}

	q := &collab.Question{
		ID:         uuid.NewString(),
		Domain:     req.Domain,
		Content:    gen.Text,
		Type:       gen.Type,
		Difficulty: req.GradeLevel,
		Options:    gen.Options,
	}

	g.mu.Lock()
	g.answers[q.ID] = answerKey{
		answer:     gen.Answer,
		answerType: gen.AnswerType,
		qtype:      gen.Type,
		options:    gen.Options,
		difficulty: req.GradeLevel,
	}
	g.asked[req.Domain] = append(g.asked[req.Domain], gen.Text)
	g.mu.Unlock()

	return q, nil
}

// Validate scores a learner answer against the stored canonical answer
// and returns the adjusted difficulty: one step up on a correct answer,
// one step down on an incorrect one, clamped to the grade scale.
func (g *Generator) Validate(_ context.Context, questionID, answer string) (*collab.ValidationResult, error) {
	g.mu.Lock()
	key, ok := g.answers[questionID]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown question ID %q", questionID)
	}

	correct := CheckAnswer(answer, key)
	return &collab.ValidationResult{
		IsCorrect:         correct,
		UpdatedDifficulty: nextDifficulty(key.difficulty, correct),
	}, nil
}

// nextDifficulty steps the grade-scale level after a scored answer.
func nextDifficulty(current int, correct bool) int {
	next := current - 1
	if correct {
		next = current + 1
	}
	if next < flow.MinDifficulty {
		return flow.MinDifficulty
	}
	if next > flow.MaxDifficulty {
		return flow.MaxDifficulty
	}
	return next
}
