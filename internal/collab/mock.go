package collab

import (
	"context"
	"fmt"
	"sync"

	"github.com/oakline/baseline/internal/flow"
)

// MockBackend is a deterministic in-memory implementation of all five
// collaborator contracts. Used in tests and for offline runs.
type MockBackend struct {
	mu sync.Mutex

	// QuestionFn overrides question generation when set.
	QuestionFn func(req QuestionRequest) (*Question, error)

	// ValidateFn overrides validation when set.
	ValidateFn func(questionID, answer string) (*ValidationResult, error)

	// AnalyzeFn overrides speech analysis when set.
	AnalyzeFn func(req SpeechRequest) (*SpeechAnalysis, error)

	// CompleteErr, when set, fails submissions.
	CompleteErr error

	// CreateErr, when set, fails session allocation.
	CreateErr error

	questionSeq int
	Submissions []Submission
	Updates     []SessionRecord
}

// NewMockBackend creates a MockBackend with default behaviors: echo-style
// questions, validation that marks answers containing "right" correct and
// nudges difficulty by one.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) NextQuestion(_ context.Context, req QuestionRequest) (*Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QuestionFn != nil {
		return m.QuestionFn(req)
	}
	m.questionSeq++
	return &Question{
		ID:         fmt.Sprintf("q-%s-%d", req.Domain, m.questionSeq),
		Domain:     req.Domain,
		Content:    fmt.Sprintf("%s prompt %d (grade %d)", req.Domain, req.QuestionNumber, req.GradeLevel),
		Type:       TypeOpenEnded,
		Difficulty: req.GradeLevel,
	}, nil
}

func (m *MockBackend) Validate(_ context.Context, questionID, answer string) (*ValidationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ValidateFn != nil {
		return m.ValidateFn(questionID, answer)
	}
	correct := answer != ""
	diff := flow.FixedDefaultDifficulty
	if correct {
		diff++
	}
	return &ValidationResult{IsCorrect: correct, UpdatedDifficulty: diff}, nil
}

func (m *MockBackend) Analyze(_ context.Context, req SpeechRequest) (*SpeechAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(req)
	}
	age := true
	return &SpeechAnalysis{
		Transcription: "mock transcription",
		Scores:        SpeechScores{Intelligibility: 0.8, AgeAppropriate: &age},
	}, nil
}

func (m *MockBackend) Complete(_ context.Context, sub Submission) (*CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submissions = append(m.Submissions, sub)
	if m.CompleteErr != nil {
		return nil, m.CompleteErr
	}
	return &CompletionResult{
		ID:                fmt.Sprintf("result-%d", len(m.Submissions)),
		QuestionLedger:    sub.Questions,
		DetailedResponses: sub.Responses,
	}, nil
}

func (m *MockBackend) Create(_ context.Context, learnerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", &SessionAllocationError{Err: m.CreateErr}
	}
	return "session-" + learnerID, nil
}

func (m *MockBackend) Update(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, rec)
	return nil
}
