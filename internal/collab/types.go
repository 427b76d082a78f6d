// Package collab defines the contracts and wire shapes for the external
// collaborators the assessment engine consumes: question generation, answer
// validation, speech analysis, completion, and server-side session mirroring.
package collab

import (
	"context"

	"github.com/oakline/baseline/internal/flow"
)

// QuestionType describes how the learner answers a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TypeOpenEnded      QuestionType = "OPEN_ENDED"
	TypeAudioResponse  QuestionType = "AUDIO_RESPONSE"
)

// Question is created by the question-generation collaborator and is
// immutable once created; responses reference it by ID.
type Question struct {
	ID         string       `json:"id"`
	Domain     flow.Domain  `json:"domain"`
	Content    string       `json:"content"`
	Type       QuestionType `json:"type"`
	Difficulty int          `json:"difficulty"`
	Options    []string     `json:"options,omitempty"`
	MediaURL   string       `json:"mediaUrl,omitempty"`
}

// Response is a learner's answer keyed by question ID. Written once per
// question unless the learner retries the step, which overwrites it.
type Response struct {
	Answer    string `json:"answer"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

// QuestionRequest is the input to the question-generation collaborator.
type QuestionRequest struct {
	Domain         flow.Domain `json:"domain"`
	GradeLevel     int         `json:"gradeLevel"`
	QuestionNumber int         `json:"questionNumber"`
	PreviousResult *bool       `json:"previousResult,omitempty"`
}

// QuestionGenerator produces the next question at the current difficulty.
type QuestionGenerator interface {
	NextQuestion(ctx context.Context, req QuestionRequest) (*Question, error)
}

// ValidationResult is the validation collaborator's verdict. The updated
// difficulty is authoritative; the client never computes its own.
type ValidationResult struct {
	IsCorrect         bool `json:"isCorrect"`
	UpdatedDifficulty int  `json:"updatedDifficulty"`
}

// Validator scores a learner answer.
type Validator interface {
	Validate(ctx context.Context, questionID, answer string) (*ValidationResult, error)
}

// SpeechScores holds the numeric outputs of speech analysis.
type SpeechScores struct {
	Intelligibility float64  `json:"intelligibility"`
	PhonemeAccuracy *float64 `json:"phonemeAccuracy,omitempty"`
	Pace            *float64 `json:"pace,omitempty"`
	AgeAppropriate  *bool    `json:"ageAppropriate,omitempty"`
}

// SpeechAnalysis is the speech-analysis collaborator's output.
type SpeechAnalysis struct {
	Transcription string       `json:"transcription,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Scores        SpeechScores `json:"scores"`
	Phonemes      []string     `json:"phonemes,omitempty"`
}

// SpeechRequest carries an audio sample to the analysis collaborator.
type SpeechRequest struct {
	Audio     []byte `json:"audio"`
	TaskType  string `json:"taskType"`
	Component string `json:"component"`
	SessionID string `json:"sessionId,omitempty"`
}

// SpeechAnalyzer scores an audio sample. Audio capture and signal
// processing live entirely on the collaborator side.
type SpeechAnalyzer interface {
	Analyze(ctx context.Context, req SpeechRequest) (*SpeechAnalysis, error)
}

// Submission is the full ledger sent to the completion collaborator.
type Submission struct {
	LearnerID string                     `json:"learnerId"`
	Questions map[flow.Domain][]Question `json:"questions"`
	Responses map[string]Response        `json:"responses"`
}

// CompletionResult is the completion collaborator's acknowledgment plus
// the results payload rendered by the report side.
type CompletionResult struct {
	ID                string                     `json:"id"`
	QuestionLedger    map[flow.Domain][]Question `json:"questionLedger"`
	DetailedResponses map[string]Response        `json:"detailedResponses"`
}

// Completer accepts the final submission.
type Completer interface {
	Complete(ctx context.Context, sub Submission) (*CompletionResult, error)
}

// SessionRecord mirrors snapshot milestones to the server, best-effort.
type SessionRecord struct {
	SessionID   string      `json:"sessionId"`
	LearnerID   string      `json:"learnerId"`
	Domain      flow.Domain `json:"domain,omitempty"`
	ComponentID string      `json:"componentId,omitempty"`
	Progress    int         `json:"progress"`
}

// SessionService allocates and updates the server-side session record.
// Create failures block entry into the assessment (a session ID is required
// downstream); Update failures degrade gracefully, the client snapshot
// stays authoritative for resumability.
type SessionService interface {
	Create(ctx context.Context, learnerID string) (sessionID string, err error)
	Update(ctx context.Context, rec SessionRecord) error
}
