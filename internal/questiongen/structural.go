package questiongen

import (
	"strings"

	"github.com/oakline/baseline/internal/collab"
)

// StructuralValidator checks that required fields are present, within
// length limits, and have valid enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Generated, _ collab.QuestionRequest) *ValidationError {
	if q.Text == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question_text is empty",
			Retryable: true,
		}
	}
	if len(q.Text) > 500 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question_text exceeds 500 characters",
			Retryable: true,
		}
	}
	switch q.Type {
	case collab.TypeMultipleChoice, collab.TypeOpenEnded, collab.TypeAudioResponse:
	default:
		return &ValidationError{
			Validator: v.Name(),
			Message:   "type must be MULTIPLE_CHOICE, OPEN_ENDED, or AUDIO_RESPONSE",
			Retryable: true,
		}
	}
	if q.AnswerType != AnswerTypeInteger && q.AnswerType != AnswerTypeDecimal && q.AnswerType != AnswerTypeText {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "answer_type must be \"integer\", \"decimal\", or \"text\"",
			Retryable: true,
		}
	}
	if q.Type == collab.TypeMultipleChoice {
		if len(q.Options) != 4 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "multiple choice requires exactly 4 options",
				Retryable: true,
			}
		}
		if !containsFold(q.Options, q.Answer) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "answer does not match any option",
				Retryable: true,
			}
		}
	} else if len(q.Options) != 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "options must be empty for non-choice questions",
			Retryable: true,
		}
	}
	if q.Type != collab.TypeAudioResponse && q.Answer == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "answer is empty",
			Retryable: true,
		}
	}
	return nil
}

func containsFold(options []string, want string) bool {
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
