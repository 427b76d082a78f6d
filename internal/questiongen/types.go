package questiongen

import "github.com/oakline/baseline/internal/collab"

// Generated is an LLM-produced question before it is assigned an ID and
// handed to the caller. Validators operate on this shape; the canonical
// answer never leaves the generator.
type Generated struct {
	// Text is the question prompt displayed to the learner.
	// Plain ASCII text.
	Text string

	// Type indicates how the learner answers this question.
	Type collab.QuestionType

	// Answer is the canonical correct answer as a string. For multiple
	// choice it is the text of the correct option.
	Answer string

	// AnswerType describes the representation of the answer for
	// normalization during validation.
	AnswerType AnswerType

	// Options is populated only for MULTIPLE_CHOICE questions.
	// Contains exactly 4 options, one of which matches Answer.
	Options []string
}

// AnswerType describes the representation of the correct answer.
type AnswerType string

const (
	AnswerTypeInteger AnswerType = "integer" // e.g. "623", "-15"
	AnswerTypeDecimal AnswerType = "decimal" // e.g. "3.75", "0.5"
	AnswerTypeText    AnswerType = "text"    // free text or option text
)
