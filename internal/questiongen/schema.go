package questiongen

import "github.com/oakline/baseline/internal/llm"

// QuestionSchema defines the JSON schema for LLM question generation
// responses.
var QuestionSchema = &llm.Schema{
	Name:        "baseline-question",
	Description: "A single baseline assessment question with its canonical answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question prompt shown to the learner, in plain ASCII text",
			},
			"type": map[string]any{
				"type":        "string",
				"enum":        []any{"MULTIPLE_CHOICE", "OPEN_ENDED", "AUDIO_RESPONSE"},
				"description": "How the learner answers: pick an option, type a response, or speak",
			},
			"answer": map[string]any{
				"type":        "string",
				"description": "The correct answer. For MULTIPLE_CHOICE: the text of the correct option. Empty for AUDIO_RESPONSE.",
			},
			"answer_type": map[string]any{
				"type":        "string",
				"enum":        []any{"integer", "decimal", "text"},
				"description": "The representation of the answer, used for normalization",
			},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Exactly 4 options for MULTIPLE_CHOICE. Empty array otherwise.",
			},
		},
		"required":             []any{"question_text", "type", "answer", "answer_type", "options"},
		"additionalProperties": false,
	},
}
