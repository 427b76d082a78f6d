package questiongen

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckAnswer compares the learner's input against the stored canonical
// answer. Returns true if the answer is correct.
//
// Normalization rules:
// - Whitespace is trimmed
// - Comparison is case-insensitive
// - For decimals: trailing zeros are ignored (e.g., "3.50" matches "3.5")
// - For integers: leading zeros are ignored (e.g., "007" matches "7")
// - For multiple choice: matches against the option text or index (1-4)
func CheckAnswer(learnerAnswer string, key answerKey) bool {
	learnerAnswer = strings.TrimSpace(learnerAnswer)
	if learnerAnswer == "" {
		return false
	}

	if len(key.options) > 0 {
		return checkMultipleChoice(learnerAnswer, key)
	}

	normalizedLearner, err := normalizeAnswer(learnerAnswer, key.answerType)
	if err != nil {
		return false
	}
	normalizedCorrect, err := normalizeAnswer(key.answer, key.answerType)
	if err != nil {
		return false
	}
	return strings.EqualFold(normalizedLearner, normalizedCorrect)
}

// checkMultipleChoice checks the learner's answer against the options.
func checkMultipleChoice(learnerAnswer string, key answerKey) bool {
	// Try matching by index (1-4).
	if idx, err := strconv.Atoi(learnerAnswer); err == nil && idx >= 1 && idx <= len(key.options) {
		return strings.EqualFold(
			strings.TrimSpace(key.options[idx-1]),
			strings.TrimSpace(key.answer),
		)
	}

	// Match by text (case-insensitive).
	return strings.EqualFold(learnerAnswer, strings.TrimSpace(key.answer))
}

// normalizeAnswer normalizes an answer string for comparison.
func normalizeAnswer(answer string, answerType AnswerType) (string, error) {
	answer = strings.TrimSpace(answer)

	switch answerType {
	case AnswerTypeInteger:
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid integer: %w", err)
		}
		return strconv.FormatInt(n, 10), nil

	case AnswerTypeDecimal:
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("invalid decimal: %w", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	default:
		return answer, nil
	}
}
