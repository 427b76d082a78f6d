// Package fusion combines multiple partial evidence scores for one
// component into a single normalized score and a coarse confidence signal.
package fusion

import (
	"math"
	"strings"
)

// Speech fusion weights: intelligibility carries more signal than naming.
const (
	intelligibilityWeight = 0.6
	namingWeight          = 0.4
)

// Confidence levels for the two-level heuristic. Display-only; never feeds
// difficulty adjustment.
const (
	ConfidenceHigh = 0.9
	ConfidenceLow  = 0.6
)

// Fuse combines a speech intelligibility score with a picture-naming score,
// clamped to [0,1].
func Fuse(intelligibility, namingScore float64) float64 {
	return clamp01(intelligibility*intelligibilityWeight + namingScore*namingWeight)
}

// WeightedScore is one input to the general weighted fusion.
type WeightedScore struct {
	Weight float64
	Value  float64
}

// FuseWeighted combines arbitrary weighted scores, clamped to [0,1].
// Weights are used as given; callers are expected to pass weights that
// sum to 1.
func FuseWeighted(scores []WeightedScore) float64 {
	sum := 0.0
	for _, s := range scores {
		sum += s.Weight * s.Value
	}
	return clamp01(sum)
}

// Confidence maps the upstream age-appropriateness flag to the two-level
// confidence signal.
func Confidence(ageAppropriate bool) float64 {
	if ageAppropriate {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

// Card is one picture-naming card.
type Card struct {
	ID    string
	Label string
}

// NamingResult holds the outcome of scoring a picture-naming sub-task.
type NamingResult struct {
	Score   float64   // matches / total cards
	PerCard []float64 // 1 for each matched card, 0 otherwise, in card order
	Matches int
	Total   int
}

// ScoreNaming scores a picture-naming sub-task. An answer matches its card
// when the card's label appears in the learner's free-text answer as a
// case-insensitive substring. Answers beyond the card count are ignored;
// missing answers score 0.
func ScoreNaming(cards []Card, answers []string) NamingResult {
	res := NamingResult{Total: len(cards), PerCard: make([]float64, len(cards))}
	if len(cards) == 0 {
		return res
	}
	for i, card := range cards {
		if i >= len(answers) {
			break
		}
		answer := strings.ToLower(strings.TrimSpace(answers[i]))
		label := strings.ToLower(card.Label)
		if label != "" && strings.Contains(answer, label) {
			res.PerCard[i] = 1
			res.Matches++
		}
	}
	res.Score = float64(res.Matches) / float64(res.Total)
	return res
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
