package fusion

import (
	"math"
	"testing"
)

func TestFuse_SpeechWeights(t *testing.T) {
	got := Fuse(0.8, 0.5)
	if math.Abs(got-0.68) > 1e-9 {
		t.Errorf("Fuse(0.8, 0.5) = %v, want 0.68", got)
	}
}

func TestFuse_Clamped(t *testing.T) {
	tests := []struct {
		name            string
		intelligibility float64
		naming          float64
		want            float64
	}{
		{"above one", 2.0, 2.0, 1.0},
		{"below zero", -1.0, -1.0, 0.0},
		{"zero inputs", 0, 0, 0},
		{"perfect", 1.0, 1.0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fuse(tt.intelligibility, tt.naming)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Fuse(%v, %v) = %v, want %v", tt.intelligibility, tt.naming, got, tt.want)
			}
		})
	}
}

func TestFuseWeighted(t *testing.T) {
	scores := []WeightedScore{
		{Weight: 0.6, Value: 0.8},
		{Weight: 0.4, Value: 0.5},
	}
	got := FuseWeighted(scores)
	if math.Abs(got-0.68) > 1e-9 {
		t.Errorf("FuseWeighted = %v, want 0.68", got)
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(true); got != ConfidenceHigh {
		t.Errorf("Confidence(true) = %v, want %v", got, ConfidenceHigh)
	}
	if got := Confidence(false); got != ConfidenceLow {
		t.Errorf("Confidence(false) = %v, want %v", got, ConfidenceLow)
	}
}

func TestScoreNaming_PartialMatches(t *testing.T) {
	cards := []Card{
		{ID: "c1", Label: "cat"},
		{ID: "c2", Label: "tree"},
		{ID: "c3", Label: "rocket"},
	}
	answers := []string{"a cat", "a tall tree", "a spaceship"}

	res := ScoreNaming(cards, answers)

	if res.Matches != 2 {
		t.Errorf("Matches = %d, want 2", res.Matches)
	}
	if math.Abs(res.Score-2.0/3.0) > 1e-9 {
		t.Errorf("Score = %v, want 2/3", res.Score)
	}
	wantPerCard := []float64{1, 1, 0}
	for i, want := range wantPerCard {
		if res.PerCard[i] != want {
			t.Errorf("PerCard[%d] = %v, want %v", i, res.PerCard[i], want)
		}
	}
}

func TestScoreNaming_CaseInsensitive(t *testing.T) {
	cards := []Card{{ID: "c1", Label: "Rocket"}}
	res := ScoreNaming(cards, []string{"that's a ROCKET ship"})
	if res.Matches != 1 {
		t.Errorf("Matches = %d, want 1 (case-insensitive substring)", res.Matches)
	}
}

func TestScoreNaming_MissingAnswers(t *testing.T) {
	cards := []Card{
		{ID: "c1", Label: "cat"},
		{ID: "c2", Label: "tree"},
	}
	res := ScoreNaming(cards, []string{"cat"})
	if res.Matches != 1 {
		t.Errorf("Matches = %d, want 1", res.Matches)
	}
	if res.Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", res.Score)
	}
}

func TestScoreNaming_NoCards(t *testing.T) {
	res := ScoreNaming(nil, []string{"anything"})
	if res.Score != 0 || res.Total != 0 {
		t.Errorf("empty cards: got score %v total %d, want 0/0", res.Score, res.Total)
	}
}
