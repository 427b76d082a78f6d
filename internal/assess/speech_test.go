package assess

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/fusion"
	"github.com/oakline/baseline/internal/snapshot"
)

// speechConfig has a single expressive component expecting audio + naming.
func speechConfig() *flow.Config {
	return &flow.Config{
		Variant:           flow.VariantComponent,
		DefaultDifficulty: 5,
		Domains: []flow.DomainConfig{
			{Domain: flow.DomainSpeech, Components: []flow.ComponentConfig{
				{ID: "expressive", Name: "Expressive Language",
					ExpectedSources: []flow.Source{flow.SourceAudio, flow.SourceNaming},
					QuestionCount:   1},
			}},
		},
	}
}

func speechEngine(t *testing.T, backend *collab.MockBackend) *Engine {
	t.Helper()
	snapStore := snapshot.NewFileStore(filepath.Join(t.TempDir(), "snap.json"))
	e := NewEngine(speechConfig(), "L1", Deps{
		Questions: backend, Validator: backend, Speech: backend,
		Completer: backend, Sessions: backend, Snapshots: snapStore,
	})
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSpeech_AudioAloneDoesNotComplete(t *testing.T) {
	backend := collab.NewMockBackend()
	e := speechEngine(t, backend)
	ctx := context.Background()

	out, err := e.AnalyzeSpeech(ctx, []byte("audio-bytes"), "expressive")
	if err != nil {
		t.Fatalf("AnalyzeSpeech: %v", err)
	}
	if out != nil {
		t.Error("component finalized on audio alone; naming still expected")
	}
	if e.State().Evidence.Completed("expressive") {
		t.Error("component marked complete on partial data")
	}
}

func TestSpeech_FusedOnAllSourcesReported(t *testing.T) {
	backend := collab.NewMockBackend()
	age := true
	backend.AnalyzeFn = func(req collab.SpeechRequest) (*collab.SpeechAnalysis, error) {
		return &collab.SpeechAnalysis{
			Transcription: "the cat sat",
			Notes:         "clear articulation",
			Scores:        collab.SpeechScores{Intelligibility: 0.8, AgeAppropriate: &age},
		}, nil
	}
	e := speechEngine(t, backend)
	ctx := context.Background()

	if _, err := e.AnalyzeSpeech(ctx, []byte("audio-bytes"), "expressive"); err != nil {
		t.Fatal(err)
	}

	cards := []fusion.Card{
		{ID: "c1", Label: "cat"},
		{ID: "c2", Label: "tree"},
	}
	out, err := e.ApplyNaming(ctx, cards, []string{"a cat", "a bush"})
	if err != nil {
		t.Fatalf("ApplyNaming: %v", err)
	}
	if out == nil || !out.ComponentCompleted {
		t.Fatal("expected component completion once both sources reported")
	}

	cs := e.State().Evidence.Component("expressive")
	if !cs.Completed {
		t.Fatal("component not completed")
	}
	// Fuse(0.8, 0.5) = 0.68
	if cs.Score == nil || *cs.Score != fusion.Fuse(0.8, 0.5) {
		t.Errorf("Score = %v, want %v", cs.Score, fusion.Fuse(0.8, 0.5))
	}
	if cs.Confidence == nil || *cs.Confidence != fusion.ConfidenceHigh {
		t.Errorf("Confidence = %v, want %v (age-appropriate)", cs.Confidence, fusion.ConfidenceHigh)
	}
	if cs.AINotes != "clear articulation" {
		t.Errorf("AINotes = %q", cs.AINotes)
	}

	// 1 audio item + 2 naming items.
	if len(cs.Evidence) != 3 {
		t.Errorf("evidence count = %d, want 3", len(cs.Evidence))
	}

	// Single-component config: completing it ends the assessment.
	if !out.ReadyToSubmit {
		t.Error("expected readiness to submit")
	}
}

func TestSpeech_LowConfidenceWhenNotAgeAppropriate(t *testing.T) {
	backend := collab.NewMockBackend()
	age := false
	backend.AnalyzeFn = func(collab.SpeechRequest) (*collab.SpeechAnalysis, error) {
		return &collab.SpeechAnalysis{
			Scores: collab.SpeechScores{Intelligibility: 0.6, AgeAppropriate: &age},
		}, nil
	}
	e := speechEngine(t, backend)
	ctx := context.Background()

	e.AnalyzeSpeech(ctx, []byte("audio"), "expressive")
	e.ApplyNaming(ctx, []fusion.Card{{ID: "c1", Label: "dog"}}, []string{"dog"})

	cs := e.State().Evidence.Component("expressive")
	if cs.Confidence == nil || *cs.Confidence != fusion.ConfidenceLow {
		t.Errorf("Confidence = %v, want %v", cs.Confidence, fusion.ConfidenceLow)
	}
}

func TestSpeech_StaleAnalysisDiscarded(t *testing.T) {
	backend := collab.NewMockBackend()
	e := speechEngine(t, backend)
	ctx := context.Background()

	_, gen := e.BeginSpeechTask([]byte("audio"), "expressive")
	e.State().Generation++ // learner moved on

	_, err := e.ApplySpeechAnalysis(ctx, &collab.SpeechAnalysis{}, gen)
	if err != ErrStaleResponse {
		t.Errorf("err = %v, want ErrStaleResponse", err)
	}
	if cs := e.State().Evidence.Component("expressive"); cs != nil && len(cs.Evidence) > 0 {
		t.Error("stale analysis recorded as evidence")
	}
}
