package evidence

import (
	"errors"
	"testing"

	"github.com/oakline/baseline/internal/flow"
)

func floatPtr(f float64) *float64 { return &f }

func TestAdd_CreatesComponentState(t *testing.T) {
	c := NewCollector()
	if err := c.Add("articulation", Item{Prompt: "say cat", Response: "cat", Modality: ModalityAudio}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	cs := c.Component("articulation")
	if cs == nil {
		t.Fatal("expected component state")
	}
	if len(cs.Evidence) != 1 {
		t.Errorf("evidence count = %d, want 1", len(cs.Evidence))
	}
	if cs.Completed {
		t.Error("new component should not be completed")
	}
}

func TestAdd_AppendOnly(t *testing.T) {
	c := NewCollector()
	c.Add("fluency", Item{Prompt: "p1"})
	c.Add("fluency", Item{Prompt: "p2"}, Item{Prompt: "p3"})

	cs := c.Component("fluency")
	if len(cs.Evidence) != 3 {
		t.Fatalf("evidence count = %d, want 3", len(cs.Evidence))
	}
	if cs.Evidence[0].Prompt != "p1" || cs.Evidence[2].Prompt != "p3" {
		t.Error("evidence order not preserved")
	}
}

func TestMarkCompleted_OneWay(t *testing.T) {
	c := NewCollector()
	c.Add("expressive", Item{Prompt: "p"})

	err := c.MarkCompleted("expressive", CompletionPatch{Score: floatPtr(0.7), AINotes: "good"})
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	cs := c.Component("expressive")
	if !cs.Completed {
		t.Error("expected completed")
	}
	if cs.Score == nil || *cs.Score != 0.7 {
		t.Errorf("Score = %v, want 0.7", cs.Score)
	}
	if cs.AINotes != "good" {
		t.Errorf("AINotes = %q", cs.AINotes)
	}

	// Second completion is rejected: false→true happens once per attempt.
	if err := c.MarkCompleted("expressive", CompletionPatch{}); !errors.Is(err, ErrComponentCompleted) {
		t.Errorf("second MarkCompleted err = %v, want ErrComponentCompleted", err)
	}
}

func TestAdd_RejectedAfterCompletion(t *testing.T) {
	c := NewCollector()
	c.Add("expressive", Item{Prompt: "p"})
	c.MarkCompleted("expressive", CompletionPatch{})

	err := c.Add("expressive", Item{Prompt: "late"})
	if !errors.Is(err, ErrComponentCompleted) {
		t.Errorf("Add after completion err = %v, want ErrComponentCompleted", err)
	}
	if got := len(c.Component("expressive").Evidence); got != 1 {
		t.Errorf("evidence count = %d, want 1 (late item rejected)", got)
	}
}

func TestAllSourcesReported_MultiSourceGuard(t *testing.T) {
	c := NewCollector()
	expected := []flow.Source{flow.SourceAudio, flow.SourceNaming}

	c.Add("expressive", Item{Prompt: "audio", Modality: ModalityAudio})
	c.SourceReported("expressive", flow.SourceAudio)

	// Audio alone must not finalize when naming is also expected.
	if c.AllSourcesReported("expressive", expected) {
		t.Error("component ready with only audio; naming still pending")
	}

	c.SourceReported("expressive", flow.SourceNaming)
	if !c.AllSourcesReported("expressive", expected) {
		t.Error("component not ready after all sources reported")
	}
}

func TestAllSourcesReported_NoExpectedSources(t *testing.T) {
	c := NewCollector()
	if c.AllSourcesReported("inquiry", nil) {
		t.Error("empty component should not be ready")
	}
	c.Add("inquiry", Item{Prompt: "p"})
	if !c.AllSourcesReported("inquiry", nil) {
		t.Error("component with evidence and no expected sources should be ready")
	}
}

func TestReopen_ClearsStateForRetry(t *testing.T) {
	c := NewCollector()
	c.Add("expressive", Item{Prompt: "p", Score: floatPtr(1)})
	c.SourceReported("expressive", flow.SourceAudio)
	c.MarkCompleted("expressive", CompletionPatch{Score: floatPtr(0.5), AINotes: "n"})

	c.Reopen("expressive")

	cs := c.Component("expressive")
	if cs.Completed {
		t.Error("reopened component should not be completed")
	}
	if len(cs.Evidence) != 0 || cs.Score != nil || cs.AINotes != "" {
		t.Error("reopened component should start clean")
	}
	if c.AllSourcesReported("expressive", []flow.Source{flow.SourceAudio}) {
		t.Error("reported sources should reset on reopen")
	}

	// The retried attempt accumulates and completes again.
	if err := c.Add("expressive", Item{Prompt: "retry"}); err != nil {
		t.Fatalf("Add after reopen: %v", err)
	}
	if err := c.MarkCompleted("expressive", CompletionPatch{}); err != nil {
		t.Fatalf("MarkCompleted after reopen: %v", err)
	}
}

func TestReopen_UnknownComponentNoOp(t *testing.T) {
	c := NewCollector()
	c.Reopen("missing")
	if c.Component("missing") != nil {
		t.Error("reopen must not create state")
	}
}

func TestCompleted(t *testing.T) {
	c := NewCollector()
	if c.Completed("unknown") {
		t.Error("unknown component should not be completed")
	}
	c.Add("x", Item{})
	c.MarkCompleted("x", CompletionPatch{})
	if !c.Completed("x") {
		t.Error("expected completed")
	}
}
