package report

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
)

func boolPtr(b bool) *bool { return &b }

func testResult() *collab.CompletionResult {
	return &collab.CompletionResult{
		ID: "sub-1",
		QuestionLedger: map[flow.Domain][]collab.Question{
			flow.DomainMath: {
				{ID: "q1", Domain: flow.DomainMath, Content: "2 + 2?"},
				{ID: "q2", Domain: flow.DomainMath, Content: "3 x 3?"},
				{ID: "q3", Domain: flow.DomainMath, Content: "10 - 4?"},
			},
		},
		DetailedResponses: map[string]collab.Response{
			"q1": {Answer: "4", IsCorrect: boolPtr(true)},
			"q2": {Answer: "8", IsCorrect: boolPtr(false)},
			"q3": {Answer: "6", IsCorrect: boolPtr(true)},
		},
	}
}

func TestReportScreen_View(t *testing.T) {
	s := New(testResult())
	view := s.View(100, 40)

	if !strings.Contains(view, "2/3 correct") {
		t.Errorf("view missing math summary:\n%s", view)
	}
	if !strings.Contains(view, "67% accuracy") {
		t.Errorf("view missing rounded accuracy:\n%s", view)
	}
	// Domains without entries render the empty-history line.
	if !strings.Contains(view, "No prompt history yet.") {
		t.Errorf("view missing empty-domain line:\n%s", view)
	}
}

func TestReportScreen_NilResult(t *testing.T) {
	s := New(nil)
	if view := s.View(80, 24); view != "" {
		t.Errorf("expected empty view for nil result, got %q", view)
	}
}

func TestReportScreen_QuitKeys(t *testing.T) {
	s := New(testResult())
	for _, key := range []rune{'q'} {
		_, cmd := s.Update(tea.KeyPressMsg{Code: key, Text: string(key)})
		if cmd == nil {
			t.Errorf("expected quit command for %q", key)
		}
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected quit command for enter")
	}
}
