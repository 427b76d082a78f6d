package assess

import (
	"testing"

	"github.com/oakline/baseline/internal/flow"
)

// twoByTwoConfig builds a minimal shape: two domains, two components each.
func twoByTwoConfig() *flow.Config {
	return &flow.Config{
		Variant:           flow.VariantComponent,
		DefaultDifficulty: 5,
		Domains: []flow.DomainConfig{
			{Domain: flow.DomainReading, Components: []flow.ComponentConfig{
				{ID: "r1", Name: "R1", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
				{ID: "r2", Name: "R2", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
			}},
			{Domain: flow.DomainMath, Components: []flow.ComponentConfig{
				{ID: "m1", Name: "M1", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
				{ID: "m2", Name: "M2", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
			}},
		},
	}
}

func TestAdvance_WithinDomain(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")

	if got := s.Advance(); got != AdvancedComponent {
		t.Errorf("Advance = %v, want AdvancedComponent", got)
	}
	if s.DomainIndex != 0 || s.ComponentIndex != 1 {
		t.Errorf("position = %d/%d, want 0/1", s.DomainIndex, s.ComponentIndex)
	}
}

func TestAdvance_CrossesDomainAndResetsComponent(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.ComponentIndex = 1

	if got := s.Advance(); got != AdvancedDomain {
		t.Errorf("Advance = %v, want AdvancedDomain", got)
	}
	if s.DomainIndex != 1 || s.ComponentIndex != 0 {
		t.Errorf("position = %d/%d, want 1/0", s.DomainIndex, s.ComponentIndex)
	}
}

func TestAdvance_SignalsCompletion(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.DomainIndex = 1
	s.ComponentIndex = 1

	if got := s.Advance(); got != AssessmentComplete {
		t.Errorf("Advance = %v, want AssessmentComplete", got)
	}
	// Domain index never exceeds the domain count.
	if s.DomainIndex != 1 {
		t.Errorf("DomainIndex = %d, want 1", s.DomainIndex)
	}
}

func TestGoBack_WithinDomain(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.ComponentIndex = 1

	s.GoBack()
	if s.DomainIndex != 0 || s.ComponentIndex != 0 {
		t.Errorf("position = %d/%d, want 0/0", s.DomainIndex, s.ComponentIndex)
	}
}

func TestGoBack_CrossesDomainBoundary(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.DomainIndex = 1
	s.ComponentIndex = 0

	s.GoBack()
	if s.DomainIndex != 0 {
		t.Errorf("DomainIndex = %d, want 0", s.DomainIndex)
	}
	// Lands on the previous domain's last component.
	if s.ComponentIndex != 1 {
		t.Errorf("ComponentIndex = %d, want 1", s.ComponentIndex)
	}
}

func TestGoBack_NoOpAtStart(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	gen := s.Generation

	s.GoBack()
	if s.DomainIndex != 0 || s.ComponentIndex != 0 {
		t.Errorf("position = %d/%d, want 0/0", s.DomainIndex, s.ComponentIndex)
	}
	if s.Generation != gen {
		t.Error("no-op GoBack should not bump the generation")
	}
}

func TestGeneration_BumpedOnSlotChange(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	gen := s.Generation

	s.Advance()
	if s.Generation == gen {
		t.Error("Advance should bump the generation")
	}

	gen = s.Generation
	s.GoBack()
	if s.Generation == gen {
		t.Error("GoBack should bump the generation")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		domain    int
		component int
		want      int
	}{
		{"start", 0, 0, 0},
		{"second component", 0, 1, 25},
		{"second domain", 1, 0, 50},
		{"last component", 1, 1, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(twoByTwoConfig(), "L1")
			s.DomainIndex = tt.domain
			s.ComponentIndex = tt.component
			if got := s.Progress(); got != tt.want {
				t.Errorf("Progress = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProgress_CompleteIs100(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.Phase = PhaseComplete
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress = %d, want 100", got)
	}
}

func TestProgress_SubmittingIs100(t *testing.T) {
	s := NewState(twoByTwoConfig(), "L1")
	s.Phase = PhaseSubmitting
	if got := s.Progress(); got != 100 {
		t.Errorf("Progress = %d, want 100", got)
	}
}

func TestProgress_RoundsToNearest(t *testing.T) {
	cfg := &flow.Config{
		Variant:           flow.VariantComponent,
		DefaultDifficulty: 5,
		Domains: []flow.DomainConfig{
			{Domain: flow.DomainReading, Components: []flow.ComponentConfig{
				{ID: "r1", Name: "R1", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
				{ID: "r2", Name: "R2", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
				{ID: "r3", Name: "R3", ExpectedSources: []flow.Source{flow.SourceText}, QuestionCount: 1},
			}},
		},
	}
	s := NewState(cfg, "L1")
	s.ComponentIndex = 2

	// 2 of 3 questions done: 66.67 rounds up, not down.
	if got := s.Progress(); got != 67 {
		t.Errorf("Progress = %d, want 67", got)
	}
}
