package flow

import "testing"

func TestFixedQuestionConfig(t *testing.T) {
	cfg := FixedQuestionConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Variant != VariantFixed {
		t.Errorf("Variant = %v", cfg.Variant)
	}
	if cfg.DefaultDifficulty != 4 {
		t.Errorf("DefaultDifficulty = %d, want 4", cfg.DefaultDifficulty)
	}
	if got := cfg.TotalComponents(); got != len(AllDomains())*FixedQuestionsPerDomain {
		t.Errorf("TotalComponents = %d, want %d", got, len(AllDomains())*FixedQuestionsPerDomain)
	}
}

func TestComponentFlowConfig(t *testing.T) {
	cfg := ComponentFlowConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.DefaultDifficulty != 5 {
		t.Errorf("DefaultDifficulty = %d, want 5", cfg.DefaultDifficulty)
	}

	// The expressive component needs both an audio sample and a naming
	// result before it may complete.
	var expressive *ComponentConfig
	for _, d := range cfg.Domains {
		if d.Domain != DomainSpeech {
			continue
		}
		for i := range d.Components {
			if d.Components[i].ID == "expressive" {
				expressive = &d.Components[i]
			}
		}
	}
	if expressive == nil {
		t.Fatal("expressive component missing from speech domain")
	}
	if len(expressive.ExpectedSources) != 2 {
		t.Errorf("expressive ExpectedSources = %v, want audio+naming", expressive.ExpectedSources)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no domains", Config{DefaultDifficulty: 4}},
		{"empty components", Config{
			DefaultDifficulty: 4,
			Domains:           []DomainConfig{{Domain: DomainMath}},
		}},
		{"duplicate component IDs", Config{
			DefaultDifficulty: 4,
			Domains: []DomainConfig{
				{Domain: DomainMath, Components: []ComponentConfig{{ID: "a"}, {ID: "a"}}},
			},
		}},
		{"difficulty out of range", Config{
			DefaultDifficulty: 13,
			Domains: []DomainConfig{
				{Domain: DomainMath, Components: []ComponentConfig{{ID: "a"}}},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDomainAt_OutOfRange(t *testing.T) {
	cfg := FixedQuestionConfig()
	if _, err := cfg.DomainAt(len(cfg.Domains)); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := cfg.DomainAt(-1); err == nil {
		t.Error("expected error for negative index")
	}
}
