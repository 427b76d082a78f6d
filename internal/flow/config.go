package flow

import (
	"fmt"
	"strings"
)

// Domain identifies a top-level subject area assessed.
type Domain string

const (
	DomainReading Domain = "READING"
	DomainMath    Domain = "MATH"
	DomainSpeech  Domain = "SPEECH"
	DomainSEL     Domain = "SEL"
	DomainScience Domain = "SCIENCE"
)

// AllDomains returns the assessed domains in presentation order.
func AllDomains() []Domain {
	return []Domain{
		DomainReading,
		DomainMath,
		DomainSpeech,
		DomainSEL,
		DomainScience,
	}
}

// DisplayName returns a human-readable name for a domain.
func (d Domain) DisplayName() string {
	switch d {
	case DomainReading:
		return "Reading"
	case DomainMath:
		return "Math"
	case DomainSpeech:
		return "Speech & Language"
	case DomainSEL:
		return "Social-Emotional"
	case DomainScience:
		return "Science"
	default:
		return string(d)
	}
}

// Source identifies an asynchronous evidence source feeding a component.
// A component is only marked complete once every expected source has reported.
type Source string

const (
	SourceText   Source = "text"
	SourceAudio  Source = "audio"
	SourceNaming Source = "naming"
)

// Variant selects which of the two assessment flow shapes is active.
type Variant string

const (
	// VariantFixed serves a fixed count of questions per domain.
	VariantFixed Variant = "fixed"

	// VariantComponent walks named sub-skill components per domain,
	// completing each from accumulated evidence.
	VariantComponent Variant = "component"
)

// ComponentConfig describes one sub-skill component within a domain.
type ComponentConfig struct {
	ID   string
	Name string

	// ExpectedSources lists the evidence sources that must all report
	// before the component may be finalized. Empty means a single text
	// response completes the component.
	ExpectedSources []Source

	// QuestionCount is the number of prompts served for this component.
	QuestionCount int
}

// DomainConfig describes one domain's component sequence.
type DomainConfig struct {
	Domain     Domain
	Components []ComponentConfig
}

// Config is the full assessment shape, injected into the progression
// controller. Both flow variants share one engine; only the tables differ.
type Config struct {
	Variant Variant
	Domains []DomainConfig

	// DefaultDifficulty is the starting grade level for a domain with no
	// recorded difficulty yet. The two variants historically ship different
	// defaults; they are preserved as configured, not unified.
	DefaultDifficulty int
}

// TotalComponents returns the component count across all domains.
func (c *Config) TotalComponents() int {
	n := 0
	for _, d := range c.Domains {
		n += len(d.Components)
	}
	return n
}

// DomainAt returns the domain config at index i.
func (c *Config) DomainAt(i int) (DomainConfig, error) {
	if i < 0 || i >= len(c.Domains) {
		return DomainConfig{}, fmt.Errorf("domain index %d out of range [0,%d)", i, len(c.Domains))
	}
	return c.Domains[i], nil
}

// Validate checks the config is well-formed: at least one domain, every
// domain has at least one component, no duplicate component IDs.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("config has no domains")
	}
	if c.DefaultDifficulty < MinDifficulty || c.DefaultDifficulty > MaxDifficulty {
		return fmt.Errorf("default difficulty %d outside grade range %d-%d", c.DefaultDifficulty, MinDifficulty, MaxDifficulty)
	}
	seen := make(map[string]bool)
	for _, d := range c.Domains {
		if len(d.Components) == 0 {
			return fmt.Errorf("domain %s has no components", d.Domain)
		}
		for _, comp := range d.Components {
			if comp.ID == "" {
				return fmt.Errorf("domain %s has a component with empty ID", d.Domain)
			}
			if seen[comp.ID] {
				return fmt.Errorf("duplicate component ID %q", comp.ID)
			}
			seen[comp.ID] = true
			if comp.QuestionCount < 0 {
				return fmt.Errorf("component %s has negative question count", comp.ID)
			}
		}
	}
	return nil
}

// Difficulty grade-scale bounds.
const (
	MinDifficulty = 1
	MaxDifficulty = 12
)

// Fixed-flow constants.
const (
	FixedQuestionsPerDomain    = 5
	FixedDefaultDifficulty     = 4
	ComponentDefaultDifficulty = 5
)

// FixedQuestionConfig builds the fixed-question variant: five question slots
// per domain, modeled as one component per slot so both variants share the
// same progression rules.
func FixedQuestionConfig() *Config {
	cfg := &Config{
		Variant:           VariantFixed,
		DefaultDifficulty: FixedDefaultDifficulty,
	}
	for _, d := range AllDomains() {
		dc := DomainConfig{Domain: d}
		for i := 1; i <= FixedQuestionsPerDomain; i++ {
			dc.Components = append(dc.Components, ComponentConfig{
				ID:              fmt.Sprintf("%s-q%d", strings.ToLower(string(d)), i),
				Name:            fmt.Sprintf("%s question %d", d.DisplayName(), i),
				ExpectedSources: []Source{SourceText},
				QuestionCount:   1,
			})
		}
		cfg.Domains = append(cfg.Domains, dc)
	}
	return cfg
}

// ComponentFlowConfig builds the component/evidence variant. The speech
// domain's expressive component expects both an audio sample and a
// picture-naming result before it can complete.
func ComponentFlowConfig() *Config {
	return &Config{
		Variant:           VariantComponent,
		DefaultDifficulty: ComponentDefaultDifficulty,
		Domains: []DomainConfig{
			{
				Domain: DomainReading,
				Components: []ComponentConfig{
					{ID: "decoding", Name: "Decoding", ExpectedSources: []Source{SourceText}, QuestionCount: 3},
					{ID: "comprehension", Name: "Comprehension", ExpectedSources: []Source{SourceText}, QuestionCount: 3},
				},
			},
			{
				Domain: DomainMath,
				Components: []ComponentConfig{
					{ID: "number-sense", Name: "Number Sense", ExpectedSources: []Source{SourceText}, QuestionCount: 3},
					{ID: "operations", Name: "Operations", ExpectedSources: []Source{SourceText}, QuestionCount: 3},
				},
			},
			{
				Domain: DomainSpeech,
				Components: []ComponentConfig{
					{ID: "articulation", Name: "Articulation", ExpectedSources: []Source{SourceAudio}, QuestionCount: 1},
					{ID: "fluency", Name: "Fluency", ExpectedSources: []Source{SourceAudio}, QuestionCount: 1},
					{ID: "expressive", Name: "Expressive Language", ExpectedSources: []Source{SourceAudio, SourceNaming}, QuestionCount: 1},
				},
			},
			{
				Domain: DomainSEL,
				Components: []ComponentConfig{
					{ID: "self-awareness", Name: "Self-Awareness", ExpectedSources: []Source{SourceText}, QuestionCount: 2},
					{ID: "social-awareness", Name: "Social Awareness", ExpectedSources: []Source{SourceText}, QuestionCount: 2},
				},
			},
			{
				Domain: DomainScience,
				Components: []ComponentConfig{
					{ID: "inquiry", Name: "Inquiry", ExpectedSources: []Source{SourceText}, QuestionCount: 3},
				},
			},
		},
	}
}
