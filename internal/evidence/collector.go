// Package evidence accumulates typed learner evidence per component and
// tracks component completion. Evidence lists are append-only and
// completion is one-way within an attempt; an explicit retry reopens the
// component and its next attempt overwrites the prior one.
package evidence

import (
	"errors"
	"fmt"

	"github.com/oakline/baseline/internal/flow"
)

// ErrComponentCompleted is returned when evidence arrives for a component
// that has already been finalized. Post-completion evidence is rejected,
// not silently dropped, so callers can surface the bug.
var ErrComponentCompleted = errors.New("component already completed")

// Modality classifies how a piece of evidence was produced.
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityAudio  Modality = "audio"
	ModalityVisual Modality = "visual"
)

// Item is one recorded learner response or artifact.
type Item struct {
	Prompt   string            `json:"prompt"`
	Response string            `json:"response"`
	Modality Modality          `json:"modality"`
	Score    *float64          `json:"score,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ComponentState holds a component's accumulated evidence and outcome.
type ComponentState struct {
	Evidence   []Item   `json:"evidence"`
	Score      *float64 `json:"score,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Completed  bool     `json:"completed"`
	AINotes    string   `json:"aiNotes,omitempty"`

	reported map[flow.Source]bool
}

// CompletionPatch is the partial update applied when finalizing a component.
type CompletionPatch struct {
	Score      *float64
	Confidence *float64
	AINotes    string
}

// Collector owns per-component state for one assessment attempt.
type Collector struct {
	components map[string]*ComponentState
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{components: make(map[string]*ComponentState)}
}

// Add appends evidence items to a component, creating its state if absent.
// Returns ErrComponentCompleted if the component has been finalized.
func (c *Collector) Add(componentID string, items ...Item) error {
	cs := c.get(componentID)
	if cs.Completed {
		return fmt.Errorf("add evidence to %s: %w", componentID, ErrComponentCompleted)
	}
	cs.Evidence = append(cs.Evidence, items...)
	return nil
}

// SourceReported records that one of a component's expected evidence
// sources has delivered its result.
func (c *Collector) SourceReported(componentID string, src flow.Source) {
	cs := c.get(componentID)
	if cs.reported == nil {
		cs.reported = make(map[flow.Source]bool)
	}
	cs.reported[src] = true
}

// AllSourcesReported reports whether every expected source for the
// component has delivered. Components with no expected sources are
// considered ready once any evidence exists.
func (c *Collector) AllSourcesReported(componentID string, expected []flow.Source) bool {
	cs := c.get(componentID)
	if len(expected) == 0 {
		return len(cs.Evidence) > 0
	}
	for _, src := range expected {
		if !cs.reported[src] {
			return false
		}
	}
	return true
}

// MarkCompleted merges the patch into the component state and sets the
// completion flag. Completing an already-completed component is an error;
// the flag transitions false to true exactly once per attempt.
func (c *Collector) MarkCompleted(componentID string, patch CompletionPatch) error {
	cs := c.get(componentID)
	if cs.Completed {
		return fmt.Errorf("mark %s completed: %w", componentID, ErrComponentCompleted)
	}
	if patch.Score != nil {
		cs.Score = patch.Score
	}
	if patch.Confidence != nil {
		cs.Confidence = patch.Confidence
	}
	if patch.AINotes != "" {
		cs.AINotes = patch.AINotes
	}
	cs.Completed = true
	return nil
}

// Reopen clears a component's accumulated state for an explicit retry.
// Evidence, scores, completion, and reported sources all reset; the
// retried attempt's results overwrite the prior ones. Reopening a
// component that never reported is a no-op.
func (c *Collector) Reopen(componentID string) {
	cs, ok := c.components[componentID]
	if !ok {
		return
	}
	*cs = ComponentState{}
}

// Component returns the state for a component, or nil if none exists.
func (c *Collector) Component(componentID string) *ComponentState {
	return c.components[componentID]
}

// Completed reports whether the component has been finalized.
func (c *Collector) Completed(componentID string) bool {
	cs := c.components[componentID]
	return cs != nil && cs.Completed
}

// States returns the full component map for ledger assembly.
func (c *Collector) States() map[string]*ComponentState {
	return c.components
}

func (c *Collector) get(componentID string) *ComponentState {
	cs, ok := c.components[componentID]
	if !ok {
		cs = &ComponentState{}
		c.components[componentID] = cs
	}
	return cs
}
