// Package assess holds the assessment session aggregate: domain/component
// progression, the answer-handling orchestration, resumability, and the
// submission state machine. All mutation happens on the caller's event
// loop; collaborator calls are split into a blocking fetch and an apply
// step guarded by a request generation token.
package assess

import (
	"math"
	"time"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/difficulty"
	"github.com/oakline/baseline/internal/evidence"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/snapshot"
)

// Phase is the assessment-level state machine position.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseResumeOffered
	PhaseInProgress
	PhaseSubmitting
	PhaseComplete
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NOT_STARTED"
	case PhaseResumeOffered:
		return "RESUME_OFFERED"
	case PhaseInProgress:
		return "IN_PROGRESS"
	case PhaseSubmitting:
		return "SUBMITTING"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// State tracks the runtime state of one assessment attempt. The
// last-result map lives on the difficulty adjuster, an explicit field of
// the aggregate, so mutation ordering stays visible and testable.
type State struct {
	// Config is the injected assessment shape.
	Config *flow.Config

	// LearnerID identifies the learner this attempt belongs to.
	LearnerID string

	// SessionID is the server-allocated session UUID.
	SessionID string

	// Phase is the current assessment phase.
	Phase Phase

	// DomainIndex is the index into Config.Domains. Monotonically
	// non-decreasing except for explicit GoBack.
	DomainIndex int

	// ComponentIndex is the index within the current domain's components.
	// Resets to 0 whenever DomainIndex changes.
	ComponentIndex int

	// Generation fences in-flight collaborator responses. It increments
	// on every slot change; a response carrying a stale generation is
	// discarded instead of being applied to the wrong slot.
	Generation uint64

	// CurrentQuestion is the active question (nil between questions).
	CurrentQuestion *collab.Question

	// QuestionsByDomain accumulates every question served, for the ledger.
	QuestionsByDomain map[flow.Domain][]collab.Question

	// Responses holds the learner's answers keyed by question ID. A retry
	// overwrites the previous entry.
	Responses map[string]collab.Response

	// Difficulty holds the per-domain grade level and last results.
	Difficulty *difficulty.Adjuster

	// Evidence accumulates per-component evidence.
	Evidence *evidence.Collector

	// AnsweredInComponent counts validated answers in the current component.
	AnsweredInComponent int

	// Loading is the advisory in-flight flag: the UI disables the
	// triggering control while true. Not a hard mutex.
	Loading bool

	// LastError is the most recent surfaced error message, cleared on the
	// next successful action.
	LastError string

	// QuestionStart is when the current question was first displayed.
	QuestionStart time.Time

	// Result is the completion collaborator's payload, set on COMPLETE.
	Result *collab.CompletionResult

	// pendingResume holds a loaded snapshot while RESUME_OFFERED.
	pendingResume *snapshot.Snapshot
}

// NewState creates a fresh NOT_STARTED state for the given config.
func NewState(cfg *flow.Config, learnerID string) *State {
	return &State{
		Config:            cfg,
		LearnerID:         learnerID,
		Phase:             PhaseNotStarted,
		QuestionsByDomain: make(map[flow.Domain][]collab.Question),
		Responses:         make(map[string]collab.Response),
		Difficulty:        difficulty.NewAdjuster(cfg.DefaultDifficulty),
		Evidence:          evidence.NewCollector(),
	}
}

// CurrentDomain returns the active domain config.
func (s *State) CurrentDomain() flow.DomainConfig {
	return s.Config.Domains[s.DomainIndex]
}

// CurrentComponent returns the active component config.
func (s *State) CurrentComponent() flow.ComponentConfig {
	return s.CurrentDomain().Components[s.ComponentIndex]
}

// Progress returns overall completion rounded to the nearest percent,
// counting fully finished components plus answered questions in the
// current one. Submitting and completed assessments report 100.
func (s *State) Progress() int {
	total := 0
	done := 0
	for di, d := range s.Config.Domains {
		for ci, c := range d.Components {
			total += c.QuestionCount
			switch {
			case di < s.DomainIndex || (di == s.DomainIndex && ci < s.ComponentIndex):
				done += c.QuestionCount
			case di == s.DomainIndex && ci == s.ComponentIndex:
				done += min(s.AnsweredInComponent, c.QuestionCount)
			}
		}
	}
	if total == 0 {
		return 0
	}
	if s.Phase == PhaseComplete || s.Phase == PhaseSubmitting {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// ToSnapshot captures the persistable progress state.
func (s *State) ToSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		LearnerID:          s.LearnerID,
		SessionID:          s.SessionID,
		Variant:            s.Config.Variant,
		DomainIndex:        s.DomainIndex,
		ComponentIndex:     s.ComponentIndex,
		QuestionsByDomain:  s.QuestionsByDomain,
		Responses:          s.Responses,
		DifficultyByDomain: s.Difficulty.Levels(),
		LastResultByDomain: s.Difficulty.LastResults(),
		UpdatedAt:          time.Now().UTC(),
	}
}

// hydrate restores progress from a snapshot. Indices are clamped to the
// config's bounds in case the shape changed between runs.
func (s *State) hydrate(snap *snapshot.Snapshot) {
	s.DomainIndex = snap.DomainIndex
	if s.DomainIndex < 0 || s.DomainIndex >= len(s.Config.Domains) {
		s.DomainIndex = 0
	}
	s.ComponentIndex = snap.ComponentIndex
	if n := len(s.CurrentDomain().Components); s.ComponentIndex < 0 || s.ComponentIndex >= n {
		s.ComponentIndex = 0
	}
	if snap.QuestionsByDomain != nil {
		s.QuestionsByDomain = snap.QuestionsByDomain
	}
	if snap.Responses != nil {
		s.Responses = snap.Responses
	}
	s.SessionID = snap.SessionID
	s.Difficulty.Restore(snap.DifficultyByDomain, snap.LastResultByDomain)
}
