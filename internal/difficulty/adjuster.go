// Package difficulty tracks the per-domain grade level used to condition
// question generation. Levels are only ever overwritten by a validated
// server response; the client never derives them locally.
package difficulty

import (
	"fmt"

	"github.com/oakline/baseline/internal/flow"
)

// Adjuster holds the per-domain difficulty map and each domain's most
// recent answer result. The last result is conditioning context for the
// next question request, not an input to difficulty computation.
type Adjuster struct {
	defaultLevel int
	levels       map[flow.Domain]int
	lastResult   map[flow.Domain]bool
}

// NewAdjuster creates an Adjuster with the given starting grade level.
func NewAdjuster(defaultLevel int) *Adjuster {
	return &Adjuster{
		defaultLevel: defaultLevel,
		levels:       make(map[flow.Domain]int),
		lastResult:   make(map[flow.Domain]bool),
	}
}

// Record stores a validation result: the server-provided updated difficulty
// and whether the answer was correct. Out-of-range levels are rejected so a
// misbehaving collaborator can't push the map outside the grade scale.
func (a *Adjuster) Record(domain flow.Domain, isCorrect bool, updatedDifficulty int) error {
	if updatedDifficulty < flow.MinDifficulty || updatedDifficulty > flow.MaxDifficulty {
		return fmt.Errorf("difficulty %d outside grade range %d-%d", updatedDifficulty, flow.MinDifficulty, flow.MaxDifficulty)
	}
	a.levels[domain] = updatedDifficulty
	a.lastResult[domain] = isCorrect
	return nil
}

// Level returns the current difficulty for a domain, or the flow default
// when no validation result has been recorded yet.
func (a *Adjuster) Level(domain flow.Domain) int {
	if lvl, ok := a.levels[domain]; ok {
		return lvl
	}
	return a.defaultLevel
}

// LastResult returns the domain's most recent correctness result and
// whether one exists.
func (a *Adjuster) LastResult(domain flow.Domain) (bool, bool) {
	r, ok := a.lastResult[domain]
	return r, ok
}

// Levels returns a copy of the difficulty map for persistence.
func (a *Adjuster) Levels() map[flow.Domain]int {
	out := make(map[flow.Domain]int, len(a.levels))
	for d, l := range a.levels {
		out[d] = l
	}
	return out
}

// LastResults returns a copy of the last-result map for persistence.
func (a *Adjuster) LastResults() map[flow.Domain]bool {
	out := make(map[flow.Domain]bool, len(a.lastResult))
	for d, r := range a.lastResult {
		out[d] = r
	}
	return out
}

// Restore loads persisted difficulty and last-result maps, replacing any
// existing entries. Used when hydrating from a snapshot.
func (a *Adjuster) Restore(levels map[flow.Domain]int, lastResults map[flow.Domain]bool) {
	a.levels = make(map[flow.Domain]int, len(levels))
	for d, l := range levels {
		if l < flow.MinDifficulty || l > flow.MaxDifficulty {
			continue // drop corrupt entries rather than poison the map
		}
		a.levels[d] = l
	}
	a.lastResult = make(map[flow.Domain]bool, len(lastResults))
	for d, r := range lastResults {
		a.lastResult[d] = r
	}
}
