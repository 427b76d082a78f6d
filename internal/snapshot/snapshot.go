// Package snapshot persists assessment progress so a session survives an
// interruption. The store always replaces the full record under a single
// fixed key; it never merges or diffs.
package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
)

// StorageKey namespaces the persisted record. One record per device; a new
// learner on the same device fails the identity check and starts fresh,
// orphaning the old record until the next write.
const StorageKey = "baseline.assessment.v1"

// Snapshot captures the full assessment progress at a point in time.
type Snapshot struct {
	LearnerID          string                            `json:"learnerId"`
	SessionID          string                            `json:"sessionId"`
	Variant            flow.Variant                      `json:"variant"`
	DomainIndex        int                               `json:"currentDomainIndex"`
	ComponentIndex     int                               `json:"currentComponentIndex"`
	QuestionsByDomain  map[flow.Domain][]collab.Question `json:"questionsByDomain"`
	Responses          map[string]collab.Response        `json:"responses"`
	DifficultyByDomain map[flow.Domain]int               `json:"difficultyMap"`
	LastResultByDomain map[flow.Domain]bool              `json:"lastResultPerDomain"`
	UpdatedAt          time.Time                         `json:"updatedAt"`
}

// Store is the durable key/value persistence for assessment progress.
type Store interface {
	// Save serializes and writes the full snapshot, replacing any
	// existing record. Called on every state-affecting change.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored snapshot if it exists, is well-formed, and
	// belongs to learnerID. A malformed record is deleted and treated as
	// absence, never surfaced as an error. A record for a different
	// learner is ignored but left in place until the next write.
	Load(ctx context.Context, learnerID string) (*Snapshot, error)

	// Clear removes the record. Called after successful submission or an
	// explicit restart.
	Clear(ctx context.Context) error
}

// DefaultDataDir resolves the data directory in priority order:
// 1. BASELINE_DATA environment variable
// 2. $XDG_DATA_HOME/baseline
// 3. ~/.local/share/baseline
func DefaultDataDir() (string, error) {
	if p := os.Getenv("BASELINE_DATA"); p != "" {
		return p, os.MkdirAll(p, 0o755)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "baseline")
	return p, os.MkdirAll(p, 0o755)
}
