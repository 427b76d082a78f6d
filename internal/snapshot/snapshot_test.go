package snapshot

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
)

func testSnapshot(learnerID string) *Snapshot {
	correct := true
	return &Snapshot{
		LearnerID:      learnerID,
		SessionID:      "session-1",
		Variant:        flow.VariantFixed,
		DomainIndex:    2,
		ComponentIndex: 1,
		QuestionsByDomain: map[flow.Domain][]collab.Question{
			flow.DomainReading: {{ID: "q1", Domain: flow.DomainReading, Content: "read"}},
		},
		Responses: map[string]collab.Response{
			"q1": {Answer: "yes", IsCorrect: &correct},
		},
		DifficultyByDomain: map[flow.Domain]int{flow.DomainReading: 6},
		LastResultByDomain: map[flow.Domain]bool{flow.DomainReading: true},
		UpdatedAt:          time.Now().UTC(),
	}
}

// stores builds one of each Store implementation for cross-impl tests.
func stores(t *testing.T) map[string]Store {
	t.Helper()

	fs := NewFileStore(filepath.Join(t.TempDir(), "snap.json"))

	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ss, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}

	return map[string]Store{"file": fs, "sqlite": ss}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, testSnapshot("L1")); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.Load(ctx, "L1")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got == nil {
				t.Fatal("expected snapshot")
			}
			if got.DomainIndex != 2 || got.ComponentIndex != 1 {
				t.Errorf("indices = %d/%d, want 2/1", got.DomainIndex, got.ComponentIndex)
			}
			if got.DifficultyByDomain[flow.DomainReading] != 6 {
				t.Errorf("difficulty = %d, want 6", got.DifficultyByDomain[flow.DomainReading])
			}
			if got.Responses["q1"].Answer != "yes" {
				t.Errorf("response = %+v", got.Responses["q1"])
			}
		})
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Load(ctx, "L1")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != nil {
				t.Errorf("expected nil snapshot, got %+v", got)
			}
		})
	}
}

func TestStore_MismatchedLearnerIgnored(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, testSnapshot("L1")); err != nil {
				t.Fatalf("Save: %v", err)
			}

			// A different learner starts fresh...
			got, err := s.Load(ctx, "L2")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != nil {
				t.Error("L2 should not see L1's snapshot")
			}

			// ...and the stale record is left untouched until the next write.
			got, err = s.Load(ctx, "L1")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got == nil {
				t.Error("L1's snapshot should survive a mismatched load")
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s.Save(ctx, testSnapshot("L1"))
			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, _ := s.Load(ctx, "L1")
			if got != nil {
				t.Error("expected nil after Clear")
			}
			// Clear on an empty store is not an error.
			if err := s.Clear(ctx); err != nil {
				t.Errorf("second Clear: %v", err)
			}
		})
	}
}

func TestFileStore_CorruptRecordDeleted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	got, err := s.Load(ctx, "L1")
	if err != nil {
		t.Fatalf("Load surfaced a storage error: %v", err)
	}
	if got != nil {
		t.Error("corrupt record should read as absence")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt record should have been deleted")
	}
}

func TestSQLiteStore_CorruptRecordDeleted(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`INSERT INTO assessment_snapshot (storage_key, payload, updated_at) VALUES (?, '{broken', '')`, StorageKey); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx, "L1")
	if err != nil {
		t.Fatalf("Load surfaced a storage error: %v", err)
	}
	if got != nil {
		t.Error("corrupt record should read as absence")
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM assessment_snapshot`).Scan(&n)
	if n != 0 {
		t.Error("corrupt row should have been deleted")
	}
}

func TestFileStore_SaveReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "snap.json"))

	first := testSnapshot("L1")
	s.Save(ctx, first)

	second := testSnapshot("L1")
	second.DomainIndex = 4
	second.QuestionsByDomain = nil
	s.Save(ctx, second)

	got, _ := s.Load(ctx, "L1")
	if got.DomainIndex != 4 {
		t.Errorf("DomainIndex = %d, want 4", got.DomainIndex)
	}
	if len(got.QuestionsByDomain) != 0 {
		t.Error("save must replace, not merge")
	}
}
