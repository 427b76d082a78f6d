package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is only meaningful with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAppendAnswer_AndDomainAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	answers := []struct {
		domain  string
		correct bool
	}{
		{"MATH", true},
		{"MATH", false},
		{"MATH", true},
		{"READING", true},
	}
	for i, a := range answers {
		err := repo.AppendAnswer(ctx, AnswerEventData{
			SessionID:     "s1",
			LearnerID:     "L1",
			Domain:        a.domain,
			ComponentID:   "c1",
			QuestionID:    "q",
			QuestionText:  "text",
			LearnerAnswer: "answer",
			Correct:       a.correct,
			Difficulty:    4,
			TimeMs:        1200,
		})
		if err != nil {
			t.Fatalf("AppendAnswer %d: %v", i, err)
		}
	}

	acc, n, err := repo.DomainAccuracy(ctx, "MATH")
	if err != nil {
		t.Fatalf("DomainAccuracy: %v", err)
	}
	if n != 3 {
		t.Errorf("answered = %d, want 3", n)
	}
	if acc < 0.66 || acc > 0.67 {
		t.Errorf("accuracy = %v, want 2/3", acc)
	}

	// Unknown domain: zero answers, no error.
	acc, n, err = repo.DomainAccuracy(ctx, "SCIENCE")
	if err != nil {
		t.Fatalf("DomainAccuracy: %v", err)
	}
	if n != 0 || acc != 0 {
		t.Errorf("empty domain accuracy = %v/%d, want 0/0", acc, n)
	}
}

func TestStatsByDomain(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	repo.AppendAnswer(ctx, AnswerEventData{SessionID: "s1", LearnerID: "L1", Domain: "MATH", Correct: true})
	repo.AppendAnswer(ctx, AnswerEventData{SessionID: "s1", LearnerID: "L1", Domain: "READING", Correct: false})
	repo.AppendAnswer(ctx, AnswerEventData{SessionID: "s1", LearnerID: "L1", Domain: "READING", Correct: true})

	stats, err := repo.StatsByDomain(ctx)
	if err != nil {
		t.Fatalf("StatsByDomain: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %d domains, want 2", len(stats))
	}
	// Ordered by domain name: MATH before READING.
	if stats[0].Domain != "MATH" || stats[0].Answered != 1 || stats[0].Correct != 1 {
		t.Errorf("MATH stats = %+v", stats[0])
	}
	if stats[1].Domain != "READING" || stats[1].Answered != 2 || stats[1].Correct != 1 {
		t.Errorf("READING stats = %+v", stats[1])
	}
}

func TestSequence_MonotonicAcrossEventTypes(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	repo.AppendSession(ctx, SessionEventData{SessionID: "s1", LearnerID: "L1", Action: "started"})
	repo.AppendAnswer(ctx, AnswerEventData{SessionID: "s1", LearnerID: "L1", Domain: "MATH", Correct: true})
	repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "question", Success: true})

	var sessionSeq, answerSeq, llmSeq int64
	s.DB().QueryRow(`SELECT sequence FROM session_events`).Scan(&sessionSeq)
	s.DB().QueryRow(`SELECT sequence FROM answer_events`).Scan(&answerSeq)
	s.DB().QueryRow(`SELECT sequence FROM llm_request_events`).Scan(&llmSeq)

	if !(sessionSeq < answerSeq && answerSeq < llmSeq) {
		t.Errorf("sequence not monotonic across types: %d, %d, %d", sessionSeq, answerSeq, llmSeq)
	}
}

func TestAppendSession(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendSession(ctx, SessionEventData{
		SessionID: "s1", LearnerID: "L1", Action: "completed", Progress: 100,
	})
	if err != nil {
		t.Fatalf("AppendSession: %v", err)
	}

	var action string
	var progress int
	s.DB().QueryRow(`SELECT action, progress FROM session_events`).Scan(&action, &progress)
	if action != "completed" || progress != 100 {
		t.Errorf("session event = %s/%d, want completed/100", action, progress)
	}
}
