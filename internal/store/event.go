package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// sequenceCounter manages the global monotonic sequence number shared
// across all event types. Per-table auto-increment IDs can't establish
// cross-type ordering, so a single counter assigns an increasing sequence
// to every event regardless of type. The mutex serializes within the
// process; the RETURNING clause makes the increment atomic at the
// database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// AnswerEventData captures one scored answer.
type AnswerEventData struct {
	SessionID     string
	LearnerID     string
	Domain        string
	ComponentID   string
	QuestionID    string
	QuestionText  string
	LearnerAnswer string
	Correct       bool
	Difficulty    int
	TimeMs        int
}

// SessionEventData captures a session lifecycle action
// (started, resumed, submitted, completed, abandoned).
type SessionEventData struct {
	SessionID string
	LearnerID string
	Action    string
	Progress  int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// DomainStats aggregates answer events for one domain.
type DomainStats struct {
	Domain   string
	Answered int
	Correct  int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAnswer records a scored answer event.
	AppendAnswer(ctx context.Context, data AnswerEventData) error

	// AppendSession records a session lifecycle event.
	AppendSession(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// DomainAccuracy returns historical accuracy for a domain over all
	// recorded answers, and the answer count.
	DomainAccuracy(ctx context.Context, domain string) (float64, int, error)

	// StatsByDomain returns per-domain answer aggregates.
	StatsByDomain(ctx context.Context) ([]DomainStats, error)

	// LatestAnswerTime returns the timestamp of the most recent answer
	// for a domain, or the zero time if none exist.
	LatestAnswerTime(ctx context.Context, domain string) (time.Time, error)

	// QueryLLMEvents returns recorded LLM calls, most recent first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one LLM event by ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per request purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO answer_events
		 (sequence, session_id, learner_id, domain, component_id, question_id, question_text, learner_answer, correct, difficulty, time_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.LearnerID, data.Domain, data.ComponentID,
		data.QuestionID, data.QuestionText, data.LearnerAnswer, boolToInt(data.Correct),
		data.Difficulty, data.TimeMs)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSession(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO session_events (sequence, session_id, learner_id, action, progress)
		 VALUES (?, ?, ?, ?, ?)`,
		seqNum, data.SessionID, data.LearnerID, data.Action, data.Progress)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO llm_request_events
		 (sequence, provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, data.Provider, data.Model, data.Purpose, data.InputTokens,
		data.OutputTokens, data.LatencyMs, boolToInt(data.Success), data.ErrorMessage,
		data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("save llm request event: %w", err)
	}
	return nil
}

func (r *eventRepo) DomainAccuracy(ctx context.Context, domain string) (float64, int, error) {
	var answered, correct int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM answer_events WHERE domain = ?`,
		domain).Scan(&answered, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("query domain accuracy: %w", err)
	}
	if answered == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(answered), answered, nil
}

func (r *eventRepo) StatsByDomain(ctx context.Context) ([]DomainStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT domain, COUNT(*), COALESCE(SUM(correct), 0)
		 FROM answer_events GROUP BY domain ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("query domain stats: %w", err)
	}
	defer rows.Close()

	var stats []DomainStats
	for rows.Next() {
		var s DomainStats
		if err := rows.Scan(&s.Domain, &s.Answered, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan domain stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *eventRepo) LatestAnswerTime(ctx context.Context, domain string) (time.Time, error) {
	var ts sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(timestamp) FROM answer_events WHERE domain = ?`, domain).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest answer time: %w", err)
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.000Z", ts.String)
	if err != nil {
		// Fall back to RFC3339 for rows written by older builds.
		t, err = time.Parse(time.RFC3339, ts.String)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", ts.String, err)
		}
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
