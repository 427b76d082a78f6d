package assess

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/evidence"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/ledger"
	"github.com/oakline/baseline/internal/snapshot"
	"github.com/oakline/baseline/internal/store"
)

// ErrStaleResponse marks a collaborator response whose generation token no
// longer matches the active slot. The response is discarded, not applied.
var ErrStaleResponse = errors.New("stale response discarded")

// ErrNoCurrentQuestion is returned when an answer arrives with no active question.
var ErrNoCurrentQuestion = errors.New("no current question")

// Deps bundles the engine's collaborators. Events may be nil.
type Deps struct {
	Questions collab.QuestionGenerator
	Validator collab.Validator
	Speech    collab.SpeechAnalyzer
	Completer collab.Completer
	Sessions  collab.SessionService
	Snapshots snapshot.Store
	Events    store.EventRepo
}

// Engine drives one assessment attempt. All mutating methods must be
// called from a single goroutine (the UI event loop); the Fetch/Apply
// split lets blocking collaborator calls run elsewhere.
type Engine struct {
	state *State
	deps  Deps

	// pendingSpeech holds analysis results per component until all
	// expected sources report and the component can be fused.
	pendingSpeech map[string]*collab.SpeechAnalysis
	pendingNaming map[string]namingOutcome
}

type namingOutcome struct {
	score   float64
	perCard []float64
}

// NewEngine creates an engine for the given assessment shape and learner.
func NewEngine(cfg *flow.Config, learnerID string, deps Deps) *Engine {
	return &Engine{
		state:         NewState(cfg, learnerID),
		deps:          deps,
		pendingSpeech: make(map[string]*collab.SpeechAnalysis),
		pendingNaming: make(map[string]namingOutcome),
	}
}

// State exposes the aggregate for the UI and tests.
func (e *Engine) State() *State {
	return e.state
}

// Start allocates the server-side session and decides between a fresh
// start and offering a resume. Session allocation failure blocks entry:
// later steps depend on the session ID.
func (e *Engine) Start(ctx context.Context) error {
	sessionID, err := e.deps.Sessions.Create(ctx, e.state.LearnerID)
	if err != nil {
		return err
	}

	snap, err := e.deps.Snapshots.Load(ctx, e.state.LearnerID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if snap != nil {
		e.state.SessionID = sessionID
		e.state.pendingResume = snap
		e.state.Phase = PhaseResumeOffered
		return nil
	}

	e.state.SessionID = sessionID
	e.state.Phase = PhaseInProgress
	e.logSession(ctx, "started")
	return e.persist(ctx)
}

// Resume restores the offered snapshot and continues the assessment with
// identical indices, responses, and difficulty.
func (e *Engine) Resume(ctx context.Context) error {
	if e.state.Phase != PhaseResumeOffered || e.state.pendingResume == nil {
		return fmt.Errorf("no resume pending")
	}
	sessionID := e.state.SessionID
	e.state.hydrate(e.state.pendingResume)
	if e.state.SessionID == "" {
		e.state.SessionID = sessionID
	}
	e.state.pendingResume = nil
	e.state.Phase = PhaseInProgress
	e.logSession(ctx, "resumed")
	return e.persist(ctx)
}

// StartOver discards the offered snapshot and begins fresh.
func (e *Engine) StartOver(ctx context.Context) error {
	sessionID := e.state.SessionID
	learnerID := e.state.LearnerID
	cfg := e.state.Config
	if err := e.deps.Snapshots.Clear(ctx); err != nil {
		return err
	}
	e.state = NewState(cfg, learnerID)
	e.state.SessionID = sessionID
	e.state.Phase = PhaseInProgress
	e.logSession(ctx, "started")
	return e.persist(ctx)
}

// BeginQuestionRequest builds the next-prompt request for the active slot
// and sets the advisory loading flag. The returned generation token must
// accompany the response to ApplyQuestion.
func (e *Engine) BeginQuestionRequest() (collab.QuestionRequest, uint64) {
	s := e.state
	domain := s.CurrentDomain().Domain
	req := collab.QuestionRequest{
		Domain:         domain,
		GradeLevel:     s.Difficulty.Level(domain),
		QuestionNumber: s.AnsweredInComponent + 1,
	}
	if prev, ok := s.Difficulty.LastResult(domain); ok {
		req.PreviousResult = &prev
	}
	s.Loading = true
	return req, s.Generation
}

// ApplyQuestion installs a fetched question. A stale generation means the
// learner already moved on; the response is dropped and false returned.
func (e *Engine) ApplyQuestion(q *collab.Question, gen uint64) bool {
	s := e.state
	if gen != s.Generation {
		return false
	}
	s.Loading = false
	s.LastError = ""
	s.CurrentQuestion = q
	s.QuestionStart = time.Now()
	s.QuestionsByDomain[q.Domain] = append(s.QuestionsByDomain[q.Domain], *q)
	return true
}

// FailQuestion surfaces a fetch error for manual retry.
func (e *Engine) FailQuestion(err error, gen uint64) {
	if gen != e.state.Generation {
		return
	}
	e.state.Loading = false
	e.state.LastError = err.Error()
}

// FetchQuestion is the blocking convenience form of the request/apply pair,
// for callers that already run off the event loop.
func (e *Engine) FetchQuestion(ctx context.Context) (*collab.Question, error) {
	req, gen := e.BeginQuestionRequest()
	q, err := e.deps.Questions.NextQuestion(ctx, req)
	if err != nil {
		e.FailQuestion(err, gen)
		return nil, err
	}
	if !e.ApplyQuestion(q, gen) {
		return nil, ErrStaleResponse
	}
	return q, nil
}

// StepOutcome reports what applying a validation result did.
type StepOutcome struct {
	Correct            bool
	ComponentCompleted bool
	Advanced           AdvanceResult
	ReadyToSubmit      bool
}

// BeginAnswer marks the in-flight state for answer validation and returns
// the question ID plus the generation token.
func (e *Engine) BeginAnswer() (string, uint64, error) {
	if e.state.CurrentQuestion == nil {
		return "", 0, ErrNoCurrentQuestion
	}
	e.state.Loading = true
	return e.state.CurrentQuestion.ID, e.state.Generation, nil
}

// ApplyValidation commits a validation result: the response is recorded,
// the server-provided difficulty overwrites the domain level, evidence is
// appended, and the slot advances when the component's question quota is
// met. Every committed transition persists the snapshot.
func (e *Engine) ApplyValidation(ctx context.Context, answer string, res *collab.ValidationResult, gen uint64) (*StepOutcome, error) {
	s := e.state
	if gen != s.Generation {
		return nil, ErrStaleResponse
	}
	s.Loading = false
	q := s.CurrentQuestion
	if q == nil {
		return nil, ErrNoCurrentQuestion
	}

	comp := s.CurrentComponent()
	domain := s.CurrentDomain().Domain

	correct := res.IsCorrect
	s.Responses[q.ID] = collab.Response{Answer: answer, IsCorrect: &correct}
	if err := s.Difficulty.Record(domain, res.IsCorrect, res.UpdatedDifficulty); err != nil {
		return nil, err
	}

	score := 0.0
	if res.IsCorrect {
		score = 1.0
	}
	item := evidence.Item{
		Prompt:   q.Content,
		Response: answer,
		Modality: evidence.ModalityText,
		Score:    &score,
	}
	if err := s.Evidence.Add(comp.ID, item); err != nil {
		return nil, err
	}
	s.Evidence.SourceReported(comp.ID, flow.SourceText)
	s.AnsweredInComponent++
	s.LastError = ""

	e.logAnswer(ctx, q, answer, res)

	outcome := &StepOutcome{Correct: res.IsCorrect}
	if s.AnsweredInComponent >= comp.QuestionCount {
		e.finalizeTextComponent(comp)
		outcome.ComponentCompleted = true
		outcome.Advanced = s.Advance()
		if outcome.Advanced == AssessmentComplete {
			s.Phase = PhaseSubmitting
			outcome.ReadyToSubmit = true
		}
	} else {
		s.CurrentQuestion = nil
	}

	if err := e.persist(ctx); err != nil {
		return outcome, err
	}
	e.updateSession(ctx)
	return outcome, nil
}

// FailValidation surfaces a validation error. No difficulty or evidence
// mutation happens; the learner retries by request.
func (e *Engine) FailValidation(err error, gen uint64) {
	if gen != e.state.Generation {
		return
	}
	e.state.Loading = false
	e.state.LastError = err.Error()
}

// Answer is the blocking convenience form of the begin/apply pair.
func (e *Engine) Answer(ctx context.Context, answer string) (*StepOutcome, error) {
	qID, gen, err := e.BeginAnswer()
	if err != nil {
		return nil, err
	}
	res, err := e.deps.Validator.Validate(ctx, qID, answer)
	if err != nil {
		e.FailValidation(err, gen)
		return nil, err
	}
	return e.ApplyValidation(ctx, answer, res, gen)
}

// GoBack steps to the previous component for an explicit retry and
// persists the transition. Both the component being left and the target
// are reopened: their questions, responses, and evidence are dropped so
// the retried attempt overwrites the prior one instead of colliding with
// its completed state.
func (e *Engine) GoBack(ctx context.Context) error {
	s := e.state
	fromDomain := s.CurrentDomain().Domain
	fromComp := s.CurrentComponent()
	prevDomain, prevComponent := s.DomainIndex, s.ComponentIndex

	// A fetched-but-unanswered question would linger in the ledger as an
	// unanswered entry; drop it along with the slot.
	if q := s.CurrentQuestion; q != nil {
		qs := s.QuestionsByDomain[q.Domain]
		if len(qs) > 0 && qs[len(qs)-1].ID == q.ID {
			s.QuestionsByDomain[q.Domain] = qs[:len(qs)-1]
		}
		delete(s.Responses, q.ID)
	}

	s.GoBack()
	if s.DomainIndex == prevDomain && s.ComponentIndex == prevComponent {
		return nil
	}

	e.reopenComponent(fromDomain, fromComp)
	e.reopenComponent(s.CurrentDomain().Domain, s.CurrentComponent())
	return e.persist(ctx)
}

// reopenComponent drops a component's recorded questions, responses, and
// evidence so its retry starts clean. Text evidence items map one-to-one
// onto the domain's trailing questions, which is what makes the trim safe.
func (e *Engine) reopenComponent(domain flow.Domain, comp flow.ComponentConfig) {
	s := e.state
	cs := s.Evidence.Component(comp.ID)
	if cs == nil {
		return
	}

	n := 0
	for _, item := range cs.Evidence {
		if item.Modality == evidence.ModalityText {
			n++
		}
	}
	qs := s.QuestionsByDomain[domain]
	if n > len(qs) {
		n = len(qs)
	}
	for _, q := range qs[len(qs)-n:] {
		delete(s.Responses, q.ID)
	}
	if n > 0 {
		s.QuestionsByDomain[domain] = qs[:len(qs)-n]
	}

	s.Evidence.Reopen(comp.ID)
	delete(e.pendingSpeech, comp.ID)
	delete(e.pendingNaming, comp.ID)
}

// Submit builds the ledger and hands it to the completion collaborator.
// On success the snapshot is cleared exactly once and the assessment
// completes; on failure the state returns to IN_PROGRESS with the ledger
// intact so the same payload can be resent.
func (e *Engine) Submit(ctx context.Context) (*collab.CompletionResult, error) {
	s := e.state
	s.Phase = PhaseSubmitting

	sub := ledger.Build(s.LearnerID, s.QuestionsByDomain, s.Responses)
	result, err := e.deps.Completer.Complete(ctx, sub)
	if err != nil {
		s.Phase = PhaseInProgress
		s.LastError = err.Error()
		return nil, err
	}

	if err := e.deps.Snapshots.Clear(ctx); err != nil {
		// The submission succeeded; a leftover snapshot is orphaned, not
		// fatal. It fails the identity check or is overwritten next run.
		fmt.Fprintf(os.Stderr, "warning: clear snapshot after submit: %v\n", err)
	}
	s.Phase = PhaseComplete
	s.Result = result
	s.LastError = ""
	e.logSession(ctx, "completed")
	return result, nil
}

// finalizeTextComponent closes out a text-only component, scoring it as
// the fraction of correct evidence items.
func (e *Engine) finalizeTextComponent(comp flow.ComponentConfig) {
	cs := e.state.Evidence.Component(comp.ID)
	if cs == nil || cs.Completed {
		return
	}
	total, correct := 0, 0.0
	for _, item := range cs.Evidence {
		if item.Score != nil {
			total++
			correct += *item.Score
		}
	}
	var score float64
	if total > 0 {
		score = correct / float64(total)
	}
	e.state.Evidence.MarkCompleted(comp.ID, evidence.CompletionPatch{Score: &score})
}

// persist writes the full snapshot. An explicit, observable side effect of
// every committed transition rather than a fire-and-forget hook.
func (e *Engine) persist(ctx context.Context) error {
	if err := e.deps.Snapshots.Save(ctx, e.state.ToSnapshot()); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// updateSession mirrors progress to the server, best-effort. The local
// snapshot stays authoritative for resumability.
func (e *Engine) updateSession(ctx context.Context) {
	if e.deps.Sessions == nil {
		return
	}
	rec := collab.SessionRecord{
		SessionID:   e.state.SessionID,
		LearnerID:   e.state.LearnerID,
		Progress:    e.state.Progress(),
		Domain:      e.state.CurrentDomain().Domain,
		ComponentID: e.state.CurrentComponent().ID,
	}
	if err := e.deps.Sessions.Update(ctx, rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: session update failed: %v\n", err)
	}
}

func (e *Engine) logSession(ctx context.Context, action string) {
	if e.deps.Events == nil {
		return
	}
	err := e.deps.Events.AppendSession(ctx, store.SessionEventData{
		SessionID: e.state.SessionID,
		LearnerID: e.state.LearnerID,
		Action:    action,
		Progress:  e.state.Progress(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log session event: %v\n", err)
	}
}

func (e *Engine) logAnswer(ctx context.Context, q *collab.Question, answer string, res *collab.ValidationResult) {
	if e.deps.Events == nil {
		return
	}
	err := e.deps.Events.AppendAnswer(ctx, store.AnswerEventData{
		SessionID:     e.state.SessionID,
		LearnerID:     e.state.LearnerID,
		Domain:        string(q.Domain),
		ComponentID:   e.state.CurrentComponent().ID,
		QuestionID:    q.ID,
		QuestionText:  q.Content,
		LearnerAnswer: answer,
		Correct:       res.IsCorrect,
		Difficulty:    res.UpdatedDifficulty,
		TimeMs:        int(time.Since(e.state.QuestionStart).Milliseconds()),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log answer event: %v\n", err)
	}
}
