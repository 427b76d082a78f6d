package assess

import (
	"context"
	"fmt"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/evidence"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/fusion"
)

// BeginSpeechTask marks the in-flight state for a speech analysis call and
// returns the request plus the generation token.
func (e *Engine) BeginSpeechTask(audio []byte, taskType string) (collab.SpeechRequest, uint64) {
	s := e.state
	req := collab.SpeechRequest{
		Audio:     audio,
		TaskType:  taskType,
		Component: s.CurrentComponent().ID,
		SessionID: s.SessionID,
	}
	s.Loading = true
	return req, s.Generation
}

// ApplySpeechAnalysis records an audio analysis result as evidence for the
// active component and finalizes the component once every expected source
// has reported. For components that also expect a naming result, the
// analysis is held until the naming sub-task arrives so the component is
// never completed on partial data.
func (e *Engine) ApplySpeechAnalysis(ctx context.Context, analysis *collab.SpeechAnalysis, gen uint64) (*StepOutcome, error) {
	s := e.state
	if gen != s.Generation {
		return nil, ErrStaleResponse
	}
	s.Loading = false

	comp := s.CurrentComponent()
	score := analysis.Scores.Intelligibility
	item := evidence.Item{
		Prompt:   comp.Name,
		Response: analysis.Transcription,
		Modality: evidence.ModalityAudio,
		Score:    &score,
	}
	if analysis.Notes != "" {
		item.Metadata = map[string]string{"notes": analysis.Notes}
	}
	if err := s.Evidence.Add(comp.ID, item); err != nil {
		return nil, err
	}
	s.Evidence.SourceReported(comp.ID, flow.SourceAudio)
	e.pendingSpeech[comp.ID] = analysis
	s.LastError = ""

	return e.maybeFinalizeSpeech(ctx, comp)
}

// FailSpeechAnalysis surfaces an analysis error for manual retry.
func (e *Engine) FailSpeechAnalysis(err error, gen uint64) {
	if gen != e.state.Generation {
		return
	}
	e.state.Loading = false
	e.state.LastError = err.Error()
}

// ApplyNaming scores a picture-naming sub-task and records one evidence
// item per card with its per-card score.
func (e *Engine) ApplyNaming(ctx context.Context, cards []fusion.Card, answers []string) (*StepOutcome, error) {
	s := e.state
	comp := s.CurrentComponent()

	result := fusion.ScoreNaming(cards, answers)
	items := make([]evidence.Item, 0, len(cards))
	for i, card := range cards {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		cardScore := result.PerCard[i]
		items = append(items, evidence.Item{
			Prompt:   "Name the picture: " + card.Label,
			Response: answer,
			Modality: evidence.ModalityVisual,
			Score:    &cardScore,
			Metadata: map[string]string{"cardId": card.ID},
		})
	}
	if err := s.Evidence.Add(comp.ID, items...); err != nil {
		return nil, err
	}
	s.Evidence.SourceReported(comp.ID, flow.SourceNaming)
	e.pendingNaming[comp.ID] = namingOutcome{score: result.Score, perCard: result.PerCard}

	return e.maybeFinalizeSpeech(ctx, comp)
}

// maybeFinalizeSpeech fuses the component's scores and advances once all
// expected sources have reported. Returns a nil outcome while sources are
// still pending.
func (e *Engine) maybeFinalizeSpeech(ctx context.Context, comp flow.ComponentConfig) (*StepOutcome, error) {
	s := e.state
	if !s.Evidence.AllSourcesReported(comp.ID, comp.ExpectedSources) {
		return nil, e.persist(ctx)
	}

	analysis := e.pendingSpeech[comp.ID]
	if analysis == nil {
		return nil, fmt.Errorf("component %s ready without audio analysis", comp.ID)
	}

	score := analysis.Scores.Intelligibility
	if naming, ok := e.pendingNaming[comp.ID]; ok {
		score = fusion.Fuse(analysis.Scores.Intelligibility, naming.score)
	}
	ageAppropriate := analysis.Scores.AgeAppropriate != nil && *analysis.Scores.AgeAppropriate
	confidence := fusion.Confidence(ageAppropriate)

	patch := evidence.CompletionPatch{
		Score:      &score,
		Confidence: &confidence,
		AINotes:    analysis.Notes,
	}
	if err := s.Evidence.MarkCompleted(comp.ID, patch); err != nil {
		return nil, err
	}
	delete(e.pendingSpeech, comp.ID)
	delete(e.pendingNaming, comp.ID)

	outcome := &StepOutcome{ComponentCompleted: true}
	outcome.Advanced = s.Advance()
	if outcome.Advanced == AssessmentComplete {
		s.Phase = PhaseSubmitting
		outcome.ReadyToSubmit = true
	}

	if err := e.persist(ctx); err != nil {
		return outcome, err
	}
	e.updateSession(ctx)
	return outcome, nil
}

// AnalyzeSpeech is the blocking convenience form of the begin/apply pair.
func (e *Engine) AnalyzeSpeech(ctx context.Context, audio []byte, taskType string) (*StepOutcome, error) {
	req, gen := e.BeginSpeechTask(audio, taskType)
	analysis, err := e.deps.Speech.Analyze(ctx, req)
	if err != nil {
		e.FailSpeechAnalysis(err, gen)
		return nil, err
	}
	return e.ApplySpeechAnalysis(ctx, analysis, gen)
}
