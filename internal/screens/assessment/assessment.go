// Package assessment drives the question loop: fetching prompts,
// validating answers, collecting speech evidence, and handing the final
// ledger to submission. Collaborator calls run as commands off the event
// loop; every response carries the generation token it was issued with,
// and stale responses are dropped by the engine.
package assessment

import (
	"context"
	"errors"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakline/baseline/internal/assess"
	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/fusion"
	"github.com/oakline/baseline/internal/router"
	"github.com/oakline/baseline/internal/screen"
	"github.com/oakline/baseline/internal/ui/components"
	"github.com/oakline/baseline/internal/ui/layout"
)

// mode is the screen's input mode, derived from the active component.
type mode int

const (
	modeQuestion mode = iota
	modeSpeechAudio
	modeSpeechNaming
	modeFeedback
	modeSubmitting
)

// defaultNamingCards is the standard picture set for the naming sub-task.
var defaultNamingCards = []fusion.Card{
	{ID: "card-1", Label: "cat"},
	{ID: "card-2", Label: "tree"},
	{ID: "card-3", Label: "rocket"},
}

// AssessmentScreen implements screen.Screen for the active assessment.
type AssessmentScreen struct {
	engine *assess.Engine
	deps   assess.Deps
	report func(*collab.CompletionResult) screen.Screen

	mode  mode
	input components.TextInput
	mc    components.MultiChoice

	lastOutcome *assess.StepOutcome
	lastCorrect bool
	lastSpeech  bool

	// retry re-issues the collaborator call that last failed.
	retry func() tea.Cmd

	audioPath string
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)

// New creates an AssessmentScreen. The engine must already be
// IN_PROGRESS; report builds the results screen shown after submission.
func New(engine *assess.Engine, deps assess.Deps, report func(*collab.CompletionResult) screen.Screen) *AssessmentScreen {
	return &AssessmentScreen{
		engine: engine,
		deps:   deps,
		report: report,
	}
}

func (s *AssessmentScreen) Init() tea.Cmd {
	return s.continueStep()
}

func (s *AssessmentScreen) Title() string {
	st := s.engine.State()
	if st.Phase != assess.PhaseInProgress {
		return "Assessment"
	}
	return st.CurrentDomain().Domain.DisplayName()
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	if s.engine.State().LastError != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	switch s.mode {
	case modeFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case modeSubmitting:
		return nil
	default:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
		st := s.engine.State()
		if st.DomainIndex > 0 || st.ComponentIndex > 0 {
			hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
		}
		return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		return s.handleQuestion(msg)
	case validatedMsg:
		return s.handleValidated(msg)
	case audioLoadedMsg:
		return s.handleAudioLoaded(msg)
	case speechMsg:
		return s.handleSpeech(msg)
	case submittedMsg:
		return s.handleSubmitted(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.acceptingText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// acceptingText reports whether keystrokes should flow into the text input.
func (s *AssessmentScreen) acceptingText() bool {
	if s.engine.State().Loading || s.engine.State().LastError != "" {
		return false
	}
	switch s.mode {
	case modeSpeechAudio, modeSpeechNaming:
		return true
	case modeQuestion:
		q := s.engine.State().CurrentQuestion
		return q != nil && q.Type != collab.TypeMultipleChoice
	}
	return false
}

// continueStep moves to the next unit of work for the active slot:
// a speech task for audio components, a fetched question otherwise.
func (s *AssessmentScreen) continueStep() tea.Cmd {
	st := s.engine.State()
	if st.Phase != assess.PhaseInProgress {
		return nil
	}

	comp := st.CurrentComponent()
	if hasSource(comp.ExpectedSources, flow.SourceAudio) {
		s.mode = modeSpeechAudio
		s.input = components.NewTextInput("Path to recording (.wav)...", false, 200)
		return s.input.Init()
	}

	s.mode = modeQuestion
	return s.fetchQuestion()
}

func (s *AssessmentScreen) fetchQuestion() tea.Cmd {
	req, gen := s.engine.BeginQuestionRequest()
	s.retry = s.fetchQuestion
	return func() tea.Msg {
		q, err := s.deps.Questions.NextQuestion(context.Background(), req)
		return questionMsg{Question: q, Gen: gen, Err: err}
	}
}

func (s *AssessmentScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.engine.FailQuestion(msg.Err, msg.Gen)
		return s, nil
	}
	if !s.engine.ApplyQuestion(msg.Question, msg.Gen) {
		return s, nil
	}
	s.retry = nil

	if msg.Question.Type == collab.TypeMultipleChoice {
		s.mc = components.NewMultiChoice(msg.Question.Options)
		return s, nil
	}
	placeholder := "Type your answer..."
	if msg.Question.Type == collab.TypeAudioResponse {
		placeholder = "Say it aloud, then type what you said..."
	}
	s.input = components.NewTextInput(placeholder, false, 200)
	return s, s.input.Init()
}

func (s *AssessmentScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	st := s.engine.State()
	q := st.CurrentQuestion
	if q == nil || st.Loading {
		return s, nil
	}

	var answer string
	if q.Type == collab.TypeMultipleChoice {
		answer = s.mc.Choice()
	} else {
		answer = strings.TrimSpace(s.input.Value())
	}
	if answer == "" {
		return s, nil
	}

	qID, gen, err := s.engine.BeginAnswer()
	if err != nil {
		return s, nil
	}
	validate := func() tea.Cmd {
		return func() tea.Msg {
			res, err := s.deps.Validator.Validate(context.Background(), qID, answer)
			return validatedMsg{Answer: answer, Result: res, Gen: gen, Err: err}
		}
	}
	s.retry = func() tea.Cmd {
		// The generation is unchanged on failure, so the same token is
		// still valid for the re-issued call.
		s.engine.State().Loading = true
		return validate()
	}
	return s, validate()
}

func (s *AssessmentScreen) handleValidated(msg validatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.engine.FailValidation(msg.Err, msg.Gen)
		return s, nil
	}

	outcome, err := s.engine.ApplyValidation(context.Background(), msg.Answer, msg.Result, msg.Gen)
	if errors.Is(err, assess.ErrStaleResponse) {
		return s, nil
	}
	if err != nil && outcome == nil {
		s.engine.State().LastError = err.Error()
		return s, nil
	}
	s.retry = nil
	s.lastOutcome = outcome
	s.lastCorrect = outcome.Correct
	s.lastSpeech = false
	s.mode = modeFeedback
	return s, nil
}

// handleFeedbackDone advances past the feedback overlay.
func (s *AssessmentScreen) handleFeedbackDone() (screen.Screen, tea.Cmd) {
	outcome := s.lastOutcome
	s.lastOutcome = nil
	if outcome != nil && outcome.ReadyToSubmit {
		return s, s.submit()
	}
	return s, s.continueStep()
}

// goBack steps to the previous component so the learner can retry it.
// The retried component starts clean and its results overwrite the
// prior attempt's.
func (s *AssessmentScreen) goBack() (screen.Screen, tea.Cmd) {
	st := s.engine.State()
	if st.DomainIndex == 0 && st.ComponentIndex == 0 {
		return s, nil
	}
	if err := s.engine.GoBack(context.Background()); err != nil {
		st.LastError = err.Error()
		s.retry = nil
		return s, nil
	}
	s.retry = nil
	s.lastOutcome = nil
	return s, s.continueStep()
}

// loadAudio reads the recording from disk off the event loop.
func (s *AssessmentScreen) loadAudio(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return audioLoadedMsg{Data: data, Err: err}
	}
}

func (s *AssessmentScreen) handleAudioLoaded(msg audioLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.engine.State().LastError = "could not read recording: " + msg.Err.Error()
		s.retry = nil
		return s, nil
	}

	comp := s.engine.State().CurrentComponent()
	req, gen := s.engine.BeginSpeechTask(msg.Data, comp.ID)
	analyze := func() tea.Cmd {
		return func() tea.Msg {
			analysis, err := s.deps.Speech.Analyze(context.Background(), req)
			return speechMsg{Analysis: analysis, Gen: gen, Err: err}
		}
	}
	s.retry = func() tea.Cmd {
		s.engine.State().Loading = true
		return analyze()
	}
	return s, analyze()
}

func (s *AssessmentScreen) handleSpeech(msg speechMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.engine.FailSpeechAnalysis(msg.Err, msg.Gen)
		return s, nil
	}

	outcome, err := s.engine.ApplySpeechAnalysis(context.Background(), msg.Analysis, msg.Gen)
	if errors.Is(err, assess.ErrStaleResponse) {
		return s, nil
	}
	if err != nil {
		s.engine.State().LastError = err.Error()
		return s, nil
	}
	s.retry = nil

	if outcome == nil {
		// Audio recorded; the naming sub-task still has to report.
		s.mode = modeSpeechNaming
		s.input = components.NewTextInput("Name each picture, comma separated...", false, 200)
		return s, s.input.Init()
	}
	s.lastOutcome = outcome
	s.lastCorrect = true
	s.lastSpeech = true
	s.mode = modeFeedback
	return s, nil
}

func (s *AssessmentScreen) submitNaming() (screen.Screen, tea.Cmd) {
	raw := strings.TrimSpace(s.input.Value())
	if raw == "" {
		return s, nil
	}
	answers := strings.Split(raw, ",")
	for i := range answers {
		answers[i] = strings.TrimSpace(answers[i])
	}

	outcome, err := s.engine.ApplyNaming(context.Background(), defaultNamingCards, answers)
	if err != nil {
		s.engine.State().LastError = err.Error()
		return s, nil
	}
	if outcome == nil {
		return s, nil
	}
	s.lastOutcome = outcome
	s.lastCorrect = true
	s.lastSpeech = true
	s.mode = modeFeedback
	return s, nil
}

func (s *AssessmentScreen) submit() tea.Cmd {
	s.mode = modeSubmitting
	s.retry = s.submit
	return func() tea.Msg {
		result, err := s.engine.Submit(context.Background())
		return submittedMsg{Result: result, Err: err}
	}
}

func (s *AssessmentScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		// The engine is back to IN_PROGRESS with the ledger intact; the
		// same payload is resent on retry.
		return s, nil
	}
	s.retry = nil
	reportScreen := s.report(msg.Result)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: reportScreen}
	}
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	st := s.engine.State()

	// Error banner takes the keyboard until retried.
	if st.LastError != "" {
		if (key == "r" || key == "R") && s.retry != nil {
			st.LastError = ""
			return s, s.retry()
		}
		return s, nil
	}

	if s.mode == modeFeedback {
		return s.handleFeedbackDone()
	}

	if s.mode == modeSubmitting || st.Loading {
		return s, nil
	}

	if key == "esc" {
		return s.goBack()
	}

	switch s.mode {
	case modeSpeechAudio:
		if key == "enter" {
			path := strings.TrimSpace(s.input.Value())
			if path == "" {
				return s, nil
			}
			s.audioPath = path
			return s, s.loadAudio(path)
		}

	case modeSpeechNaming:
		if key == "enter" {
			return s.submitNaming()
		}

	case modeQuestion:
		q := st.CurrentQuestion
		if q == nil {
			return s, nil
		}
		if key == "enter" {
			return s.submitAnswer()
		}
		if q.Type == collab.TypeMultipleChoice {
			switch key {
			case "up", "down", "j", "k":
				s.mc, _ = s.mc.Update(msg)
				return s, nil
			case "1", "2", "3", "4":
				// Digit selects and submits in one stroke.
				s.mc, _ = s.mc.Update(msg)
				return s.submitAnswer()
			}
			return s, nil
		}
	}

	// Forward everything else to the text input.
	if s.acceptingText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func hasSource(sources []flow.Source, want flow.Source) bool {
	for _, src := range sources {
		if src == want {
			return true
		}
	}
	return false
}
