package survey

import (
	"context"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/backend"
	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/router"
	"github.com/abhisek/choosedb/internal/screen"
	"github.com/abhisek/choosedb/internal/screens/results"
	"github.com/abhisek/choosedb/internal/store"
	"github.com/abhisek/choosedb/internal/ui/components"
	"github.com/abhisek/choosedb/internal/ui/layout"
)

const spinnerInterval = 100 * time.Millisecond

// Options configures a SurveyScreen.
type Options struct {
	Backend backend.Client

	// Submissions records completed questionnaires. May be nil.
	Submissions store.SubmissionRepo

	Logger      *zap.Logger
	RequestName string

	// Timeout bounds each backend call including retries.
	Timeout time.Duration
}

// SurveyScreen walks the user through the questionnaire and submits it.
type SurveyScreen struct {
	backend     backend.Client
	submissions store.SubmissionRepo
	logger      *zap.Logger
	requestName string
	timeout     time.Duration
	sessionID   string

	state   questionnaire.State
	choices components.ChoiceList
	input   components.TextInput

	spinnerFrame int
	ticking      bool
}

var _ screen.Screen = (*SurveyScreen)(nil)
var _ screen.KeyHintProvider = (*SurveyScreen)(nil)
var _ screen.StatusProvider = (*SurveyScreen)(nil)

// New creates a SurveyScreen. Questions are fetched on Init.
func New(opts Options) *SurveyScreen {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &SurveyScreen{
		backend:     opts.Backend,
		submissions: opts.Submissions,
		logger:      logger.Named("survey"),
		requestName: opts.RequestName,
		timeout:     timeout,
		sessionID:   uuid.NewString(),
		state:       questionnaire.NewState(),
		input:       components.NewTextInput("Type your answer...", 500),
	}
}

// State returns the current questionnaire state.
func (s *SurveyScreen) State() questionnaire.State {
	return s.state
}

func (s *SurveyScreen) Init() tea.Cmd {
	return tea.Batch(s.loadQuestions(), s.startSpinner())
}

func (s *SurveyScreen) Title() string {
	return "Find your database"
}

func (s *SurveyScreen) Status() string {
	if len(s.state.Questions) == 0 {
		return ""
	}
	return "Q " + strconv.Itoa(s.state.Cursor+1) + "/" + strconv.Itoa(len(s.state.Questions))
}

func (s *SurveyScreen) KeyHints() []layout.KeyHint {
	switch s.state.Phase {
	case questionnaire.PhaseLoading, questionnaire.PhaseSubmitting:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case questionnaire.PhaseEmpty:
		return []layout.KeyHint{
			{Key: "r", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	q, _ := s.state.CurrentQuestion()
	hints := []layout.KeyHint{}
	switch q.Mode {
	case questionnaire.ModeSingle:
		hints = append(hints, layout.KeyHint{Key: "↑↓ Space", Description: "Choose"})
	case questionnaire.ModeMulti:
		hints = append(hints, layout.KeyHint{Key: "↑↓ Space", Description: "Toggle"})
	}
	if s.state.IsLast() {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Next"})
	}
	if !s.state.IsFirst() {
		hints = append(hints, layout.KeyHint{Key: "Shift+Tab", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *SurveyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		return s.handleLoaded(msg)

	case submitDoneMsg:
		return s.handleSubmitDone(msg)

	case spinnerTickMsg:
		if !s.busy() {
			s.ticking = false
			return s, nil
		}
		s.spinnerFrame++
		return s, s.tick()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and other input housekeeping.
	if s.answeringText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SurveyScreen) handleLoaded(msg questionsLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.logger.Warn("failed to load questions", zap.Error(msg.Err))
		s.state = s.state.LoadFailed(msg.Err)
		return s, nil
	}
	s.logger.Info("questions loaded", zap.Int("count", len(msg.Questions)))
	s.state = s.state.Loaded(msg.Questions)
	return s, s.syncWidgets()
}

func (s *SurveyScreen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.logger.Warn("failed to get recommendations", zap.Error(msg.Err))
		s.state = s.state.SubmitFailed(msg.Err)
		return s, nil
	}
	s.state = s.state.SubmitSucceeded(msg.Response)
	s.logger.Info("recommendations received",
		zap.Int("count", len(msg.Response.Recommendations)),
		zap.String("submission_id", msg.SubmissionID),
	)
	return s, router.Replace(results.New(msg.Response, ""))
}

func (s *SurveyScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.state.Phase {
	case questionnaire.PhaseEmpty:
		if key == "r" {
			s.state = s.state.Reload()
			return s, tea.Batch(s.loadQuestions(), s.startSpinner())
		}
		return s, nil
	case questionnaire.PhaseReady:
	default:
		return s, nil
	}

	switch key {
	case "enter":
		s.selectHighlightedIfUnanswered()
		if s.state.IsLast() {
			return s, s.submit()
		}
		return s, s.advance()
	case "tab":
		return s, s.advance()
	case "shift+tab":
		s.state = s.state.GoPrevious()
		return s, s.syncWidgets()
	}

	if s.answeringText() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.state = s.state.SetTextInput(s.input.Value())
		return s, cmd
	}

	switch key {
	case "left", "h":
		s.state = s.state.GoPrevious()
		return s, s.syncWidgets()
	case "right", "l":
		return s, s.advance()
	case "up", "k":
		s.choices = s.choices.Up()
	case "down", "j":
		s.choices = s.choices.Down()
	case "space":
		if opt, ok := s.choices.Current(); ok {
			s.choose(opt)
		}
	default:
		if n, err := strconv.Atoi(key); err == nil {
			if opt, ok := s.choices.At(n); ok {
				s.choices = s.choices.HighlightOption(opt)
				s.choose(opt)
			}
		}
	}
	return s, nil
}

// advance moves to the next question once the current one is answered.
func (s *SurveyScreen) advance() tea.Cmd {
	if !s.state.HasCurrentAnswer() {
		return nil
	}
	s.state = s.state.GoNext()
	return s.syncWidgets()
}

// choose applies a choice according to the question's selection mode.
func (s *SurveyScreen) choose(option string) {
	q, ok := s.state.CurrentQuestion()
	if !ok {
		return
	}
	switch q.Mode {
	case questionnaire.ModeSingle:
		s.state = s.state.SelectSingleChoice(option)
	case questionnaire.ModeMulti:
		a, _ := s.state.CurrentAnswer()
		s.state = s.state.ToggleChoice(option, !a.IsSelected(option))
	}
}

// selectHighlightedIfUnanswered lets Enter both pick and advance on a
// single-choice question that has no selection yet.
func (s *SurveyScreen) selectHighlightedIfUnanswered() {
	q, ok := s.state.CurrentQuestion()
	if !ok || q.Mode != questionnaire.ModeSingle || s.state.HasCurrentAnswer() {
		return
	}
	if opt, ok := s.choices.Current(); ok {
		s.state = s.state.SelectSingleChoice(opt)
	}
}

// syncWidgets rebuilds the choice list and text input for the question at
// the cursor from its recorded answer.
func (s *SurveyScreen) syncWidgets() tea.Cmd {
	q, ok := s.state.CurrentQuestion()
	if !ok {
		return nil
	}
	a, _ := s.state.CurrentAnswer()

	if q.IsFreeText() {
		s.input = s.input.SetValue(a.TextInput)
		return s.input.Init()
	}

	s.choices = components.NewChoiceList(q.Choices, q.Mode == questionnaire.ModeMulti)
	if len(a.SelectedChoices) > 0 {
		s.choices = s.choices.HighlightOption(a.SelectedChoices[0])
	}
	return nil
}

func (s *SurveyScreen) answeringText() bool {
	if s.state.Phase != questionnaire.PhaseReady {
		return false
	}
	q, ok := s.state.CurrentQuestion()
	return ok && q.IsFreeText()
}

func (s *SurveyScreen) busy() bool {
	return s.state.Phase == questionnaire.PhaseLoading || s.state.Phase == questionnaire.PhaseSubmitting
}

func (s *SurveyScreen) startSpinner() tea.Cmd {
	if s.ticking {
		return nil
	}
	s.ticking = true
	return s.tick()
}

func (s *SurveyScreen) tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// loadQuestions fetches the question set.
func (s *SurveyScreen) loadQuestions() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(backend.WithSession(context.Background(), s.sessionID), s.timeout)
		defer cancel()

		qs, err := s.backend.Questions(ctx)
		return questionsLoadedMsg{Questions: qs, Err: err}
	}
}

// submit freezes the answers and posts them. Returns nil when submission
// is not allowed.
func (s *SurveyScreen) submit() tea.Cmd {
	next, req, ok := s.state.BeginSubmit(s.requestName)
	if !ok {
		return nil
	}
	s.state = next

	call := func() tea.Msg {
		ctx, cancel := context.WithTimeout(backend.WithSession(context.Background(), s.sessionID), s.timeout)
		defer cancel()

		resp, err := s.backend.Recommend(ctx, req)
		if err != nil {
			return submitDoneMsg{Err: err}
		}
		return submitDoneMsg{Response: resp, SubmissionID: s.record(ctx, req, resp)}
	}
	return tea.Batch(call, s.startSpinner())
}

// record stores a successful submission. Failures are logged and ignored.
func (s *SurveyScreen) record(ctx context.Context, req questionnaire.Request, resp *questionnaire.RecommendationResponse) string {
	if s.submissions == nil {
		return ""
	}
	id, err := s.submissions.Save(context.WithoutCancel(ctx), submissionData(s.sessionID, req, resp))
	if err != nil {
		s.logger.Warn("failed to record submission", zap.Error(err))
		return ""
	}
	return id
}

func submissionData(sessionID string, req questionnaire.Request, resp *questionnaire.RecommendationResponse) store.SubmissionData {
	recs := make([]store.RecommendationData, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		recs[i] = store.RecommendationData{Name: r.Name, Score: r.Score, Explanation: r.Explanation}
	}
	return store.SubmissionData{
		SessionID:       sessionID,
		RequestName:     req.Name,
		Answers:         req.Answers,
		QuerySummary:    resp.QuerySummary,
		Recommendations: recs,
	}
}
