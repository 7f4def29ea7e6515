package survey

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/choosedb/internal/backend"
	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/router"
	"github.com/abhisek/choosedb/internal/screens/results"
	"github.com/abhisek/choosedb/internal/store"
	"github.com/abhisek/choosedb/internal/ui/layout"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *SurveyScreen, text string) {
	for _, r := range text {
		if r == ' ' {
			s.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
			continue
		}
		s.Update(keyPress(r))
	}
}

var dataModel = questionnaire.NewQuestion("q1", "What type of data model do you need?",
	[]string{"SQL", "NoSQL", "Graph"}, questionnaire.ModeSingle)

var features = questionnaire.NewQuestion("q2", "Which features matter?",
	[]string{"Transactions", "Full-text search", "Geo"}, questionnaire.ModeMulti)

var consistency = questionnaire.NewQuestion("q3", "Describe your consistency requirements", nil, "")

var sampleResponse = &questionnaire.RecommendationResponse{
	QuerySummary: "Document store",
	Recommendations: []questionnaire.Recommendation{
		{Name: "MongoDB", Score: 0.875, Explanation: "Flexible documents"},
	},
}

func newLoadedScreen(t *testing.T, mock *backend.MockClient, questions ...questionnaire.Question) *SurveyScreen {
	t.Helper()
	s := New(Options{Backend: mock, RequestName: questionnaire.DefaultRequestName})
	s.Update(questionsLoadedMsg{Questions: questions})
	if s.State().Phase != questionnaire.PhaseReady {
		t.Fatalf("phase = %s, want ready", s.State().Phase)
	}
	return s
}

// findMsg executes cmd, descending into batches, and returns the first
// message of type T.
func findMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	if cmd == nil {
		t.Fatalf("expected a command producing %T", zero)
	}
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case T:
			return msg
		}
	}
	t.Fatalf("no %T produced", zero)
	return zero
}

func TestSurveyScreen_LoadQuestions(t *testing.T) {
	mock := backend.NewMockClient().AddQuestions(backend.MockQuestions{
		Questions: []questionnaire.Question{dataModel, consistency},
	})
	s := New(Options{Backend: mock})

	if s.State().Phase != questionnaire.PhaseLoading {
		t.Fatalf("initial phase = %s, want loading", s.State().Phase)
	}
	if !strings.Contains(s.View(100, 30), "Loading questions") {
		t.Error("expected loading view")
	}

	msg := findMsg[questionsLoadedMsg](t, s.Init())
	s.Update(msg)

	if s.State().Phase != questionnaire.PhaseReady || len(s.State().Questions) != 2 {
		t.Fatalf("state = %+v", s.State())
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Question 1 of 2") || !strings.Contains(view, "What type of data model") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if s.Status() != "Q 1/2" {
		t.Errorf("status = %q", s.Status())
	}
}

func TestSurveyScreen_LoadFailureShowsBannerAndRetries(t *testing.T) {
	mock := backend.NewMockClient().
		AddQuestions(backend.MockQuestions{Err: &backend.ErrStatus{Code: 500}}).
		AddQuestions(backend.MockQuestions{Questions: []questionnaire.Question{dataModel}})
	s := New(Options{Backend: mock})

	s.Update(findMsg[questionsLoadedMsg](t, s.Init()))
	if s.State().Phase != questionnaire.PhaseEmpty {
		t.Fatalf("phase = %s, want empty", s.State().Phase)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "No questions available") || !strings.Contains(view, "Press r to retry") {
		t.Errorf("expected empty view with retry banner:\n%s", view)
	}

	_, cmd := s.Update(keyPress('r'))
	if s.State().Phase != questionnaire.PhaseLoading {
		t.Fatalf("phase after retry = %s, want loading", s.State().Phase)
	}
	s.Update(findMsg[questionsLoadedMsg](t, cmd))
	if s.State().Phase != questionnaire.PhaseReady {
		t.Errorf("phase after reload = %s, want ready", s.State().Phase)
	}
}

func TestSurveyScreen_EmptyQuestionSet(t *testing.T) {
	s := New(Options{Backend: backend.NewMockClient()})
	s.Update(questionsLoadedMsg{Questions: nil})

	if s.State().Phase != questionnaire.PhaseEmpty {
		t.Fatalf("phase = %s, want empty", s.State().Phase)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "No questions available") {
		t.Error("expected empty message")
	}
	if strings.Contains(view, "Could not load") {
		t.Error("empty payload should not show an error banner")
	}
}

func TestSurveyScreen_SingleChoiceNavigation(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), dataModel, consistency)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeySpace))
	a, ok := s.State().CurrentAnswer()
	if !ok || !reflect.DeepEqual(a.SelectedChoices, []string{"NoSQL"}) {
		t.Fatalf("answer = %+v", a)
	}

	// Pressing a digit replaces the single selection.
	s.Update(keyPress('3'))
	a, _ = s.State().CurrentAnswer()
	if !reflect.DeepEqual(a.SelectedChoices, []string{"Graph"}) {
		t.Fatalf("answer after digit = %+v", a.SelectedChoices)
	}

	s.Update(specialKey(tea.KeyTab))
	if s.State().Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", s.State().Cursor)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.State().Cursor != 0 {
		t.Fatalf("cursor after shift+tab = %d, want 0", s.State().Cursor)
	}

	// Answer preserved and highlighted after coming back.
	a, _ = s.State().CurrentAnswer()
	if !reflect.DeepEqual(a.SelectedChoices, []string{"Graph"}) {
		t.Errorf("answer after returning = %+v", a.SelectedChoices)
	}
	if opt, _ := s.choices.Current(); opt != "Graph" {
		t.Errorf("highlighted = %q, want Graph", opt)
	}
}

func TestSurveyScreen_EnterSelectsHighlightedSingleChoice(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), dataModel, consistency)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))

	if s.State().Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", s.State().Cursor)
	}
	a, ok := s.State().AnswerFor("q1")
	if !ok || !reflect.DeepEqual(a.SelectedChoices, []string{"NoSQL"}) {
		t.Errorf("q1 answer = %+v", a)
	}
}

func TestSurveyScreen_ForwardNavigationRequiresAnswer(t *testing.T) {
	tests := []struct {
		name  string
		first questionnaire.Question
		keys  []tea.KeyPressMsg
	}{
		{
			name:  "single choice",
			first: dataModel,
			keys:  []tea.KeyPressMsg{specialKey(tea.KeyTab), specialKey(tea.KeyRight), keyPress('l')},
		},
		{
			name:  "multi choice",
			first: features,
			keys: []tea.KeyPressMsg{
				specialKey(tea.KeyTab), specialKey(tea.KeyRight), keyPress('l'), specialKey(tea.KeyEnter),
			},
		},
		{
			name:  "free text",
			first: consistency,
			keys:  []tea.KeyPressMsg{specialKey(tea.KeyTab), specialKey(tea.KeyEnter)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoadedScreen(t, backend.NewMockClient(), tt.first, dataModel)

			for _, k := range tt.keys {
				s.Update(k)
				if s.State().Cursor != 0 {
					t.Fatalf("%q advanced past an unanswered question", k.String())
				}
			}
			if s.State().HasCurrentAnswer() {
				t.Errorf("answer = %+v, want none", s.State().Answers)
			}
			if strings.Contains(s.View(100, 30), "▸ Next") {
				t.Error("Next should render disabled without an answer")
			}
		})
	}
}

func TestSurveyScreen_WhitespaceTextDoesNotAdvance(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), consistency, dataModel)

	typeText(s, "   ")
	s.Update(specialKey(tea.KeyTab))
	s.Update(specialKey(tea.KeyEnter))
	if s.State().Cursor != 0 {
		t.Fatalf("cursor = %d, want 0", s.State().Cursor)
	}

	typeText(s, "ok")
	if !strings.Contains(s.View(100, 30), "▸ Next") {
		t.Error("Next should be enabled once answered")
	}
	s.Update(specialKey(tea.KeyTab))
	if s.State().Cursor != 1 {
		t.Errorf("cursor = %d, want 1", s.State().Cursor)
	}
}

func TestSurveyScreen_MultiChoiceToggle(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), features)

	s.Update(keyPress('1'))
	s.Update(keyPress('3'))
	a, _ := s.State().CurrentAnswer()
	if !reflect.DeepEqual(a.SelectedChoices, []string{"Transactions", "Geo"}) {
		t.Fatalf("selected = %v", a.SelectedChoices)
	}
	if !s.State().HasCurrentAnswer() {
		t.Error("expected answer")
	}

	s.Update(keyPress('1'))
	s.Update(keyPress('3'))
	if s.State().HasCurrentAnswer() {
		t.Error("deselecting every choice should clear the answer")
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "[ ] 1. Transactions") {
		t.Error("expected checkbox markers in view")
	}
	if !strings.Contains(view, "nothing selected") {
		t.Error("expected selection summary under the list")
	}

	s.Update(keyPress('2'))
	if !strings.Contains(s.View(100, 30), "selected: Full-text search") {
		t.Error("expected summary of the selected options")
	}
}

func TestSurveyScreen_TextInput(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), consistency)

	typeText(s, "Need strong consistency")
	a, ok := s.State().CurrentAnswer()
	if !ok || a.TextInput != "Need strong consistency" {
		t.Fatalf("text = %q", a.TextInput)
	}

	// Letters used for navigation elsewhere are typed here.
	typeText(s, " jk")
	a, _ = s.State().CurrentAnswer()
	if a.TextInput != "Need strong consistency jk" {
		t.Errorf("text = %q", a.TextInput)
	}
}

func TestSurveyScreen_SubmitBlockedWithoutAnswer(t *testing.T) {
	mock := backend.NewMockClient()
	s := newLoadedScreen(t, mock, consistency)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no command without an answer")
	}
	if s.State().Submitting {
		t.Error("should not be submitting")
	}
	if len(mock.Requests) != 0 {
		t.Error("no request should be sent")
	}
}

func TestSurveyScreen_SubmitSingleChoice(t *testing.T) {
	mock := backend.NewMockClient().AddRecommendation(backend.MockRecommendation{Response: sampleResponse})
	s := newLoadedScreen(t, mock, dataModel)

	s.Update(keyPress('2'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if !s.State().Submitting || s.State().Phase != questionnaire.PhaseSubmitting {
		t.Fatalf("state = %+v, want submitting", s.State())
	}
	if !strings.Contains(s.View(100, 30), "Getting recommendations") {
		t.Error("expected busy indicator while submitting")
	}

	// Keys are ignored while the request is in flight.
	s.Update(keyPress('1'))
	if a, _ := s.State().CurrentAnswer(); a.SelectedChoices[0] != "NoSQL" {
		t.Error("answers must not change while submitting")
	}

	done := findMsg[submitDoneMsg](t, cmd)
	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("expected a recommend request")
	}
	want := map[string][]string{"q1": {"NoSQL"}}
	if req.Name != questionnaire.DefaultRequestName || !reflect.DeepEqual(req.Answers, want) {
		t.Errorf("request = %+v", req)
	}

	_, cmd = s.Update(done)
	if s.State().Phase != questionnaire.PhaseResults || s.State().Recommendation != sampleResponse {
		t.Fatalf("state = %+v, want results", s.State())
	}
	replace := findMsg[router.NavigateMsg](t, cmd)
	if replace.Op != router.OpReplace {
		t.Fatalf("op = %v, want replace", replace.Op)
	}
	rs, ok := replace.Screen.(*results.ResultsScreen)
	if !ok {
		t.Fatalf("replacement = %T, want *results.ResultsScreen", replace.Screen)
	}
	if rs.Response() != sampleResponse {
		t.Error("results screen should show the response")
	}
}

func TestSurveyScreen_SubmitFreeText(t *testing.T) {
	mock := backend.NewMockClient().AddRecommendation(backend.MockRecommendation{Response: sampleResponse})
	s := newLoadedScreen(t, mock, consistency)

	typeText(s, "Need strong consistency")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	findMsg[submitDoneMsg](t, cmd)

	req, _ := mock.LastRequest()
	want := map[string][]string{"q3": {"Need strong consistency"}}
	if !reflect.DeepEqual(req.Answers, want) {
		t.Errorf("answers = %v, want %v", req.Answers, want)
	}
}

func TestSurveyScreen_SubmitFailure(t *testing.T) {
	mock := backend.NewMockClient().AddRecommendation(backend.MockRecommendation{Err: &backend.ErrStatus{Code: 500}})
	s := newLoadedScreen(t, mock, dataModel, consistency)

	s.Update(specialKey(tea.KeyEnter))
	typeText(s, "strong")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(findMsg[submitDoneMsg](t, cmd))

	st := s.State()
	if st.Recommendation != nil {
		t.Error("recommendation should be unset")
	}
	if st.Submitting || st.Phase != questionnaire.PhaseReady {
		t.Errorf("state = %+v, want ready and not submitting", st)
	}
	if !st.IsLast() {
		t.Errorf("cursor = %d, want last question", st.Cursor)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Describe your consistency") || !strings.Contains(view, "Could not get recommendations") {
		t.Errorf("expected last question with error banner:\n%s", view)
	}
}

func TestSurveyScreen_RecordsSubmission(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "survey.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mock := backend.NewMockClient().AddRecommendation(backend.MockRecommendation{Response: sampleResponse})
	s := New(Options{Backend: mock, Submissions: st.SubmissionRepo(), RequestName: "custom"})
	s.Update(questionsLoadedMsg{Questions: []questionnaire.Question{dataModel}})

	s.Update(keyPress('1'))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	done := findMsg[submitDoneMsg](t, cmd)
	if done.SubmissionID == "" {
		t.Fatal("expected a submission id")
	}

	rec, err := st.SubmissionRepo().Get(context.Background(), done.SubmissionID)
	if err != nil || rec == nil {
		t.Fatalf("get submission: %v, %v", rec, err)
	}
	if rec.RequestName != "custom" || rec.QuerySummary != "Document store" {
		t.Errorf("record = %+v", rec)
	}
	if rec.SessionID != s.sessionID {
		t.Errorf("session = %q, want %q", rec.SessionID, s.sessionID)
	}
}

func TestSurveyScreen_KeyHints(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), dataModel, features)

	hints := s.KeyHints()
	if !hasHint(hints, "Next") || hasHint(hints, "Back") {
		t.Errorf("first question hints = %+v", hints)
	}

	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeyTab))
	hints = s.KeyHints()
	if !hasHint(hints, "Submit") || !hasHint(hints, "Back") || !hasHint(hints, "Toggle") {
		t.Errorf("last question hints = %+v", hints)
	}
}

func TestSurveyScreen_SpinnerStopsWhenIdle(t *testing.T) {
	s := newLoadedScreen(t, backend.NewMockClient(), dataModel)
	s.ticking = true

	_, cmd := s.Update(spinnerTickMsg{})
	if cmd != nil {
		t.Error("spinner should stop when nothing is in flight")
	}
	if s.ticking {
		t.Error("ticking flag should be cleared")
	}
}

func hasHint(hints []layout.KeyHint, desc string) bool {
	for _, h := range hints {
		if h.Description == desc {
			return true
		}
	}
	return false
}
