package questionnaire

import (
	"slices"
	"strings"
)

// Phase represents where the questionnaire is in its lifecycle.
type Phase int

const (
	PhaseLoading    Phase = iota // Waiting for the question set
	PhaseEmpty                   // No questions (empty payload or failed load)
	PhaseReady                   // Answering questions
	PhaseSubmitting              // Submit in flight
	PhaseResults                 // Recommendation received; terminal
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// State is the complete questionnaire session. Transitions are methods on
// the value receiver that return a new State; the receiver is never
// mutated, so older values stay valid.
type State struct {
	Phase          Phase
	Questions      []Question
	Cursor         int
	Answers        []Answer
	Submitting     bool
	Recommendation *RecommendationResponse

	// Err is the most recent load or submit failure, cleared when a new
	// request starts.
	Err error
}

// NewState returns a state waiting for questions.
func NewState() State {
	return State{Phase: PhaseLoading}
}

// Loaded installs the question set.
func (s State) Loaded(questions []Question) State {
	if s.Phase != PhaseLoading && s.Phase != PhaseEmpty {
		return s
	}
	s.Questions = slices.Clone(questions)
	s.Cursor = 0
	s.Answers = nil
	s.Err = nil
	if len(s.Questions) == 0 {
		s.Phase = PhaseEmpty
	} else {
		s.Phase = PhaseReady
	}
	return s
}

// LoadFailed records a failed question fetch. The questionnaire falls back
// to the empty state.
func (s State) LoadFailed(err error) State {
	if s.Phase != PhaseLoading && s.Phase != PhaseEmpty {
		return s
	}
	s.Phase = PhaseEmpty
	s.Questions = nil
	s.Err = err
	return s
}

// Reload moves an empty questionnaire back to loading so the fetch can be
// retried.
func (s State) Reload() State {
	if s.Phase != PhaseEmpty {
		return s
	}
	s.Phase = PhaseLoading
	s.Err = nil
	return s
}

// CurrentQuestion returns the question at the cursor.
func (s State) CurrentQuestion() (Question, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// AnswerFor returns the recorded answer for a question id.
func (s State) AnswerFor(questionID string) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}

// CurrentAnswer returns the recorded answer for the question at the cursor.
func (s State) CurrentAnswer() (Answer, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return Answer{}, false
	}
	return s.AnswerFor(q.ID)
}

// IsFirst reports whether the cursor is on the first question.
func (s State) IsFirst() bool {
	return s.Cursor == 0
}

// IsLast reports whether the cursor is on the last question.
func (s State) IsLast() bool {
	return len(s.Questions) > 0 && s.Cursor == len(s.Questions)-1
}

// editable reports whether answers may change.
func (s State) editable() bool {
	return s.Phase == PhaseReady && !s.Submitting
}

// SelectSingleChoice makes choice the only selection of the current
// single-choice question, clearing any text.
func (s State) SelectSingleChoice(choice string) State {
	q, ok := s.CurrentQuestion()
	if !ok || !s.editable() || q.Mode != ModeSingle || !q.HasChoice(choice) {
		return s
	}
	return s.replaceAnswer(Answer{
		QuestionID:      q.ID,
		SelectedChoices: []string{choice},
	})
}

// ToggleChoice adds choice to the current multi-choice answer when
// selected is true, or removes it when false. Calls that would not change
// membership return s unchanged.
func (s State) ToggleChoice(choice string, selected bool) State {
	q, ok := s.CurrentQuestion()
	if !ok || !s.editable() || q.Mode != ModeMulti || !q.HasChoice(choice) {
		return s
	}

	current, _ := s.AnswerFor(q.ID)
	present := current.IsSelected(choice)

	var next []string
	switch {
	case selected && !present:
		next = append(slices.Clone(current.SelectedChoices), choice)
	case !selected && present:
		next = make([]string, 0, len(current.SelectedChoices))
		for _, c := range current.SelectedChoices {
			if c != choice {
				next = append(next, c)
			}
		}
	default:
		return s
	}

	return s.replaceAnswer(Answer{
		QuestionID:      q.ID,
		SelectedChoices: next,
	})
}

// SetTextInput records text as the answer to the current free-text
// question.
func (s State) SetTextInput(text string) State {
	q, ok := s.CurrentQuestion()
	if !ok || !s.editable() || q.Mode != ModeText {
		return s
	}
	return s.replaceAnswer(Answer{
		QuestionID:      q.ID,
		SelectedChoices: []string{},
		TextInput:       text,
	})
}

// replaceAnswer swaps in a for the record with the same question id, or
// appends it. The answer slice is copied.
func (s State) replaceAnswer(a Answer) State {
	answers := slices.Clone(s.Answers)
	idx := slices.IndexFunc(answers, func(existing Answer) bool {
		return existing.QuestionID == a.QuestionID
	})
	if idx >= 0 {
		answers[idx] = a
	} else {
		answers = append(answers, a)
	}
	s.Answers = answers
	return s
}

// GoNext advances the cursor, stopping at the last question.
func (s State) GoNext() State {
	if s.Phase != PhaseReady {
		return s
	}
	if s.Cursor < len(s.Questions)-1 {
		s.Cursor++
	}
	return s
}

// GoPrevious moves the cursor back, stopping at the first question.
func (s State) GoPrevious() State {
	if s.Phase != PhaseReady {
		return s
	}
	if s.Cursor > 0 {
		s.Cursor--
	}
	return s
}

// HasCurrentAnswer reports whether the question at the cursor has a usable
// answer: a selection for choice questions, non-blank text otherwise.
func (s State) HasCurrentAnswer() bool {
	q, ok := s.CurrentQuestion()
	if !ok {
		return false
	}
	a, ok := s.AnswerFor(q.ID)
	if !ok {
		return false
	}
	if q.IsFreeText() {
		return strings.TrimSpace(a.TextInput) != ""
	}
	return len(a.SelectedChoices) > 0
}

// CanSubmit reports whether BeginSubmit would start a submission.
func (s State) CanSubmit() bool {
	return s.Phase == PhaseReady && !s.Submitting && s.IsLast() && s.HasCurrentAnswer()
}

// BeginSubmit freezes the answers into a request. ok is false, and s is
// returned unchanged, when submission is not currently allowed.
func (s State) BeginSubmit(name string) (State, Request, bool) {
	if !s.CanSubmit() {
		return s, Request{}, false
	}
	req := s.BuildRequest(name)
	s.Submitting = true
	s.Phase = PhaseSubmitting
	s.Err = nil
	return s, req, true
}

// SubmitSucceeded stores the recommendation and ends the questionnaire.
func (s State) SubmitSucceeded(resp *RecommendationResponse) State {
	if s.Phase != PhaseSubmitting || resp == nil {
		return s
	}
	s.Submitting = false
	s.Recommendation = resp
	s.Phase = PhaseResults
	return s
}

// SubmitFailed returns to the last question with answers intact so the
// user can submit again.
func (s State) SubmitFailed(err error) State {
	if s.Phase != PhaseSubmitting {
		return s
	}
	s.Submitting = false
	s.Phase = PhaseReady
	s.Err = err
	return s
}

// BuildRequest maps the recorded answers to the recommend payload. A record
// contributes its selected choices when it has any, otherwise its text as
// a single element when the text is not blank; records with neither are
// left out.
func (s State) BuildRequest(name string) Request {
	if name == "" {
		name = DefaultRequestName
	}
	answers := make(map[string][]string, len(s.Answers))
	for _, a := range s.Answers {
		switch {
		case len(a.SelectedChoices) > 0:
			answers[a.QuestionID] = slices.Clone(a.SelectedChoices)
		case strings.TrimSpace(a.TextInput) != "":
			answers[a.QuestionID] = []string{a.TextInput}
		}
	}
	return Request{Name: name, Answers: answers}
}

// Progress returns the fraction of questions that have a usable answer.
func (s State) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	answered := 0
	for _, q := range s.Questions {
		a, ok := s.AnswerFor(q.ID)
		if !ok {
			continue
		}
		if len(a.SelectedChoices) > 0 || (q.IsFreeText() && strings.TrimSpace(a.TextInput) != "") {
			answered++
		}
	}
	return float64(answered) / float64(len(s.Questions))
}
