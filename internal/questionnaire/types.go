package questionnaire

import "fmt"

// DefaultRequestName is the name tag the recommendation endpoint expects.
const DefaultRequestName = "Database Recommendation Request"

// SelectionMode describes how a question is answered.
type SelectionMode string

const (
	ModeText   SelectionMode = "text"   // Free-text answer, no choices
	ModeSingle SelectionMode = "single" // Exactly one choice
	ModeMulti  SelectionMode = "multi"  // Any non-empty subset of choices
)

// ParseSelectionMode parses a choice-question mode. Only "single" and
// "multi" are accepted; text mode is implied by an empty choice list.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch SelectionMode(s) {
	case ModeSingle, ModeMulti:
		return SelectionMode(s), nil
	default:
		return "", fmt.Errorf("unknown selection mode: %q", s)
	}
}

// Question is one survey prompt. Immutable once loaded.
type Question struct {
	ID      string
	Text    string
	Choices []string
	Mode    SelectionMode
}

// NewQuestion builds a Question, forcing text mode when choices is empty.
func NewQuestion(id, text string, choices []string, mode SelectionMode) Question {
	if len(choices) == 0 {
		return Question{ID: id, Text: text, Choices: []string{}, Mode: ModeText}
	}
	if mode != ModeMulti {
		mode = ModeSingle
	}
	return Question{ID: id, Text: text, Choices: choices, Mode: mode}
}

// IsFreeText reports whether the question takes a typed answer.
func (q Question) IsFreeText() bool {
	return len(q.Choices) == 0
}

// HasChoice reports whether choice is one of the question's options.
func (q Question) HasChoice(choice string) bool {
	for _, c := range q.Choices {
		if c == choice {
			return true
		}
	}
	return false
}

// Answer is the user's current response to one question.
type Answer struct {
	QuestionID      string
	SelectedChoices []string
	TextInput       string
}

// IsSelected reports whether choice is part of the answer.
func (a Answer) IsSelected(choice string) bool {
	for _, c := range a.SelectedChoices {
		if c == choice {
			return true
		}
	}
	return false
}

// Recommendation is one scored suggestion returned by the backend.
type Recommendation struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// RecommendationResponse is the body returned by the recommend endpoint.
type RecommendationResponse struct {
	QuerySummary    string           `json:"query_summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Request is the body posted to the recommend endpoint.
type Request struct {
	Name    string              `json:"name"`
	Answers map[string][]string `json:"answers"`
}

// FormatScore renders a 0..1 score as a percentage with one decimal place.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}
