package survey

import (
	"time"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// questionsLoadedMsg is sent when the question fetch finishes.
type questionsLoadedMsg struct {
	Questions []questionnaire.Question
	Err       error
}

// submitDoneMsg is sent when the recommend call finishes.
type submitDoneMsg struct {
	Response     *questionnaire.RecommendationResponse
	SubmissionID string
	Err          error
}

// spinnerTickMsg is sent at short intervals to animate the busy spinner.
type spinnerTickMsg time.Time
