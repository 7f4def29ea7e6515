package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/backend"
	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/store"
	"github.com/abhisek/choosedb/internal/ui/components"
	"github.com/abhisek/choosedb/internal/ui/theme"
)

// ErrNoQuestions is returned when the backend has no questions to ask.
var ErrNoQuestions = errors.New("no questions available")

// Options configures a line-mode questionnaire run.
type Options struct {
	Backend backend.Client
	Asker   Asker
	Out     io.Writer

	// Submissions records completed questionnaires. May be nil.
	Submissions store.SubmissionRepo

	Logger      *zap.Logger
	RequestName string
	Timeout     time.Duration
}

// Run asks every question in order, submits the answers and prints the
// recommendations. A failed submit can be retried after confirmation.
func Run(ctx context.Context, opts Options) (*questionnaire.RecommendationResponse, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ask")
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	ctx = backend.WithSession(ctx, uuid.NewString())

	state := questionnaire.NewState()
	questions, err := fetchQuestions(ctx, opts)
	if err != nil {
		logger.Warn("failed to load questions", zap.Error(err))
		return nil, fmt.Errorf("load questions: %w", err)
	}
	state = state.Loaded(questions)
	if state.Phase == questionnaire.PhaseEmpty {
		return nil, ErrNoQuestions
	}

	for {
		state, err = answerCurrent(ctx, opts.Asker, state)
		if err != nil {
			return nil, err
		}
		if !state.IsLast() {
			state = state.GoNext()
			continue
		}

		next, req, ok := state.BeginSubmit(opts.RequestName)
		if !ok {
			continue
		}
		state = next

		resp, err := recommend(ctx, opts, req)
		if err == nil {
			state = state.SubmitSucceeded(resp)
			recordSubmission(ctx, opts, logger, req, resp)
			PrintResults(opts.Out, resp)
			return resp, nil
		}

		logger.Warn("failed to get recommendations", zap.Error(err))
		state = state.SubmitFailed(err)
		lipgloss.Fprintln(opts.Out, theme.ErrorText.Render("Could not get recommendations: "+err.Error()))

		retry, cerr := opts.Asker.Confirm(ctx, "Try submitting again?")
		if cerr != nil {
			return nil, cerr
		}
		if !retry {
			return nil, err
		}
	}
}

func fetchQuestions(ctx context.Context, opts Options) ([]questionnaire.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	return opts.Backend.Questions(ctx)
}

func recommend(ctx context.Context, opts Options, req questionnaire.Request) (*questionnaire.RecommendationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	return opts.Backend.Recommend(ctx, req)
}

// answerCurrent asks the question at the cursor until it has a usable
// answer. Already answered questions are not asked again.
func answerCurrent(ctx context.Context, asker Asker, state questionnaire.State) (questionnaire.State, error) {
	q, ok := state.CurrentQuestion()
	if !ok || state.HasCurrentAnswer() {
		return state, nil
	}
	current, _ := state.CurrentAnswer()

	for ctx.Err() == nil {
		switch q.Mode {
		case questionnaire.ModeSingle:
			preselect := ""
			if len(current.SelectedChoices) > 0 {
				preselect = current.SelectedChoices[0]
			}
			choice, err := asker.AskSingle(ctx, q, preselect)
			if err != nil {
				return state, err
			}
			state = state.SelectSingleChoice(choice)

		case questionnaire.ModeMulti:
			picked, err := asker.AskMulti(ctx, q, current.SelectedChoices)
			if err != nil {
				return state, err
			}
			for _, c := range q.Choices {
				state = state.ToggleChoice(c, slices.Contains(picked, c))
			}

		default:
			text, err := asker.AskText(ctx, q, current.TextInput)
			if err != nil {
				return state, err
			}
			state = state.SetTextInput(text)
		}

		if state.HasCurrentAnswer() {
			return state, nil
		}
	}
	return state, ctx.Err()
}

func recordSubmission(ctx context.Context, opts Options, logger *zap.Logger, req questionnaire.Request, resp *questionnaire.RecommendationResponse) {
	if opts.Submissions == nil {
		return
	}
	recs := make([]store.RecommendationData, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		recs[i] = store.RecommendationData{Name: r.Name, Score: r.Score, Explanation: r.Explanation}
	}
	_, err := opts.Submissions.Save(context.WithoutCancel(ctx), store.SubmissionData{
		SessionID:       backend.SessionFrom(ctx),
		RequestName:     req.Name,
		Answers:         req.Answers,
		QuerySummary:    resp.QuerySummary,
		Recommendations: recs,
	})
	if err != nil {
		logger.Warn("failed to record submission", zap.Error(err))
	}
}

// PrintResults writes a recommendation response as text.
func PrintResults(w io.Writer, resp *questionnaire.RecommendationResponse) {
	lipgloss.Fprintln(w)
	lipgloss.Fprintln(w, theme.Title.Render("Summary"))
	lipgloss.Fprintln(w, resp.QuerySummary)
	lipgloss.Fprintln(w)

	if len(resp.Recommendations) == 0 {
		lipgloss.Fprintln(w, theme.Hint.Render("No recommendations returned."))
		return
	}
	lipgloss.Fprintln(w, theme.Title.Render("Recommendations"))
	for i, r := range resp.Recommendations {
		lipgloss.Fprintln(w)
		lipgloss.Fprintln(w, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
			Render(fmt.Sprintf("%d. %s", i+1, r.Name)))
		lipgloss.Fprintln(w, "   "+components.ScoreBar(r.Score, 36))
		if r.Explanation != "" {
			lipgloss.Fprintln(w, "   "+r.Explanation)
		}
	}
}
