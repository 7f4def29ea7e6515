package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/router"
	"github.com/abhisek/choosedb/internal/screen"
	"github.com/abhisek/choosedb/internal/screens/results"
	"github.com/abhisek/choosedb/internal/store"
	"github.com/abhisek/choosedb/internal/ui/layout"
	"github.com/abhisek/choosedb/internal/ui/theme"
)

// DefaultLimit is how many submissions are listed when no limit is given.
const DefaultLimit = 50

type historyLoadedMsg struct {
	Submissions []store.SubmissionRecord
	Err         error
}

// HistoryScreen lists past submissions.
type HistoryScreen struct {
	repo        store.SubmissionRepo
	limit       int
	submissions []store.SubmissionRecord
	selected    int
	loaded      bool
	errMsg      string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.SubmissionRepo, limit int) *HistoryScreen {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &HistoryScreen{repo: repo, limit: limit}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		subs, err := s.repo.Recent(context.Background(), store.QueryOpts{Limit: s.limit})
		return historyLoadedMsg{Submissions: subs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.submissions = msg.Submissions
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q":
			return s, tea.Quit
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.submissions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.submissions) {
				rec := s.submissions[s.selected]
				detail := results.New(toResponse(rec), "Recorded "+rec.Timestamp.Format("Jan 02, 2006 15:04"))
				return s, router.Push(detail)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.submissions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No submissions yet. Run choosedb to get a recommendation.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sub := range s.submissions {
		top := "no recommendations"
		if len(sub.Recommendations) > 0 {
			r := sub.Recommendations[0]
			top = fmt.Sprintf("%s %s", r.Name, questionnaire.FormatScore(r.Score))
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %d answers  %s",
			prefix, sub.Timestamp.Format("Jan 02, 2006 15:04"), len(sub.Answers), top)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if i == s.selected && sub.QuerySummary != "" {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render(truncate(sub.QuerySummary, max(width-8, 10)))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func toResponse(rec store.SubmissionRecord) *questionnaire.RecommendationResponse {
	recs := make([]questionnaire.Recommendation, len(rec.Recommendations))
	for i, r := range rec.Recommendations {
		recs[i] = questionnaire.Recommendation{Name: r.Name, Score: r.Score, Explanation: r.Explanation}
	}
	return &questionnaire.RecommendationResponse{
		QuerySummary:    rec.QuerySummary,
		Recommendations: recs,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
