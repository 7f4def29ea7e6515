package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/screen"
	"github.com/abhisek/choosedb/internal/ui/components"
	"github.com/abhisek/choosedb/internal/ui/layout"
	"github.com/abhisek/choosedb/internal/ui/theme"
)

// ResultsScreen displays a recommendation response.
type ResultsScreen struct {
	resp   *questionnaire.RecommendationResponse
	header string
	offset int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen. header is an optional line shown above the
// summary, such as when the results were recorded.
func New(resp *questionnaire.RecommendationResponse, header string) *ResultsScreen {
	if resp == nil {
		resp = &questionnaire.RecommendationResponse{}
	}
	return &ResultsScreen{resp: resp, header: header}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Recommendations"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "q", Description: "Quit"},
	}
}

// Response returns the displayed recommendation.
func (s *ResultsScreen) Response() *questionnaire.RecommendationResponse {
	return s.resp
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "q":
		return s, tea.Quit
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.resp.Recommendations)-1 {
			s.offset++
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")
	if s.header != "" {
		b.WriteString(theme.Hint.Render(s.header))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Title.Render("Summary"))
	b.WriteString("\n")
	summary := s.resp.QuerySummary
	if summary == "" {
		summary = "No summary provided."
	}
	b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(summary))
	b.WriteString("\n\n")

	if len(s.resp.Recommendations) == 0 {
		b.WriteString(theme.Hint.Render("No recommendations returned."))
		return indent(b.String(), width, cw)
	}

	b.WriteString(theme.Title.Render(fmt.Sprintf("Recommendations (%d)", len(s.resp.Recommendations))))
	b.WriteString("\n\n")
	for i, rec := range s.resp.Recommendations[s.offset:] {
		b.WriteString(renderRecommendation(s.offset+i+1, rec, cw))
		b.WriteString("\n")
	}

	return indent(b.String(), width, cw)
}

func renderRecommendation(rank int, rec questionnaire.Recommendation, width int) string {
	name := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("%d. %s", rank, rec.Name))

	body := name + "\n" + components.ScoreBar(rec.Score, min(width-4, 40))
	if rec.Explanation != "" {
		body += "\n" + lipgloss.NewStyle().Width(width-4).Foreground(theme.TextDim).Render(rec.Explanation)
	}
	return theme.Card.Padding(0, 1).Width(width).Render(body)
}

// indent centers a block of content width cw inside width.
func indent(s string, width, cw int) string {
	pad := max((width-cw)/2, 0)
	return lipgloss.NewStyle().PaddingLeft(pad).Render(s)
}
