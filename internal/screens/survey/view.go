package survey

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/ui/components"
	"github.com/abhisek/choosedb/internal/ui/layout"
	"github.com/abhisek/choosedb/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *SurveyScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var body string
	switch s.state.Phase {
	case questionnaire.PhaseLoading:
		body = s.renderBusy("Loading questions...")
	case questionnaire.PhaseEmpty:
		body = s.renderEmpty(cw)
	default:
		body = s.renderQuestion(cw)
	}

	pad := max((width-cw)/2, 0)
	return lipgloss.NewStyle().PaddingLeft(pad).Render("\n" + body)
}

func (s *SurveyScreen) renderBusy(label string) string {
	frame := spinnerFrames[s.spinnerFrame%len(spinnerFrames)]
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(frame) + " " +
		theme.Hint.Render(label)
}

func (s *SurveyScreen) renderEmpty(width int) string {
	var b strings.Builder
	if s.state.Err != nil {
		b.WriteString(renderBanner(fmt.Sprintf("Could not load questions: %v", s.state.Err), "Press r to retry.", width))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Subtitle.Render("No questions available"))
	return b.String()
}

func (s *SurveyScreen) renderQuestion(width int) string {
	q, ok := s.state.CurrentQuestion()
	if !ok {
		return ""
	}
	submitting := s.state.Phase == questionnaire.PhaseSubmitting

	var b strings.Builder

	// Progress.
	n := len(s.state.Questions)
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", s.state.Cursor+1, n),
		s.state.Progress(), true, width,
	).View())
	b.WriteString("\n\n")

	if s.state.Err != nil && !submitting {
		b.WriteString(renderBanner(fmt.Sprintf("Could not get recommendations: %v", s.state.Err), "Press Enter to try again.", width))
		b.WriteString("\n\n")
	}

	// Question text.
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(modeHint(q)))
	b.WriteString("\n\n")

	// Answer area.
	a, _ := s.state.CurrentAnswer()
	if q.IsFreeText() {
		if submitting {
			b.WriteString(theme.Disabled.Render("› " + a.TextInput))
		} else {
			b.WriteString(s.input.SetWidth(max(width-4, 10)).View())
		}
		b.WriteString("\n")
	} else {
		b.WriteString(s.choices.View(a.IsSelected, submitting))
		if q.Mode == questionnaire.ModeMulti {
			b.WriteString(components.SelectionSummary(a.SelectedChoices))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	// Buttons.
	if submitting {
		b.WriteString(s.renderBusy("Getting recommendations..."))
		return b.String()
	}

	prev := components.NewButton("Previous", false, s.state.IsFirst())
	label := "Next"
	if s.state.IsLast() {
		label = "Submit"
	}
	answered := s.state.HasCurrentAnswer()
	next := components.NewButton(label, answered, !answered)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, prev.View(), "  ", next.View()))

	return b.String()
}

func modeHint(q questionnaire.Question) string {
	switch q.Mode {
	case questionnaire.ModeMulti:
		return "Select all that apply."
	case questionnaire.ModeSingle:
		return "Select one."
	default:
		return "Type your answer."
	}
}

func renderBanner(msg, action string, width int) string {
	return theme.Banner.Width(width).Render(msg + "\n" + action)
}
