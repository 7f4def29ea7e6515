package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/choosedb/internal/questionnaire"
	"github.com/abhisek/choosedb/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	result += renderBar(barWidth, p.Percent, theme.ProgressFilled)

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(clamp01(p.Percent)*100)))
	}

	return result
}

// ScoreBar renders a recommendation score as a bar followed by its
// percentage with one decimal place.
func ScoreBar(score float64, width int) string {
	label := questionnaire.FormatScore(score)
	barWidth := max(width-len(label)-2, 4)
	return renderBar(barWidth, score, theme.ScoreFilled) + "  " +
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(label)
}

func renderBar(width int, fraction float64, filledStyle lipgloss.Style) string {
	filled := int(float64(width) * clamp01(fraction))
	return filledStyle.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", width-filled))
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}
