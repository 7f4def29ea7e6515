package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/choosedb/internal/ui/theme"
)

// ChoiceList renders the options of a choice question. It holds only the
// highlight position; which options are selected is passed in at render
// time.
type ChoiceList struct {
	Options     []string
	Multi       bool
	Highlighted int
}

// NewChoiceList creates a choice list with the first option highlighted.
func NewChoiceList(options []string, multi bool) ChoiceList {
	return ChoiceList{Options: options, Multi: multi}
}

// Up moves the highlight up, stopping at the first option.
func (c ChoiceList) Up() ChoiceList {
	if c.Highlighted > 0 {
		c.Highlighted--
	}
	return c
}

// Down moves the highlight down, stopping at the last option.
func (c ChoiceList) Down() ChoiceList {
	if c.Highlighted < len(c.Options)-1 {
		c.Highlighted++
	}
	return c
}

// HighlightOption moves the highlight to the option with the given label.
func (c ChoiceList) HighlightOption(option string) ChoiceList {
	for i, o := range c.Options {
		if o == option {
			c.Highlighted = i
			break
		}
	}
	return c
}

// Current returns the highlighted option.
func (c ChoiceList) Current() (string, bool) {
	if c.Highlighted < 0 || c.Highlighted >= len(c.Options) {
		return "", false
	}
	return c.Options[c.Highlighted], true
}

// At returns the option for a 1-based shortcut number.
func (c ChoiceList) At(n int) (string, bool) {
	if n < 1 || n > len(c.Options) {
		return "", false
	}
	return c.Options[n-1], true
}

// View renders the list. isSelected reports whether an option is part of
// the current answer. When disabled the list is rendered dimmed.
func (c ChoiceList) View(isSelected func(string) bool, disabled bool) string {
	var b strings.Builder
	for i, opt := range c.Options {
		cursor := "  "
		if i == c.Highlighted && !disabled {
			cursor = "▸ "
		}

		selected := isSelected != nil && isSelected(opt)
		line := fmt.Sprintf("%s%s %d. %s", cursor, c.marker(selected), i+1, opt)

		style := theme.Unselected
		switch {
		case disabled:
			style = theme.Disabled
		case i == c.Highlighted:
			style = theme.Selected
		case selected:
			style = theme.Checked
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (c ChoiceList) marker(selected bool) string {
	if c.Multi {
		if selected {
			return "[x]"
		}
		return "[ ]"
	}
	if selected {
		return "(•)"
	}
	return "( )"
}

// SelectionSummary renders selected options as a dimmed one-liner.
func SelectionSummary(selected []string) string {
	if len(selected) == 0 {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("nothing selected")
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim).Render("selected: " + strings.Join(selected, ", "))
}
