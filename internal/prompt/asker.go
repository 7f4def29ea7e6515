package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// ErrAborted is returned when the user leaves a form early.
var ErrAborted = errors.New("questionnaire aborted")

// Asker collects one answer at a time from the user.
type Asker interface {
	// AskSingle returns one of q.Choices. current is the preselected value.
	AskSingle(ctx context.Context, q questionnaire.Question, current string) (string, error)

	// AskMulti returns a non-empty subset of q.Choices.
	AskMulti(ctx context.Context, q questionnaire.Question, current []string) ([]string, error)

	// AskText returns a non-blank answer.
	AskText(ctx context.Context, q questionnaire.Question, current string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title string) (bool, error)
}

// HuhAsker asks questions with charmbracelet/huh forms.
type HuhAsker struct {
	// Accessible switches huh to plain line prompts for screen readers
	// and dumb terminals.
	Accessible bool

	In  io.Reader
	Out io.Writer
}

var _ Asker = (*HuhAsker)(nil)

func (h *HuhAsker) AskSingle(ctx context.Context, q questionnaire.Question, current string) (string, error) {
	value := current
	field := huh.NewSelect[string]().
		Title(q.Text).
		Description("Select one.").
		Options(huh.NewOptions(q.Choices...)...).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (h *HuhAsker) AskMulti(ctx context.Context, q questionnaire.Question, current []string) ([]string, error) {
	value := append([]string(nil), current...)
	field := huh.NewMultiSelect[string]().
		Title(q.Text).
		Description("Select all that apply.").
		Options(huh.NewOptions(q.Choices...)...).
		Validate(func(v []string) error {
			if len(v) == 0 {
				return errors.New("select at least one option")
			}
			return nil
		}).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return nil, err
	}
	return value, nil
}

func (h *HuhAsker) AskText(ctx context.Context, q questionnaire.Question, current string) (string, error) {
	value := current
	field := huh.NewInput().
		Title(q.Text).
		Placeholder("Type your answer...").
		Validate(func(v string) error {
			if strings.TrimSpace(v) == "" {
				return errors.New("an answer is required")
			}
			return nil
		}).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (h *HuhAsker) Confirm(ctx context.Context, title string) (bool, error) {
	value := true
	field := huh.NewConfirm().
		Title(title).
		Value(&value)
	if err := h.run(ctx, field); err != nil {
		return false, err
	}
	return value, nil
}

func (h *HuhAsker) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(h.Accessible).
		WithShowHelp(!h.Accessible)
	if h.In != nil {
		form = form.WithInput(h.In)
	}
	if h.Out != nil {
		form = form.WithOutput(h.Out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
