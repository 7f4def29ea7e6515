package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/choosedb/internal/ui/layout"
)

// Screen is one full-screen view: survey, results or history. The app
// frame draws the header and footer around View.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider screens list their own keys in the footer.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider screens show a short status, such as "Q 2/5", at the
// right of the header.
type StatusProvider interface {
	Status() string
}

// Hints returns the footer hints of s, or nil when it has none.
func Hints(s Screen) []layout.KeyHint {
	if kp, ok := s.(KeyHintProvider); ok {
		return kp.KeyHints()
	}
	return nil
}

// Status returns the header status of s, or "".
func Status(s Screen) string {
	if sp, ok := s.(StatusProvider); ok {
		return sp.Status()
	}
	return ""
}
