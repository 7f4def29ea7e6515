package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/choosedb/internal/screen"
)

// Op is a change to the screen stack.
type Op int

const (
	// OpPush opens a screen on top of the active one.
	OpPush Op = iota
	// OpBack returns to the screen below. The root screen is never removed.
	OpBack
	// OpReplace swaps the active screen in place, e.g. survey to results.
	OpReplace
)

// NavigateMsg asks the router to change the stack. Screens emit it through
// Push, Back and Replace rather than building it directly.
type NavigateMsg struct {
	Op     Op
	Screen screen.Screen
}

// Push returns a command opening s over the active screen.
func Push(s screen.Screen) tea.Cmd {
	return navigate(NavigateMsg{Op: OpPush, Screen: s})
}

// Back returns a command closing the active screen.
func Back() tea.Cmd {
	return navigate(NavigateMsg{Op: OpBack})
}

// Replace returns a command swapping the active screen for s.
func Replace(s screen.Screen) tea.Cmd {
	return navigate(NavigateMsg{Op: OpReplace, Screen: s})
}

func navigate(msg NavigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Router owns the screen stack. The last element is the active screen and
// receives every message that is not a NavigateMsg.
type Router struct {
	stack []screen.Screen
}

// New creates a Router with root as the only screen.
func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if nav, ok := msg.(NavigateMsg); ok {
		return r.apply(nav)
	}
	top := len(r.stack) - 1
	next, cmd := r.stack[top].Update(msg)
	r.stack[top] = next
	return cmd
}

// apply changes the stack. A screen that becomes active through Push or
// Replace is initialized; one revealed by Back keeps its state.
func (r *Router) apply(nav NavigateMsg) tea.Cmd {
	switch nav.Op {
	case OpPush:
		if nav.Screen == nil {
			return nil
		}
		r.stack = append(r.stack, nav.Screen)
	case OpReplace:
		if nav.Screen == nil {
			return nil
		}
		r.stack[len(r.stack)-1] = nav.Screen
	case OpBack:
		if len(r.stack) > 1 {
			r.stack[len(r.stack)-1] = nil
			r.stack = r.stack[:len(r.stack)-1]
		}
		return nil
	default:
		return nil
	}
	return nav.Screen.Init()
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
