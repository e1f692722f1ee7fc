package workshop

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrUnknownDay   = errors.New("no such day")
	ErrUnknownPhase = errors.New("no such phase")
)

// Position addresses a module: Day is 1-based, Phase and Module are 0-based.
type Position struct {
	Day    int
	Phase  int
	Module int
}

// Navigator walks the content tree. Every transition resets the timer.
type Navigator struct {
	mu        sync.Mutex
	content   *Content
	timer     *Timer
	pos       Position
	completed map[string]bool
	notes     string
}

// NewNavigator starts at the first module of day 1. timer may be nil.
func NewNavigator(content *Content, timer *Timer) *Navigator {
	return &Navigator{
		content:   content,
		timer:     timer,
		pos:       Position{Day: 1},
		completed: map[string]bool{},
	}
}

func (n *Navigator) Position() Position {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pos
}

// Current returns the module under the cursor.
func (n *Navigator) Current() Module {
	n.mu.Lock()
	defer n.mu.Unlock()
	m, _ := n.content.Module(n.pos)
	return m
}

// Next moves to the following module, crossing phase and day boundaries.
// It reports false when already on the last module.
func (n *Navigator) Next() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetTimer()

	day, _ := n.content.Day(n.pos.Day)
	phase := day.Phases[n.pos.Phase]
	switch {
	case n.pos.Module < len(phase.Modules)-1:
		n.pos.Module++
	case n.pos.Phase < len(day.Phases)-1:
		n.pos = Position{Day: n.pos.Day, Phase: n.pos.Phase + 1}
	case n.pos.Day < len(n.content.Days()):
		n.pos = Position{Day: n.pos.Day + 1}
	default:
		return false
	}
	return true
}

// Previous mirrors Next. It reports false when already on the first module.
func (n *Navigator) Previous() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetTimer()

	day, _ := n.content.Day(n.pos.Day)
	switch {
	case n.pos.Module > 0:
		n.pos.Module--
	case n.pos.Phase > 0:
		prev := day.Phases[n.pos.Phase-1]
		n.pos = Position{Day: n.pos.Day, Phase: n.pos.Phase - 1, Module: len(prev.Modules) - 1}
	case n.pos.Day > 1:
		prevDay, _ := n.content.Day(n.pos.Day - 1)
		last := len(prevDay.Phases) - 1
		n.pos = Position{Day: prevDay.Number, Phase: last, Module: len(prevDay.Phases[last].Modules) - 1}
	default:
		return false
	}
	return true
}

// SelectDay jumps to the first module of a day.
func (n *Navigator) SelectDay(day int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.content.Day(day); !ok {
		return ErrUnknownDay
	}
	n.resetTimer()
	n.pos = Position{Day: day}
	return nil
}

// SelectPhase jumps to the first module of a phase of the current day.
func (n *Navigator) SelectPhase(phase int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	day, _ := n.content.Day(n.pos.Day)
	if phase < 0 || phase >= len(day.Phases) {
		return ErrUnknownPhase
	}
	n.resetTimer()
	n.pos = Position{Day: n.pos.Day, Phase: phase}
	return nil
}

// ToggleComplete flips the completed mark of a module and returns the new state.
func (n *Navigator) ToggleComplete(moduleID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.completed[moduleID] {
		delete(n.completed, moduleID)
		return false
	}
	n.completed[moduleID] = true
	return true
}

func (n *Navigator) IsComplete(moduleID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.completed[moduleID]
}

// Completed lists completed module ids in sorted order.
func (n *Navigator) Completed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.completed))
	for id := range n.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Notes are kept for the session only.
func (n *Navigator) Notes() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notes
}

func (n *Navigator) SetNotes(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = s
}

func (n *Navigator) resetTimer() {
	if n.timer != nil {
		n.timer.Reset()
	}
}
