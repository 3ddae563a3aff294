// Package game holds the mini-game state machines: matching cards, text RPG and quiz.
//
// Every game moves through the same phases:
//
//	idle -> loading -> ready -> resolving -> scored
//
// loading falls back to idle when content generation fails, and resolving returns to
// ready when a move settles without ending the game. The machines are pure: callers
// supply generated content, the clock and the RNG.
package game

import (
	"fmt"

	"studyhub/internal/model"
)

// Kind names a game type.
type Kind string

const (
	KindMatching Kind = "matching"
	KindRPG      Kind = "rpg"
	KindQuiz     Kind = "quiz"
)

// ParseKind validates a kind from a URL or request.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMatching, KindRPG, KindQuiz:
		return k, nil
	}
	return "", model.NewValidationError("kind", "must be one of: matching rpg quiz")
}

// Phase is the state of a game.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseReady     Phase = "ready"
	PhaseResolving Phase = "resolving"
	PhaseScored    Phase = "scored"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseLoading},
	PhaseLoading:   {PhaseReady, PhaseIdle},
	PhaseReady:     {PhaseResolving, PhaseScored},
	PhaseResolving: {PhaseReady, PhaseScored},
}

// CanTransition reports whether the edge p -> to exists.
func (p Phase) CanTransition(to Phase) bool {
	for _, next := range transitions[p] {
		if next == to {
			return true
		}
	}
	return false
}

// Machine tracks the phase of one game.
type Machine struct {
	Phase Phase `json:"phase"`
}

// Transition moves to the next phase or fails with model.ErrInvalidTransition.
func (m *Machine) Transition(to Phase) error {
	from := m.Phase
	if from == "" {
		from = PhaseIdle
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, to)
	}
	m.Phase = to
	return nil
}

// Require fails unless the machine is in phase p.
func (m *Machine) Require(p Phase) error {
	if m.Phase != p {
		return fmt.Errorf("%w: game is %s, not %s", model.ErrInvalidTransition, m.Phase, p)
	}
	return nil
}
