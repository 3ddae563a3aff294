package game

import (
	"fmt"

	"studyhub/internal/llm"
	"studyhub/internal/model"
)

// ChoicesPerScene is the fixed size of every scene's choice set.
const ChoicesPerScene = 3

// Effects are the stat deltas a choice declares. Pointers distinguish 0 from missing.
type Effects struct {
	Knowledge  *int `json:"knowledge" validate:"required"`
	Wisdom     *int `json:"wisdom" validate:"required"`
	Experience *int `json:"experience" validate:"required"`
}

// Choice is one branch the player can take.
type Choice struct {
	Text    string  `json:"text" validate:"required"`
	Effects Effects `json:"effects"`
}

// Scene is one generated story step.
type Scene struct {
	Story   string   `json:"story" validate:"required"`
	Choices []Choice `json:"choices" validate:"len=3,dive"`
}

// ParseScene decodes a generated scene.
func ParseScene(text string) (*Scene, error) {
	return llm.Decode[Scene]("story scene", text)
}

// Stats accumulate additively from chosen branches.
type Stats struct {
	Knowledge  int `json:"knowledge"`
	Wisdom     int `json:"wisdom"`
	Experience int `json:"experience"`
}

// Add applies e to the stats.
func (s *Stats) Add(e Effects) {
	s.Knowledge += deref(e.Knowledge)
	s.Wisdom += deref(e.Wisdom)
	s.Experience += deref(e.Experience)
}

// Total is the sum of all stats.
func (s Stats) Total() int {
	return s.Knowledge + s.Wisdom + s.Experience
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// RPGGame is a branching text adventure about a study topic.
type RPGGame struct {
	Machine
	Topic      string   `json:"topic"`
	Transcript []string `json:"transcript"`
	Scene      *Scene   `json:"scene,omitempty"`
	Stats      Stats    `json:"stats"`
	Pending    *int     `json:"pending,omitempty"`
	Turns      int      `json:"turns"`
}

// NewRPGGame creates an idle adventure for topic.
func NewRPGGame(topic string) *RPGGame {
	return &RPGGame{Machine: Machine{Phase: PhaseIdle}, Topic: topic}
}

// Choose starts resolving choice i of the current scene and returns it.
func (g *RPGGame) Choose(i int) (*Choice, error) {
	if err := g.Require(PhaseReady); err != nil {
		return nil, err
	}
	if g.Scene == nil || i < 0 || i >= len(g.Scene.Choices) {
		return nil, model.NewValidationError("choice", fmt.Sprintf("must be between 0 and %d", ChoicesPerScene-1))
	}
	if err := g.Transition(PhaseResolving); err != nil {
		return nil, err
	}
	g.Pending = &i
	return &g.Scene.Choices[i], nil
}

// Present shows the next scene. When a choice is pending its effects are applied first.
func (g *RPGGame) Present(next *Scene) error {
	if len(next.Choices) != ChoicesPerScene {
		return &llm.SchemaError{Schema: "story scene", Reason: fmt.Sprintf("expected %d choices, got %d", ChoicesPerScene, len(next.Choices))}
	}
	if err := g.Transition(PhaseReady); err != nil {
		return err
	}
	if g.Pending != nil && g.Scene != nil {
		chosen := g.Scene.Choices[*g.Pending]
		g.Stats.Add(chosen.Effects)
		g.Transcript = append(g.Transcript, "> "+chosen.Text)
		g.Turns++
	}
	g.Pending = nil
	g.Scene = next
	g.Transcript = append(g.Transcript, next.Story)
	return nil
}

// Abandon drops a pending choice after the next scene could not be generated.
func (g *RPGGame) Abandon() error {
	if g.Phase == PhaseLoading {
		return g.Transition(PhaseIdle)
	}
	if err := g.Transition(PhaseReady); err != nil {
		return err
	}
	g.Pending = nil
	return nil
}

// Finish ends the adventure with the current stats.
func (g *RPGGame) Finish() error {
	return g.Transition(PhaseScored)
}

// RPGView is the client-facing adventure state.
type RPGView struct {
	Phase      Phase    `json:"phase"`
	Topic      string   `json:"topic"`
	Story      string   `json:"story"`
	Choices    []string `json:"choices"`
	Transcript []string `json:"transcript"`
	Stats      Stats    `json:"stats"`
	Turns      int      `json:"turns"`
}

// View renders the adventure; choice effects stay hidden.
func (g *RPGGame) View() RPGView {
	v := RPGView{
		Phase:      g.Phase,
		Topic:      g.Topic,
		Choices:    []string{},
		Transcript: g.Transcript,
		Stats:      g.Stats,
		Turns:      g.Turns,
	}
	if g.Scene != nil {
		v.Story = g.Scene.Story
		for _, c := range g.Scene.Choices {
			v.Choices = append(v.Choices, c.Text)
		}
	}
	return v
}
