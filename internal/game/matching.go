package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"studyhub/internal/llm"
	"studyhub/internal/model"
)

const (
	// PairCount is the number of term/definition pairs per board.
	PairCount = 8
	// FlipBackDelay is how long a mismatched pair stays face up.
	FlipBackDelay = 1000 * time.Millisecond

	pairPoints  = 10
	missPenalty = 2
)

// ErrBoardBusy is returned while a mismatched pair is still face up.
var ErrBoardBusy = fmt.Errorf("%w: cards are flipping back", model.ErrInvalidTransition)

// Pair is one generated term and its definition.
type Pair struct {
	Term       string `json:"term" validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

// PairSet is the generated content of a matching game.
type PairSet struct {
	Pairs []Pair `json:"pairs" validate:"len=8,dive"`
}

// Check rejects duplicate terms, which would make two pairs indistinguishable.
func (s *PairSet) Check() error {
	seen := make(map[string]bool, len(s.Pairs))
	for _, p := range s.Pairs {
		key := strings.ToLower(strings.TrimSpace(p.Term))
		if seen[key] {
			return fmt.Errorf("duplicate term %q", p.Term)
		}
		seen[key] = true
	}
	return nil
}

// ParsePairs decodes generated matching content.
func ParsePairs(text string) (*PairSet, error) {
	return llm.Decode[PairSet]("matching pairs", text)
}

// Face says which side of a pair a card shows.
type Face string

const (
	FaceTerm       Face = "term"
	FaceDefinition Face = "definition"
)

// Card is one tile on the board. Cards are compared by PairID, never by position.
type Card struct {
	ID      int    `json:"id"`
	PairID  int    `json:"pairId"`
	Face    Face   `json:"face"`
	Text    string `json:"text"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
}

// MatchingGame is a memory game over term/definition cards.
type MatchingGame struct {
	Machine
	Topic    string     `json:"topic"`
	Cards    []Card     `json:"cards"`
	Selected []int      `json:"selected"`
	HideAt   *time.Time `json:"hideAt,omitempty"`
	Score    int        `json:"score"`
	Moves    int        `json:"moves"`
}

// NewMatchingGame creates an idle game for topic.
func NewMatchingGame(topic string) *MatchingGame {
	return &MatchingGame{Machine: Machine{Phase: PhaseIdle}, Topic: topic}
}

// Deal lays out two shuffled cards per pair.
func (g *MatchingGame) Deal(set *PairSet, rng *rand.Rand) error {
	if len(set.Pairs) != PairCount {
		return &llm.SchemaError{Schema: "matching pairs", Reason: fmt.Sprintf("expected %d pairs, got %d", PairCount, len(set.Pairs))}
	}
	if err := g.Transition(PhaseReady); err != nil {
		return err
	}

	cards := make([]Card, 0, 2*len(set.Pairs))
	for i, p := range set.Pairs {
		cards = append(cards,
			Card{PairID: i, Face: FaceTerm, Text: p.Term},
			Card{PairID: i, Face: FaceDefinition, Text: p.Definition},
		)
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	for i := range cards {
		cards[i].ID = i
	}

	g.Cards = cards
	g.Selected = nil
	g.HideAt = nil
	g.Score = 0
	g.Moves = 0
	return nil
}

// FlipResult describes what a flip did.
type FlipResult struct {
	Matched   bool `json:"matched"`
	Mismatch  bool `json:"mismatch"`
	Completed bool `json:"completed"`
}

// Settle flips a mismatched pair back down once its deadline has passed.
func (g *MatchingGame) Settle(now time.Time) error {
	if g.HideAt == nil || now.Before(*g.HideAt) {
		return nil
	}
	for _, id := range g.Selected {
		g.Cards[id].FaceUp = false
	}
	g.Selected = nil
	g.HideAt = nil
	return g.Transition(PhaseReady)
}

// Flip turns card id face up and resolves the pair when it is the second selection.
func (g *MatchingGame) Flip(id int, now time.Time) (FlipResult, error) {
	var res FlipResult
	if err := g.Settle(now); err != nil {
		return res, err
	}
	if g.HideAt != nil {
		return res, ErrBoardBusy
	}
	if err := g.Require(PhaseReady); err != nil {
		return res, err
	}
	if id < 0 || id >= len(g.Cards) {
		return res, model.NewValidationError("card", fmt.Sprintf("must be between 0 and %d", len(g.Cards)-1))
	}
	card := &g.Cards[id]
	if card.Matched || card.FaceUp {
		return res, model.NewValidationError("card", "card is already face up")
	}

	card.FaceUp = true
	g.Selected = append(g.Selected, id)
	if len(g.Selected) < 2 {
		return res, nil
	}

	if err := g.Transition(PhaseResolving); err != nil {
		return res, err
	}
	g.Moves++
	first, second := &g.Cards[g.Selected[0]], &g.Cards[g.Selected[1]]
	if first.PairID != second.PairID {
		hideAt := now.Add(FlipBackDelay)
		g.HideAt = &hideAt
		res.Mismatch = true
		return res, nil
	}

	first.Matched, second.Matched = true, true
	g.Selected = nil
	g.Score++
	res.Matched = true
	if g.Score == len(g.Cards)/2 {
		res.Completed = true
		return res, g.Transition(PhaseScored)
	}
	return res, g.Transition(PhaseReady)
}

// MatchedCount returns the number of cards in the matched set.
func (g *MatchingGame) MatchedCount() int {
	n := 0
	for _, c := range g.Cards {
		if c.Matched {
			n++
		}
	}
	return n
}

// Points is the leaderboard value of the board: every pair found earns pairPoints
// and every mismatch gives missPenalty back. Never negative.
func (g *MatchingGame) Points() int {
	misses := g.Moves - g.Score
	p := g.Score*pairPoints - misses*missPenalty
	if p < 0 {
		return 0
	}
	return p
}

// CardView is a card as shown to the player; hidden cards carry no text.
type CardView struct {
	ID      int    `json:"id"`
	Face    Face   `json:"face,omitempty"`
	Text    string `json:"text,omitempty"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
}

// MatchingView is the client-facing board.
type MatchingView struct {
	Phase    Phase      `json:"phase"`
	Topic    string     `json:"topic"`
	Cards    []CardView `json:"cards"`
	Score    int        `json:"score"`
	Moves    int        `json:"moves"`
	Points   int        `json:"points"`
	Pairs    int        `json:"pairs"`
	HideAt   *time.Time `json:"hideAt,omitempty"`
	Complete bool       `json:"complete"`
}

// View renders the board without revealing face-down cards.
func (g *MatchingGame) View() MatchingView {
	v := MatchingView{
		Phase:    g.Phase,
		Topic:    g.Topic,
		Cards:    make([]CardView, len(g.Cards)),
		Score:    g.Score,
		Moves:    g.Moves,
		Points:   g.Points(),
		Pairs:    len(g.Cards) / 2,
		HideAt:   g.HideAt,
		Complete: g.Phase == PhaseScored,
	}
	for i, c := range g.Cards {
		cv := CardView{ID: c.ID, FaceUp: c.FaceUp, Matched: c.Matched}
		if c.FaceUp || c.Matched {
			cv.Face = c.Face
			cv.Text = c.Text
		}
		v.Cards[i] = cv
	}
	return v
}
