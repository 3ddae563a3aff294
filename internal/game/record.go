package game

import (
	"errors"
	"time"
)

var errUnknownKind = errors.New("unknown game kind")

// Record is the stored envelope of one game instance. Exactly one state is set.
type Record struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	OwnerID   string        `json:"ownerId"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Matching  *MatchingGame `json:"matching,omitempty"`
	RPG       *RPGGame      `json:"rpg,omitempty"`
	Quiz      *QuizGame     `json:"quiz,omitempty"`
}

// Phase returns the phase of the contained game.
func (r *Record) Phase() Phase {
	switch {
	case r.Matching != nil:
		return r.Matching.Phase
	case r.RPG != nil:
		return r.RPG.Phase
	case r.Quiz != nil:
		return r.Quiz.Phase
	}
	return PhaseIdle
}

// Score is the leaderboard score of a finished game.
func (r *Record) Score() int {
	switch {
	case r.Matching != nil:
		return r.Matching.Points()
	case r.RPG != nil:
		return r.RPG.Stats.Total()
	case r.Quiz != nil:
		return r.Quiz.Score
	}
	return 0
}

// View is the client-facing rendering of a record.
type View struct {
	ID    string      `json:"id"`
	Kind  Kind        `json:"kind"`
	Phase Phase       `json:"phase"`
	State interface{} `json:"state"`
}

// View renders the contained game without leaking hidden content.
func (r *Record) View() (*View, error) {
	v := &View{ID: r.ID, Kind: r.Kind, Phase: r.Phase()}
	switch {
	case r.Kind == KindMatching && r.Matching != nil:
		v.State = r.Matching.View()
	case r.Kind == KindRPG && r.RPG != nil:
		v.State = r.RPG.View()
	case r.Kind == KindQuiz && r.Quiz != nil:
		v.State = r.Quiz.View()
	default:
		return nil, errUnknownKind
	}
	return v, nil
}
