package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"studyhub/internal/cache"
	"studyhub/internal/game"
	"studyhub/internal/llm"
	"studyhub/internal/metrics"
	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

const defaultLeaderboardSize = 10

// StartGameInput starts a new game on a topic.
type StartGameInput struct {
	Topic string `json:"topic" validate:"required,max=200"`
	Count int    `json:"count,omitempty" validate:"omitempty,min=1,max=20"` // quiz only
}

// GameService runs the mini-games. Game state lives in Redis; every mutating call
// holds the game's in-flight flag so a second submit is rejected while one runs.
type GameService struct {
	model       llms.Model
	gameCache   cache.GameCache
	leaderboard cache.LeaderboardCache
	profileRepo repository.ProfileRepo
	now         func() time.Time
	newRNG      func() *rand.Rand
	log         *zap.Logger
}

// NewGameService creates a new game service
func NewGameService(
	m llms.Model,
	gameCache cache.GameCache,
	leaderboard cache.LeaderboardCache,
	profileRepo repository.ProfileRepo,
	log *zap.Logger,
) *GameService {
	return &GameService{
		model:       m,
		gameCache:   gameCache,
		leaderboard: leaderboard,
		profileRepo: profileRepo,
		now:         time.Now,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		log: log.Named("games"),
	}
}

// Start creates a game of kind and loads its first content. When generation fails the
// game is kept in the idle phase and its view is returned alongside the error so the
// caller can retry with Reload.
func (s *GameService) Start(ctx context.Context, p *model.Principal, kind game.Kind, in *StartGameInput) (*game.View, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &game.Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   p.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	topic := strings.TrimSpace(in.Topic)
	switch kind {
	case game.KindMatching:
		rec.Matching = game.NewMatchingGame(topic)
	case game.KindRPG:
		rec.RPG = game.NewRPGGame(topic)
	case game.KindQuiz:
		rec.Quiz = game.NewQuizGame(topic, in.Count)
	default:
		return nil, model.NewValidationError("kind", "unknown game kind")
	}
	if err := s.gameCache.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	s.log.Info("game started", zap.String("game", rec.ID), zap.String("kind", string(kind)), zap.String("owner", p.UserID))
	return s.mutate(ctx, p, rec.ID, func(rec *game.Record) error {
		return s.load(ctx, rec)
	})
}

// Reload retries content generation for a game left idle by a failed load.
func (s *GameService) Reload(ctx context.Context, p *model.Principal, id string) (*game.View, error) {
	return s.mutate(ctx, p, id, func(rec *game.Record) error {
		return s.load(ctx, rec)
	})
}

// Get returns the caller's game.
func (s *GameService) Get(ctx context.Context, p *model.Principal, id string) (*game.View, error) {
	rec, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if rec.Matching != nil {
		// a pending flip-back is applied on read
		if err := rec.Matching.Settle(s.now()); err != nil {
			return nil, err
		}
	}
	return rec.View()
}

// Flip turns a card on a matching board.
func (s *GameService) Flip(ctx context.Context, p *model.Principal, id string, card int) (*game.View, game.FlipResult, error) {
	var res game.FlipResult
	view, err := s.mutate(ctx, p, id, func(rec *game.Record) error {
		if rec.Matching == nil {
			return wrongKind(rec, game.KindMatching)
		}
		r, err := rec.Matching.Flip(card, s.now())
		if err != nil {
			return err
		}
		res = r
		if r.Completed {
			s.recordScore(ctx, rec)
		}
		return nil
	})
	return view, res, err
}

// Choose picks a branch in the current RPG scene and generates the next scene.
// A failed generation returns the game to the scene it was in.
func (s *GameService) Choose(ctx context.Context, p *model.Principal, id string, choice int) (*game.View, error) {
	return s.mutate(ctx, p, id, func(rec *game.Record) error {
		if rec.RPG == nil {
			return wrongKind(rec, game.KindRPG)
		}
		chosen, err := rec.RPG.Choose(choice)
		if err != nil {
			return err
		}
		scene, err := s.generateScene(ctx, rec.RPG, chosen)
		if err == nil {
			err = rec.RPG.Present(scene)
		}
		if err != nil {
			if aerr := rec.RPG.Abandon(); aerr != nil {
				return errors.Join(err, aerr)
			}
			return err
		}
		return nil
	})
}

// Finish ends an RPG with its current stats.
func (s *GameService) Finish(ctx context.Context, p *model.Principal, id string) (*game.View, error) {
	return s.mutate(ctx, p, id, func(rec *game.Record) error {
		if rec.RPG == nil {
			return wrongKind(rec, game.KindRPG)
		}
		if err := rec.RPG.Finish(); err != nil {
			return err
		}
		s.recordScore(ctx, rec)
		return nil
	})
}

// Submit grades a quiz. answers maps question index to the selected option text.
func (s *GameService) Submit(ctx context.Context, p *model.Principal, id string, answers map[int]string) (*game.View, error) {
	return s.mutate(ctx, p, id, func(rec *game.Record) error {
		if rec.Quiz == nil {
			return wrongKind(rec, game.KindQuiz)
		}
		if err := rec.Quiz.Submit(answers); err != nil {
			return err
		}
		s.recordScore(ctx, rec)
		return nil
	})
}

// Standings is the top of a leaderboard plus the caller's own entry when they have one.
type Standings struct {
	Entries []cache.LeaderboardEntry `json:"entries"`
	Me      *cache.LeaderboardEntry  `json:"me,omitempty"`
}

// Leaderboard returns the best scores for a game kind.
func (s *GameService) Leaderboard(ctx context.Context, p *model.Principal, kind game.Kind, limit int) (*Standings, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardSize
	}
	entries, err := s.leaderboard.GetTop(ctx, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	for i := range entries {
		entries[i].Name = s.displayName(ctx, entries[i].UserID)
	}

	out := &Standings{Entries: entries}
	if p != nil {
		me, err := s.leaderboard.GetEntry(ctx, kind, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get leaderboard rank: %w", err)
		}
		if me != nil {
			me.Name = s.displayName(ctx, me.UserID)
		}
		out.Me = me
	}
	return out, nil
}

func (s *GameService) displayName(ctx context.Context, userID string) string {
	user, err := s.profileRepo.GetUser(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.Name
}

// mutate runs fn on the caller's game while holding its in-flight flag, then saves
// the game whatever fn returned so fallback transitions persist.
func (s *GameService) mutate(ctx context.Context, p *model.Principal, id string, fn func(*game.Record) error) (*game.View, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	ok, err := s.gameCache.Acquire(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock game: %w", err)
	}
	if !ok {
		return nil, model.ErrInFlight
	}
	// the request may be gone by the time generation returns
	bg := context.WithoutCancel(ctx)
	defer func() {
		if err := s.gameCache.Release(bg, id); err != nil {
			s.log.Warn("game unlock failed", zap.String("game", id), zap.Error(err))
		}
	}()

	rec, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	ferr := fn(rec)
	rec.UpdatedAt = s.now().UTC()
	if err := s.gameCache.Save(bg, rec); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	view, verr := rec.View()
	if ferr != nil {
		return view, ferr
	}
	return view, verr
}

func (s *GameService) owned(ctx context.Context, p *model.Principal, id string) (*game.Record, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	rec, err := s.gameCache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if rec == nil {
		return nil, model.ErrNotFound
	}
	if rec.OwnerID != p.UserID {
		return nil, model.ErrForbidden
	}
	return rec, nil
}

// load moves an idle game through loading to ready, or back to idle on failure.
func (s *GameService) load(ctx context.Context, rec *game.Record) error {
	var m *game.Machine
	switch {
	case rec.Matching != nil:
		m = &rec.Matching.Machine
	case rec.RPG != nil:
		m = &rec.RPG.Machine
	case rec.Quiz != nil:
		m = &rec.Quiz.Machine
	default:
		return model.NewValidationError("kind", "unknown game kind")
	}
	if err := m.Transition(game.PhaseLoading); err != nil {
		return err
	}

	err := s.fill(ctx, rec)
	if err != nil {
		s.log.Warn("game content generation failed", zap.String("game", rec.ID), zap.Error(err))
		if m.Phase == game.PhaseLoading {
			if terr := m.Transition(game.PhaseIdle); terr != nil {
				return errors.Join(err, terr)
			}
		}
	}
	return err
}

func (s *GameService) fill(ctx context.Context, rec *game.Record) error {
	switch {
	case rec.Matching != nil:
		text, err := s.generate(ctx, matchingPrompt(rec.Matching.Topic))
		if err != nil {
			return err
		}
		set, err := game.ParsePairs(text)
		if err != nil {
			return err
		}
		return rec.Matching.Deal(set, s.newRNG())
	case rec.RPG != nil:
		scene, err := s.generateScene(ctx, rec.RPG, nil)
		if err != nil {
			return err
		}
		return rec.RPG.Present(scene)
	default:
		text, err := s.generate(ctx, quizPrompt(rec.Quiz.Topic, rec.Quiz.Count))
		if err != nil {
			return err
		}
		set, err := game.ParseQuestions(text, rec.Quiz.Count)
		if err != nil {
			return err
		}
		return rec.Quiz.Load(set)
	}
}

func (s *GameService) generateScene(ctx context.Context, g *game.RPGGame, chosen *game.Choice) (*game.Scene, error) {
	text, err := s.generate(ctx, scenePrompt(g, chosen))
	if err != nil {
		return nil, err
	}
	return game.ParseScene(text)
}

func (s *GameService) generate(ctx context.Context, prompt string) (string, error) {
	text, err := llm.Generate(ctx, s.model, prompt, llms.WithTemperature(0.7))
	metrics.ObserveCall(metrics.Games, err)
	if err != nil {
		return "", fmt.Errorf("failed to generate game content: %w", err)
	}
	return text, nil
}

// recordScore keeps the owner's best score. Leaderboard failures do not fail the move.
func (s *GameService) recordScore(ctx context.Context, rec *game.Record) {
	if err := s.leaderboard.RecordBest(context.WithoutCancel(ctx), rec.Kind, rec.OwnerID, rec.Score()); err != nil {
		s.log.Warn("leaderboard update failed", zap.String("game", rec.ID), zap.Error(err))
	}
}

func wrongKind(rec *game.Record, want game.Kind) error {
	return fmt.Errorf("%w: game %s is a %s game, not %s", model.ErrInvalidTransition, rec.ID, rec.Kind, want)
}

func matchingPrompt(topic string) string {
	return fmt.Sprintf(`Create a memory matching game about %q.
Generate exactly %d distinct key terms, each with a short definition of at most 15 words.
Respond with JSON only, in this shape:
{"pairs": [{"term": "...", "definition": "..."}]}`, topic, game.PairCount)
}

func quizPrompt(topic string, count int) string {
	return fmt.Sprintf(`Create a multiple-choice quiz about %q with exactly %d questions.
Each question has 4 distinct options and exactly one correct option.
Respond with JSON only, in this shape:
{"questions": [{"question": "...", "options": [{"text": "...", "isCorrect": false}], "explanation": "..."}]}`, topic, count)
}

func scenePrompt(g *game.RPGGame, chosen *game.Choice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are running an educational text adventure that teaches %q.\n", g.Topic)
	if len(g.Transcript) == 0 {
		b.WriteString("Write the opening scene.\n")
	} else {
		b.WriteString("Story so far:\n")
		for _, line := range g.Transcript {
			b.WriteString(line)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Player stats: knowledge %d, wisdom %d, experience %d.\n",
			g.Stats.Knowledge, g.Stats.Wisdom, g.Stats.Experience)
	}
	if chosen != nil {
		fmt.Fprintf(&b, "The player chose: %q. Continue the story from that choice.\n", chosen.Text)
	}
	fmt.Fprintf(&b, `Offer exactly %d choices. Each choice declares integer stat changes between -2 and 3.
Respond with JSON only, in this shape:
{"story": "...", "choices": [{"text": "...", "effects": {"knowledge": 0, "wisdom": 0, "experience": 0}}]}`, game.ChoicesPerScene)
	return b.String()
}
