package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"studyhub/internal/cache"
	"studyhub/internal/game"
	"studyhub/internal/model"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	nextID   int
	setCalls int
	err      error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.Session{}}
}

func (r *memSessionRepo) Create(_ context.Context, s *model.Session) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.nextID++
	id := fmt.Sprintf("s%d", r.nextID)
	cp := *s
	cp.ID = id
	r.sessions[id] = &cp
	return id, nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) list(match func(*model.Session) bool) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*model.Session
	for _, s := range r.sessions {
		if match(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (r *memSessionRepo) ListByTutor(_ context.Context, tutorID string) ([]*model.Session, error) {
	return r.list(func(s *model.Session) bool { return s.TutorID == tutorID })
}

func (r *memSessionRepo) ListByParticipant(_ context.Context, userID string) ([]*model.Session, error) {
	return r.list(func(s *model.Session) bool { return s.IsParticipant(userID) })
}

func (r *memSessionRepo) SetMeeting(_ context.Context, id string, m *model.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls++
	s, ok := r.sessions[id]
	if !ok {
		return model.ErrNotFound
	}
	s.SetMeeting(m)
	return nil
}

func (r *memSessionRepo) put(s *model.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
}

type memProfileRepo struct {
	users  map[string]*model.UserProfile
	tutors []*model.TutorProfile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{users: map[string]*model.UserProfile{}}
}

func (r *memProfileRepo) GetUser(_ context.Context, id string) (*model.UserProfile, error) {
	return r.users[id], nil
}

func (r *memProfileRepo) GetTutor(_ context.Context, id string) (*model.TutorProfile, error) {
	for _, t := range r.tutors {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memProfileRepo) ListTutors(context.Context) ([]*model.TutorProfile, error) {
	return append([]*model.TutorProfile(nil), r.tutors...), nil
}

func (r *memProfileRepo) UpsertUser(_ context.Context, u *model.UserProfile) error {
	r.users[u.ID] = u
	return nil
}

func (r *memProfileRepo) UpsertTutor(_ context.Context, t *model.TutorProfile) error {
	r.tutors = append(r.tutors, t)
	return nil
}

type memSessionCache struct {
	mu      sync.Mutex
	entries map[string]model.Session
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{entries: map[string]model.Session{}}
}

func (c *memSessionCache) Set(_ context.Context, s *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.ID] = *s
	return nil
}

func (c *memSessionCache) Get(_ context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *memSessionCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

type memGameCache struct {
	mu       sync.Mutex
	games    map[string][]byte
	inflight map[string]bool
}

func newMemGameCache() *memGameCache {
	return &memGameCache{games: map[string][]byte{}, inflight: map[string]bool{}}
}

// Save and Get round-trip through JSON like the Redis cache does.
func (c *memGameCache) Save(_ context.Context, rec *game.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	c.games[rec.ID] = data
	return nil
}

func (c *memGameCache) Get(_ context.Context, id string) (*game.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.games[id]
	if !ok {
		return nil, nil
	}
	var rec game.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *memGameCache) Acquire(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[id] {
		return false, nil
	}
	c.inflight[id] = true
	return true, nil
}

func (c *memGameCache) Release(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	return nil
}

type memLeaderboard struct {
	best map[game.Kind]map[string]int
}

func newMemLeaderboard() *memLeaderboard {
	return &memLeaderboard{best: map[game.Kind]map[string]int{}}
}

func (l *memLeaderboard) RecordBest(_ context.Context, kind game.Kind, userID string, score int) error {
	if l.best[kind] == nil {
		l.best[kind] = map[string]int{}
	}
	if cur, ok := l.best[kind][userID]; !ok || score > cur {
		l.best[kind][userID] = score
	}
	return nil
}

func (l *memLeaderboard) GetTop(_ context.Context, kind game.Kind, limit int) ([]cache.LeaderboardEntry, error) {
	var out []cache.LeaderboardEntry
	for id, score := range l.best[kind] {
		out = append(out, cache.LeaderboardEntry{UserID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID > out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (l *memLeaderboard) GetEntry(ctx context.Context, kind game.Kind, userID string) (*cache.LeaderboardEntry, error) {
	all, err := l.GetTop(ctx, kind, len(l.best[kind]))
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, nil
}

// stubModel replies with queued responses and records the prompts it saw.
type stubModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (m *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, tc.Text)
			}
		}
	}
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("stub model has no response queued")
	}
	text := m.responses[0]
	m.responses = m.responses[1:]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *stubModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

type fakeProvisioner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakeProvisioner) CreateMeeting(_ context.Context, req *model.MeetingRequest) (*model.Meeting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	id := fmt.Sprintf("9%08d", p.calls)
	return &model.Meeting{
		MeetingID: id,
		JoinURL:   "https://zoom.example/j/" + id,
		StartURL:  "https://zoom.example/s/" + id,
	}, nil
}

type fakeSigner struct{}

func (fakeSigner) Sign(meetingNumber string, role model.MeetingRole) (string, error) {
	return fmt.Sprintf("sig-%s-%d", meetingNumber, role), nil
}
