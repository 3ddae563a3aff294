package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/model"
)

// BucketSource lists a user's sessions grouped by status.
type BucketSource interface {
	Buckets(ctx context.Context, p *model.Principal) (model.SessionBuckets, error)
}

// Feed re-derives each connected user's session buckets on a ticker and pushes
// them when they change. Status is never cached; only the last payload sent is kept
// to suppress repeats.
type Feed struct {
	hub      *Hub
	source   BucketSource
	interval time.Duration
	log      *zap.Logger

	mu   sync.Mutex
	last map[string][]byte
}

// NewFeed creates a feed that ticks every interval
func NewFeed(hub *Hub, source BucketSource, interval time.Duration, log *zap.Logger) *Feed {
	return &Feed{
		hub:      hub,
		source:   source,
		interval: interval,
		log:      log.Named("feed"),
		last:     make(map[string][]byte),
	}
}

// Run ticks until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Tick(ctx)
		}
	}
}

// Tick pushes fresh buckets to every connected user whose buckets changed.
func (f *Feed) Tick(ctx context.Context) {
	for _, p := range f.hub.Principals() {
		f.push(ctx, p, false)
	}
}

// Push sends p's current buckets unconditionally.
func (f *Feed) Push(ctx context.Context, p *model.Principal) {
	f.push(ctx, p, true)
}

func (f *Feed) push(ctx context.Context, p *model.Principal, force bool) {
	buckets, err := f.source.Buckets(ctx, p)
	if err != nil {
		f.log.Warn("session refresh failed", zap.String("user", p.UserID), zap.Error(err))
		f.hub.SendToUser(p.UserID, MsgError, map[string]string{"error": "could not refresh sessions"})
		return
	}
	data, err := json.Marshal(buckets)
	if err != nil {
		f.log.Error("encode buckets failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	unchanged := bytes.Equal(f.last[p.UserID], data)
	f.last[p.UserID] = data
	f.mu.Unlock()
	if unchanged && !force {
		return
	}

	f.hub.SendToUser(p.UserID, MsgSessions, json.RawMessage(data))
}

// Forget drops the remembered payload of a user who disconnected.
func (f *Feed) Forget(userID string) {
	f.mu.Lock()
	delete(f.last, userID)
	f.mu.Unlock()
}
