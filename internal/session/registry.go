package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/pkg/config"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/drdonut/voicecart-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Snapshotter mirrors cart snapshots into an external store so the display
// layer can read them without hitting the engine. The redis client
// implements it; a nil snapshotter disables mirroring.
type Snapshotter interface {
	StoreCartSnapshot(ctx context.Context, sessionID, payload string, ttl time.Duration) error
	DropCartSnapshot(ctx context.Context, sessionID string) error
}

// Session owns one cart engine. The mutex enforces the single-writer
// discipline the engine requires: Apply calls within a session are
// serialized, sessions are independent.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	engine   *cart.Engine
	lastSeen time.Time
}

// Registry tracks live ordering sessions and expires idle ones.
type Registry struct {
	cfg       config.SessionConfig
	newEngine func() *cart.Engine
	snaps     Snapshotter
	metrics   *metrics.CartMetrics
	logg      *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry. The factory produces a fresh engine
// per session; snaps and m may be nil.
func NewRegistry(cfg config.SessionConfig, factory func() *cart.Engine, snaps Snapshotter, m *metrics.CartMetrics, logg *logger.Logger) *Registry {
	return &Registry{
		cfg:       cfg,
		newEngine: factory,
		snaps:     snaps,
		metrics:   m,
		logg:      logg,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new session with an empty cart.
func (r *Registry) Create(ctx context.Context) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		engine:    r.newEngine(),
		lastSeen:  now,
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	r.logg.Info(r.logg.WithSessionID(ctx, s.ID), "session created")
	return s
}

// GetOrCreate returns the session with the given id, materializing an empty
// one when the id is first seen. The Pub/Sub consumer uses it because the
// publisher owns session ids; HTTP callers go through Create.
func (r *Registry) GetOrCreate(ctx context.Context, id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		now := time.Now()
		s = &Session{
			ID:        id,
			CreatedAt: now,
			engine:    r.newEngine(),
			lastSeen:  now,
		}
		r.sessions[id] = s
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		r.metrics.SetActiveSessions(count)
		r.logg.Info(r.logg.WithSessionID(ctx, id), "session materialized")
	}
	return s
}

// Get looks up a live session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found").
			WithDetails(map[string]any{"session_id": id})
	}
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
	return s, nil
}

// Delete ends a session and drops its mirrored snapshot.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found").
			WithDetails(map[string]any{"session_id": id})
	}

	r.metrics.SetActiveSessions(count)
	if r.snaps != nil {
		if err := r.snaps.DropCartSnapshot(ctx, id); err != nil {
			r.logg.Warn(r.logg.WithSessionID(ctx, id), "drop cart snapshot failed")
		}
	}
	r.logg.Info(r.logg.WithSessionID(ctx, id), "session ended")
	return nil
}

// Apply runs one event against a session's cart and mirrors the resulting
// snapshot. Mirroring is best effort; a snapshot store outage never fails
// the event.
func (r *Registry) Apply(ctx context.Context, id string, event cart.Event) (cart.Snapshot, []cart.Diagnostic, error) {
	s, err := r.Get(id)
	if err != nil {
		return cart.Snapshot{}, nil, err
	}

	s.mu.Lock()
	diags := s.engine.Apply(event)
	snap := s.engine.Snapshot()
	s.mu.Unlock()

	r.mirror(ctx, id, snap)
	return snap, diags, nil
}

// Snapshot reads a session's cart without mutating it.
func (r *Registry) Snapshot(id string) (cart.Snapshot, error) {
	s, err := r.Get(id)
	if err != nil {
		return cart.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(), nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartSweeper evicts idle sessions on the configured interval until the
// context is cancelled.
func (r *Registry) StartSweeper(ctx context.Context) {
	interval := r.cfg.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

func (r *Registry) sweep(ctx context.Context) {
	if r.cfg.TTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-r.cfg.TTL)

	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	for _, id := range expired {
		if r.snaps != nil {
			if err := r.snaps.DropCartSnapshot(ctx, id); err != nil {
				r.logg.Warn(r.logg.WithSessionID(ctx, id), "drop cart snapshot failed")
			}
		}
		r.logg.Info(r.logg.WithSessionID(ctx, id), "session expired")
	}
}

func (r *Registry) mirror(ctx context.Context, id string, snap cart.Snapshot) {
	if r.snaps == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		r.logg.Error(ctx, "encode cart snapshot", err)
		return
	}
	if err := r.snaps.StoreCartSnapshot(ctx, id, string(payload), r.cfg.SnapshotTTL); err != nil {
		r.logg.Warn(r.logg.WithSessionID(ctx, id), "store cart snapshot failed")
	}
}
