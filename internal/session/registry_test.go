package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	"github.com/drdonut/voicecart-backend/pkg/config"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type fakeSnapshotter struct {
	mu     sync.Mutex
	stored map[string]string
}

func newFakeSnapshotter() *fakeSnapshotter {
	return &fakeSnapshotter{stored: make(map[string]string)}
}

func (f *fakeSnapshotter) StoreCartSnapshot(_ context.Context, id, payload string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[id] = payload
	return nil
}

func (f *fakeSnapshotter) DropCartSnapshot(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, id)
	return nil
}

func (f *fakeSnapshotter) get(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.stored[id]
	return payload, ok
}

func newTestRegistry(t *testing.T, cfg config.SessionConfig, snaps Snapshotter) *Registry {
	t.Helper()
	menu, err := catalog.BuiltIn(catalog.MenuSmall)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	cat, err := catalog.New(menu)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	factory := func() *cart.Engine {
		return cart.NewEngine(cat, resolver.New(cat, 0), cart.Options{})
	}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel})
	return NewRegistry(cfg, factory, snaps, nil, logg)
}

func TestCreateGetDelete(t *testing.T) {
	r := newTestRegistry(t, config.SessionConfig{TTL: time.Minute}, nil)
	ctx := context.Background()

	s := r.Create(ctx)
	if s.ID == "" {
		t.Fatal("empty session id")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}

	got, err := r.Get(s.ID)
	if err != nil || got.ID != s.ID {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if err := r.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(s.ID); err == nil {
		t.Fatal("expected lookup failure after delete")
	}
	err = r.Delete(ctx, s.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("double delete = %v", err)
	}
}

func TestApplyAndSnapshot(t *testing.T) {
	snaps := newFakeSnapshotter()
	r := newTestRegistry(t, config.SessionConfig{TTL: time.Minute, SnapshotTTL: time.Hour}, snaps)
	ctx := context.Background()

	s := r.Create(ctx)
	snap, diags, err := r.Apply(ctx, s.ID, cart.Event{Type: cart.EventAdd, ItemText: "coffee"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(diags) != 0 || len(snap.Lines) != 1 {
		t.Fatalf("snap = %+v diags = %+v", snap, diags)
	}

	read, err := r.Snapshot(s.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if read.Version != snap.Version {
		t.Fatalf("versions differ: %d vs %d", read.Version, snap.Version)
	}

	if payload, ok := snaps.get(s.ID); !ok || payload == "" {
		t.Fatal("snapshot was not mirrored")
	}

	if _, _, err := r.Apply(ctx, "missing", cart.Event{Type: cart.EventClear}); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestApplySerializesPerSession(t *testing.T) {
	r := newTestRegistry(t, config.SessionConfig{TTL: time.Minute}, nil)
	ctx := context.Background()
	s := r.Create(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = r.Apply(ctx, s.ID, cart.Event{Type: cart.EventAdd, ItemText: "coffee", Quantity: 1})
		}()
	}
	wg.Wait()

	snap, err := r.Snapshot(s.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 20 {
		t.Fatalf("lines = %+v", snap.Lines)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	snaps := newFakeSnapshotter()
	r := newTestRegistry(t, config.SessionConfig{TTL: 10 * time.Millisecond, SnapshotTTL: time.Hour}, snaps)
	ctx := context.Background()

	s := r.Create(ctx)
	if _, _, err := r.Apply(ctx, s.ID, cart.Event{Type: cart.EventAdd, ItemText: "coffee"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	r.sweep(ctx)

	if r.Len() != 0 {
		t.Fatalf("len after sweep = %d", r.Len())
	}
	if _, ok := snaps.get(s.ID); ok {
		t.Fatal("mirrored snapshot should be dropped on expiry")
	}
}

func TestGetOrCreateMaterializesOnce(t *testing.T) {
	r := newTestRegistry(t, config.SessionConfig{TTL: time.Minute}, nil)
	ctx := context.Background()

	first := r.GetOrCreate(ctx, "ext-42")
	second := r.GetOrCreate(ctx, "ext-42")
	if first != second {
		t.Fatal("expected the same session on repeat ids")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}
	if first.ID != "ext-42" {
		t.Fatalf("id = %q", first.ID)
	}
}
