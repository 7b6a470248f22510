package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu      sync.Mutex
	data    map[string]string
	expires map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), expires: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.expires[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = ttl
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(sessionID string) string {
	return fmt.Sprintf("sess:%s", sessionID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: 30 * time.Minute}
}

func TestManagerCreateAndTouch(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	sessionID, err := manager.Create(ctx, "5551234567")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stored := store.data[store.SessionKey(sessionID)]; stored != "5551234567" {
		t.Fatalf("expected phone stored, got %q", stored)
	}

	phone, err := manager.Touch(ctx, sessionID)
	if err != nil {
		t.Fatalf("touch: %v", err)
	}
	if phone != "5551234567" {
		t.Fatalf("unexpected phone %q", phone)
	}
}

func TestManagerTouchRenewsIdleWindow(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	sessionID, err := manager.Create(ctx, "5551234567")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	key := store.SessionKey(sessionID)
	store.expires[key] = time.Minute

	if _, err := manager.Touch(ctx, sessionID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if got := store.expires[key]; got != 30*time.Minute {
		t.Fatalf("expected sliding renewal to 30m, got %s", got)
	}
}

func TestManagerTouchUnknownSession(t *testing.T) {
	manager := newTestManager(newMockStore())

	if _, err := manager.Touch(context.Background(), "missing"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := manager.Touch(context.Background(), "  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for blank id, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	sessionID, err := manager.Create(ctx, "5551234567")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := manager.Revoke(ctx, sessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := manager.Touch(ctx, sessionID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected revoked session to be gone, got %v", err)
	}

	// Revoking twice is a no-op.
	if err := manager.Revoke(ctx, sessionID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}
