package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/meatshare/orderbook-backend/pkg/config"
	redisclient "github.com/meatshare/orderbook-backend/pkg/redis"
)

// ErrNoSession is returned when a session id has no live server-side entry,
// either because it never existed or its idle window lapsed.
var ErrNoSession = errors.New("no active session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager owns admin session lifecycle: creation at login, sliding renewal on
// each authenticated request, and revocation at logout.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read side needed by middleware.
type Checker interface {
	Touch(ctx context.Context, sessionID string) (string, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.IdleTTL <= 0 {
		return nil, fmt.Errorf("session idle ttl must be positive")
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.IdleTTL,
	}, nil
}

// Create opens a session for the admin phone and returns the session id.
func (m *Manager) Create(ctx context.Context, phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("admin phone is required")
	}
	sessionID := NewSessionID()
	if err := m.store.Set(ctx, m.keyer.SessionKey(sessionID), phone, m.ttl); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Touch verifies the session is alive, renews its idle window, and returns
// the admin phone bound to it.
func (m *Manager) Touch(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrNoSession
	}
	key := m.keyer.SessionKey(sessionID)
	phone, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	if err := m.store.Expire(ctx, key, m.ttl); err != nil {
		return "", err
	}
	return phone, nil
}

// Revoke deletes the session entry. Safe to call for unknown ids.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces the identifier used as JWT jti and redis key.
func NewSessionID() string {
	return uuid.NewString()
}
