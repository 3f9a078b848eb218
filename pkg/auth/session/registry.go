package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/campusshelf/campusshelf-backend/pkg/redis"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Registry tracks which identity-service sessions are still live. The
// identity service registers a session when it mints a token; the API checks
// membership on every authenticated request so revocation takes effect before
// the token expires on its own.
type Registry struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// NewRegistry constructs a session registry backed by Redis.
func NewRegistry(client *redisclient.Client, accessTTL time.Duration) (*Registry, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	return &Registry{
		store: client,
		keyer: client,
		ttl:   accessTTL,
	}, nil
}

// Register records a live session for the token's jti.
func (r *Registry) Register(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return r.store.Set(ctx, r.keyer.SessionKey(sessionID), "1", r.ttl)
}

// HasSession reports whether the session is still registered.
func (r *Registry) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	return r.store.Exists(ctx, r.keyer.SessionKey(sessionID))
}

// Revoke drops the session so subsequent requests are rejected.
func (r *Registry) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return r.store.Del(ctx, r.keyer.SessionKey(sessionID))
}
