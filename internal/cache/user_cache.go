// Package cache holds the authenticated-user cache: a short-lived memoized
// read of the persisted session store. State lives in an injectable service
// with an explicit lifecycle (invalidated on login/logout, expired by a fixed
// TTL and an injectable clock) rather than in package-level variables.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm-admin-gateway/internal/domain"
	"crm-admin-gateway/internal/metrics"
	"crm-admin-gateway/internal/repository"
)

const redisKeyPrefix = "admin_gateway:user:"

type memoEntry struct {
	session  *domain.Session
	cachedAt time.Time
}

// UserCache memoizes reads of the persisted session store. Redis, when
// configured, acts as a second memo layer shared across replicas; the
// in-process map keeps single-instance reads cheap.
type UserCache struct {
	sessions repository.SessionRepository
	redis    *redis.Client
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu   sync.RWMutex
	memo map[uuid.UUID]memoEntry
}

// Option configures a UserCache
type Option func(*UserCache)

// WithClock injects the time source, so tests control expiry deterministically
func WithClock(now func() time.Time) Option {
	return func(c *UserCache) {
		c.now = now
	}
}

// WithRedis attaches the shared Redis memo layer
func WithRedis(client *redis.Client) Option {
	return func(c *UserCache) {
		c.redis = client
	}
}

// NewUserCache creates a new user cache over the session store
func NewUserCache(sessions repository.SessionRepository, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics, opts ...Option) *UserCache {
	c := &UserCache{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
		memo:     make(map[uuid.UUID]memoEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the authenticated user's session. Memoized entries are served
// until the fixed TTL elapses; after that the persisted store is re-read.
// A missing or expired session returns (nil, nil), not an error.
func (c *UserCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.memo[userID]
	c.mu.RUnlock()
	if ok && now.Sub(entry.cachedAt) < c.ttl {
		if c.metrics != nil {
			c.metrics.RecordSessionCacheHit()
		}
		if entry.session != nil && entry.session.Expired(now) {
			return nil, nil
		}
		return entry.session, nil
	}

	if c.metrics != nil {
		c.metrics.RecordSessionCacheMiss()
	}

	if session, ok := c.fromRedis(ctx, userID); ok {
		c.memoize(userID, session, now)
		if session != nil && session.Expired(now) {
			return nil, nil
		}
		return session, nil
	}

	session, err := c.sessions.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.memoize(userID, nil, now)
			return nil, nil
		}
		return nil, err
	}

	c.memoize(userID, session, now)
	c.toRedis(ctx, userID, session)

	if session.Expired(now) {
		return nil, nil
	}
	return session, nil
}

// Invalidate drops the memoized entry for a user. Called on login and logout
// so a stale snapshot never outlives an explicit auth change.
func (c *UserCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.mu.Lock()
	delete(c.memo, userID)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Del(ctx, redisKeyPrefix+userID.String()).Err(); err != nil {
			c.logger.Warn("Failed to invalidate user cache in redis",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}
}

func (c *UserCache) memoize(userID uuid.UUID, session *domain.Session, now time.Time) {
	c.mu.Lock()
	c.memo[userID] = memoEntry{session: session, cachedAt: now}
	c.mu.Unlock()
}

func (c *UserCache) fromRedis(ctx context.Context, userID uuid.UUID) (*domain.Session, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, redisKeyPrefix+userID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (c *UserCache) toRedis(ctx context.Context, userID uuid.UUID, session *domain.Session) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, redisKeyPrefix+userID.String(), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write user cache to redis",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}
