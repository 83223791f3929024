package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "grover:session:"

// Store persists session state.
type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, state State) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON strings that expire after a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration, l *slog.Logger) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: l.With(slog.String("component", "session_store")),
		now:    time.Now,
	}
}

// NewRedisClient connects to the Redis server at url and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Load returns the state stored under id, refreshing its TTL.
func (s *RedisStore) Load(ctx context.Context, id string) (State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("discarding corrupt session",
			slog.String("session_id", id),
			slog.String("error", err.Error()))
		return State{}, ErrNotFound
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, sessionKey(id), s.ttl).Err(); err != nil {
			return State{}, fmt.Errorf("failed to refresh session ttl: %w", err)
		}
	}
	return state.Clone(), nil
}

// Save writes state and resets its TTL.
func (s *RedisStore) Save(ctx context.Context, state State) error {
	if state.ID == "" {
		return errors.New("session id cannot be empty")
	}
	state.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
