package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	orderimport "github.com/sellerops/backend/internal/infrastructure/import"
)

// RedisSessionStore implements orderimport.SessionStore using Redis
// This is suitable for distributed deployments where the validate and confirm
// calls may land on different instances
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSessionStore creates a new Redis-based session store
func NewRedisSessionStore(cfg RedisConfig, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSessionStore{
		client:    client,
		keyPrefix: "import:session:",
		ttl:       ttl,
	}, nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = "import:session:"
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Save stores a session as JSON with the configured TTL. The TTL restarts on
// every save, so a session stays alive while the operator is still working.
func (s *RedisSessionStore) Save(ctx context.Context, session *orderimport.ImportSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal import session: %w", err)
	}

	key := s.keyPrefix + session.ID.String()
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store import session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID. Unknown or expired sessions return nil.
func (s *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*orderimport.ImportSession, error) {
	key := s.keyPrefix + id.String()

	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import session: %w", err)
	}

	var session orderimport.ImportSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal import session: %w", err)
	}

	return &session, nil
}

// Delete removes a session by ID
func (s *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete import session: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Ensure RedisSessionStore implements SessionStore
var _ orderimport.SessionStore = (*RedisSessionStore)(nil)
