// Package redis stores vote budget drafts in Redis so they survive restarts
// and are shared between server replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

var _ ports.BudgetStore = (*Store)(nil)

const (
	defaultPrefix = "budget:"
	defaultTTL    = 30 * 24 * time.Hour
)

type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore connects to redisURL and checks the connection.
func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client, ttl), nil
}

func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

func (s *Store) key(sessionID, userID uuid.UUID) string {
	return s.prefix + sessionID.String() + ":" + userID.String()
}

func (s *Store) Load(ctx context.Context, sessionID, userID uuid.UUID) (*domain.VoteBudget, error) {
	data, err := s.client.Get(ctx, s.key(sessionID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}

	var budget domain.VoteBudget
	if err := json.Unmarshal(data, &budget); err != nil {
		return nil, fmt.Errorf("unmarshal budget: %w", err)
	}
	if budget.Allocations == nil {
		budget.Allocations = make(map[uuid.UUID]int)
	}
	return &budget, nil
}

func (s *Store) Save(ctx context.Context, budget *domain.VoteBudget) error {
	data, err := json.Marshal(budget)
	if err != nil {
		return fmt.Errorf("marshal budget: %w", err)
	}
	if err := s.client.Set(ctx, s.key(budget.SessionID, budget.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(sessionID, userID)).Err(); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
