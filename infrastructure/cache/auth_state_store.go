package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mx-social/domain/model"
	"mx-social/domain/repository"
)

// ErrStateNotFound is returned when a state nonce is unknown, expired or
// already consumed.
var ErrStateNotFound = errors.New("authorization state not found")

const stateKeyPrefix = "authstate:"

// RedisAuthStateStore keeps in-flight OAuth states in Redis keyed by the
// state nonce. GETDEL makes consumption atomic, so a callback replay or a
// second instance racing on the same nonce loses.
type RedisAuthStateStore struct {
	client *redis.Client
}

func NewRedisAuthStateStore(client *redis.Client) repository.IAuthState {
	return &RedisAuthStateStore{client: client}
}

func (s *RedisAuthStateStore) Put(ctx context.Context, state *model.AuthState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return s.client.Set(ctx, stateKeyPrefix+state.State, raw, ttl).Err()
}

func (s *RedisAuthStateStore) Take(ctx context.Context, nonce string) (*model.AuthState, error) {
	raw, err := s.client.GetDel(ctx, stateKeyPrefix+nonce).Result()
	if err == redis.Nil {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	var state model.AuthState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	if state.Expired() {
		return nil, ErrStateNotFound
	}
	return &state, nil
}

// MemoryAuthStateStore is the single-process fallback used when Redis is
// not configured.
type MemoryAuthStateStore struct {
	mu     sync.Mutex
	states map[string]*model.AuthState
}

func NewMemoryAuthStateStore() repository.IAuthState {
	return &MemoryAuthStateStore{states: make(map[string]*model.AuthState)}
}

func (s *MemoryAuthStateStore) Put(_ context.Context, state *model.AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.State] = state
	return nil
}

func (s *MemoryAuthStateStore) Take(_ context.Context, nonce string) (*model.AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[nonce]
	if !ok {
		return nil, ErrStateNotFound
	}
	delete(s.states, nonce)
	if state.Expired() {
		return nil, ErrStateNotFound
	}
	return state, nil
}
