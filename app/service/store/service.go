package store

import (
	"chatcal/app/client/firebase"
	"chatcal/app/config"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/samber/do"
)

const lockShards = 16

// KV is the external key-value collaborator holding serialized histories.
// Get returns (nil, nil) for an absent key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Service keeps one ordered conversation history per user. Read-modify-write
// cycles for the same user are serialized through a sharded mutex, so two
// concurrent appends cannot drop each other's turns; the last completed write
// still wins on the KV side.
type Service struct {
	kv       KV
	maxTurns int
	locks    [lockShards]sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var kv KV
	if cfg.Firebase.URL != "" {
		kv = do.MustInvoke[*firebase.Client](di)
	} else {
		kv = NewMemoryKV()
	}

	return NewService(kv, *cfg.Bot.MaxHistoryTurns), nil
}

func NewService(kv KV, maxTurns int) *Service {
	return &Service{
		kv:       kv,
		maxTurns: maxTurns,
	}
}

func historyKey(userID string) string {
	return "chat/" + userID
}

func (s *Service) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))

	return &s.locks[h.Sum32()%lockShards]
}

// History returns the user's turns in append order, empty when none exist.
func (s *Service) History(ctx context.Context, userID string) ([]Turn, error) {
	data, err := s.kv.Get(ctx, historyKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if data == nil {
		return []Turn{}, nil
	}

	var turns []Turn
	if err = json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	return turns, nil
}

// Append adds turns to the end of the user's history, trimming the oldest
// entries once the configured bound is exceeded.
func (s *Service) Append(ctx context.Context, userID string, turns ...Turn) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.History(ctx, userID)
	if err != nil {
		return err
	}

	history = append(history, turns...)
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err = s.kv.Put(ctx, historyKey(userID), data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	return nil
}

// Reset deletes the user's entire history.
func (s *Service) Reset(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.kv.Delete(ctx, historyKey(userID)); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}

	return nil
}
