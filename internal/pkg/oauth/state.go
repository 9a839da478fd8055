package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "oauth:state:"
	stateTTL       = 10 * time.Minute
)

// StateStore 管理 OAuth state 参数的存储与校验
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// GenerateState 生成随机 state 并在 Redis 中记录回跳地址
func (s *StateStore) GenerateState(ctx context.Context, redirectURI string) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(bytes)

	key := stateKeyPrefix + state
	if err := s.rdb.Set(ctx, key, redirectURI, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return state, nil
}

// ValidateState 校验 state 并返回回跳地址，校验后立即删除防止重放
func (s *StateStore) ValidateState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", fmt.Errorf("empty state parameter")
	}

	key := stateKeyPrefix + state

	var redirectURI string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return fmt.Errorf("invalid or expired state")
		}
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		redirectURI = val

		_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if err != nil {
		return "", err
	}

	return redirectURI, nil
}
