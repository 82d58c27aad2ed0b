package data

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisCursorRepo durably stores the poller watermark in Redis. Without it
// the watermark lives only in process memory and a restart resumes from the
// current chain head.
type RedisCursorRepo struct {
	client redis.UniversalClient
	key    string
}

// NewRedisCursorRepo creates a cursor repo storing the watermark under key.
func NewRedisCursorRepo(client redis.UniversalClient, key string) (*RedisCursorRepo, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		return nil, errors.New("cursor key is required")
	}
	return &RedisCursorRepo{client: client, key: key}, nil
}

// Load returns the stored watermark and whether one exists.
func (r *RedisCursorRepo) Load(ctx context.Context) (uint64, bool, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load cursor: %w", err)
	}

	height, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		// A corrupt cursor is treated as absent; the caller falls back to
		// the current head rather than replaying from an arbitrary height.
		return 0, false, fmt.Errorf("parse cursor %q: %w", value, err)
	}

	return height, true, nil
}

// Save stores the watermark. No TTL: the cursor outlives the process.
func (r *RedisCursorRepo) Save(ctx context.Context, height uint64) error {
	if err := r.client.Set(ctx, r.key, strconv.FormatUint(height, 10), 0).Err(); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
