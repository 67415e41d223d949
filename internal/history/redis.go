package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps records as JSON in a capped list, newest at the head.
type Redis struct {
	client   redis.UniversalClient
	key      string
	capacity int
}

// NewRedis wraps client. The list at key is trimmed to capacity on every
// write.
func NewRedis(client redis.UniversalClient, key string, capacity int) *Redis {
	return &Redis{client: client, key: key, capacity: capacity}
}

func (s *Redis) Add(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, s.key, data)
		p.LTrim(ctx, s.key, 0, int64(s.capacity-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("push record: %w", err)
	}
	return nil
}

func (s *Redis) Recent(ctx context.Context, limit int) ([]Record, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, int64(normalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	out := make([]Record, 0, len(raw))
	for _, item := range raw {
		var r Record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
