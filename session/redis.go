package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore keeps each session as a redis hash. Reads that fail degrade to
// an empty snapshot so session reads never fail the turn.
type RedisStore struct {
	client *redis.Client
	logger *log.Logger
}

// Conn opens and pings a redis client.
func Conn(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: timeout,
		Password:    password,
		DB:          db,
	})
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	if pong != "PONG" {
		return nil, fmt.Errorf("expected PONG, got %s", pong)
	}
	return client, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, logger *log.Logger) *RedisStore {
	if logger == nil {
		logger = log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	}
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, id string) Snapshot {
	vals, err := s.client.HGetAll(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		s.logger.Printf("redis read for session %s failed: %v", id, err)
		return Snapshot{}
	}
	var r record
	r.apply(vals)
	return r.snapshot()
}

func (s *RedisStore) Update(ctx context.Context, id string, fields map[string]string) {
	known := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if _, ok := knownFields[name]; ok {
			known[name] = value
		}
	}
	if len(known) == 0 {
		return
	}
	if err := s.client.HSet(ctx, sessionKeyPrefix+id, known).Err(); err != nil {
		s.logger.Printf("redis write for session %s failed: %v", id, err)
	}
}
