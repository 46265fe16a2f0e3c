package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
)

type pusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Redis appends each record to a list.
type Redis struct {
	client  pusher
	key     string
	timeout time.Duration
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedis returns a sink pushing onto the list named key.
func NewRedis(client pusher, key string) *Redis {
	return &Redis{client: client, key: key, timeout: 5 * time.Second}
}

// Save pushes rec onto the list.
func (r *Redis) Save(ctx context.Context, rec models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("push record to %s: %w", r.key, err)
	}
	return nil
}
