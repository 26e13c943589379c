package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the shared redis connection.
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr string, password string) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// FirstView reports whether this is the first view of the post from the
// given session within the window. SET NX carries both the check and the
// claim in one round trip, so concurrent duplicates collapse to one.
func (c *RedisClient) FirstView(ctx context.Context, postID string, sessionID string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("view:%s:%s", postID, sessionID)
	return c.client.SetNX(ctx, key, 1, window).Result()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
