package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb       *redis.Client
	noticeTTL time.Duration
}

func New(addr string, noticeTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb, noticeTTL: noticeTTL}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Push stores the notice shown on the next page userID loads, replacing any
// pending one.
func (c *Client) Push(ctx context.Context, userID int64, text string) error {
	return c.rdb.Set(ctx, noticeKey(userID), text, c.noticeTTL).Err()
}

func (c *Client) Pop(ctx context.Context, userID int64) (string, error) {
	text, err := c.rdb.GetDel(ctx, noticeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return text, err
}

func noticeKey(userID int64) string {
	return "notice:" + strconv.FormatInt(userID, 10)
}
