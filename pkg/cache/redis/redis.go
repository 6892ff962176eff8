package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type ConnectionInfo struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ClientName  string
}

type Client = goredis.Client

// IsNil reports whether err is the miss returned by reads of absent keys.
func IsNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}

func NewRedisConnection(info ConnectionInfo) (*Client, error) {
	opts := &goredis.Options{
		Addr:         info.Addr,
		Password:     info.Password,
		DB:           info.DB,
		MaxRetries:   info.MaxRetries,
		DialTimeout:  info.DialTimeout,
		ReadTimeout:  info.Timeout,
		WriteTimeout: info.Timeout,
		ClientName:   info.ClientName,
	}

	rdb := goredis.NewClient(opts)

	timeout := info.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func Close(c *Client) {
	if c == nil {
		return
	}
	_ = c.Close()
}
