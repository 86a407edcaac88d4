package db

import (
	"context"

	"searchq/internal/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// InitRedis takes the address explicitly; an empty address leaves the
// client nil and callers fall back to building indexes locally.
func InitRedis(addr string) {
	if addr == "" {
		logger.Warn("redis_disabled", nil)
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func PingRedis() error {
	if RDB == nil {
		return nil
	}
	return RDB.Ping(context.Background()).Err()
}
