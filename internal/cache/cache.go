// Package cache is the shared key/value cache. Other services fill most keys; this process
// reads them and writes the entries it derives from upstream calls.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

type Config struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size" split_words:"true"`
}

// Keys shared with the producers of the cached data.
const (
	SkyblockItemsKey  = "skyblock_items"
	SkyblockBazaarKey = "skyblock_bazaar"
)

func SkyblockProfilesKey(uuid string) string {
	return "skyblock_profiles:" + uuid
}

func UUIDKey(lowerName string) string {
	return "uuid:" + lowerName
}

func JobKey(path string) string {
	return "job:" + path
}

type backend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type Client struct {
	rdb backend
}

// New connects to redis. An empty address keeps the cache in process memory, which
// suits a single instance without the producers of the shared keys.
func New(config *Config) *Client {
	if config.Addr == "" {
		return NewWithMemory(NewMemory())
	}
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})}
}

// Get returns ok=false when the key is absent. Absence is not an error.
func (c *Client) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	value, err = c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, slotherr.UpstreamE("cache get "+key, err)
	}
	return value, true, nil
}

// Set with ttl 0 keeps the key forever.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return slotherr.UpstreamE("cache set "+key, err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
