// Package redis carries cross-instance event fan-out and the distributed
// lock used by background workers.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient connects a universal client from a URL or a comma separated list
// of URLs and host:port addresses.
func NewClient(ctx context.Context, redisURL string, log zerolog.Logger) (redis.UniversalClient, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("ignoring non-zero DB for a redis cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info().Strs("addrs", opts.Addrs).Msg("connected to redis")
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = parsed.DialTimeout
		}
		if opts.PoolSize == 0 {
			opts.PoolSize = parsed.PoolSize
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	return opts, nil
}
