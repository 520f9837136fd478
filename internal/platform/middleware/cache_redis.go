package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheStore shares cached views between server instances so a write
// handled by one instance invalidates views rendered by the others.
type RedisCacheStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisCacheStore connects using a redis:// URL and verifies the
// connection with PING.
func NewRedisCacheStore(ctx context.Context, url, namespace string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCacheStore{client: client, namespace: namespace}, nil
}

func (s *RedisCacheStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

// DeletePrefix walks matching keys with SCAN so a large keyspace never blocks
// the server the way KEYS would.
func (s *RedisCacheStore) DeletePrefix(ctx context.Context, prefix string) error {
	return s.deleteMatching(ctx, escapeGlob(s.key(prefix))+"*")
}

// Clear drops every key in the store's namespace.
func (s *RedisCacheStore) Clear(ctx context.Context) error {
	return s.deleteMatching(ctx, escapeGlob(s.namespace+":")+"*")
}

func (s *RedisCacheStore) deleteMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (s *RedisCacheStore) Close() error {
	return s.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the characters SCAN MATCH treats specially.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
