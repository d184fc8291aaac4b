package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"
)

const scanBatch = 100

// CacheStorage stores named groups of cached resources. A group is the key namespace "<group>:".
type CacheStorage struct {
	client *red.Client
}

// NewCacheStorage constructs a Redis-backed cache group store.
func NewCacheStorage(client *red.Client) *CacheStorage {
	return &CacheStorage{client: client}
}

// Put stores a resource in a group.
func (s *CacheStorage) Put(ctx context.Context, group, name string, value []byte, ttl time.Duration) error {
	if group == "" || name == "" {
		return fmt.Errorf("group and name are required")
	}
	if err := s.client.Set(ctx, group+":"+name, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set cached resource: %w", err)
	}
	return nil
}

// Groups lists the distinct group names whose name starts with prefix.
func (s *CacheStorage) Groups(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	iter := s.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		idx := strings.Index(key, ":")
		if idx <= 0 {
			continue
		}
		seen[key[:idx]] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan cache groups: %w", err)
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}

// DeleteGroup removes every resource of a group and returns how many keys were deleted.
func (s *CacheStorage) DeleteGroup(ctx context.Context, group string) (int64, error) {
	if group == "" {
		return 0, fmt.Errorf("group is required")
	}

	var (
		deleted int64
		batch   []string
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis delete cache group: %w", err)
		}
		deleted += n
		batch = batch[:0]
		return nil
	}

	iter := s.client.Scan(ctx, 0, group+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan cache group: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}
	return deleted, nil
}
