package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON value per artifact under prefix+ID
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	if prefix == "" {
		prefix = "promoreel:artifact:"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

// Put adds or replaces an artifact
func (r *RedisStore) Put(ctx context.Context, a *Artifact) error {
	if err := validate(a); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := r.client.Set(ctx, r.key(a.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("error storing artifact %s: %w", a.ID, err)
	}
	return nil
}

// Get retrieves an artifact by ID
func (r *RedisStore) Get(ctx context.Context, id string) (*Artifact, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading artifact %s: %w", id, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact %s: %w", id, err)
	}
	return &a, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("error deleting artifact %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List scans every key under the prefix
func (r *RedisStore) List(ctx context.Context) ([]*Artifact, error) {
	var list []*Artifact
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(r.prefix):]
		a, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning artifacts: %w", err)
	}
	sortByCreated(list)
	return list, nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
