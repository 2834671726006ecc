// Copyright 2025 achetronic
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package redis implements join.EmbeddingCache over Redis. Embeddings are a
// pure function of (model, text), unlike chat-completion replies which
// depend on an entire block's composition, so caching them by that key is
// transparent to EmbeddingJoin's output — a cache hit returns exactly the
// vector a fresh Embed call would have produced.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements an embedding cache backed by Redis. Vectors are stored
// JSON-encoded under a key namespaced by model and a hash of the input
// text, so arbitrarily long texts never blow past Redis's key-length
// limits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config configures a Cache.
type Config struct {
	// Addr is the Redis server address (e.g. "localhost:6379").
	Addr string
	// Password for Redis authentication. Optional.
	Password string
	// DB is the Redis database number.
	DB int
	// TTL is how long a cached vector survives. Zero means no expiration.
	TTL time.Duration
}

// New creates a Cache and verifies connectivity with a Ping.
func New(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: connect: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Get returns the cached embedding for (model, text), and false if absent.
func (c *Cache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(model, text)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, false, fmt.Errorf("redis: unmarshal: %w", err)
	}
	return vector, true, nil
}

// Set stores the embedding for (model, text).
func (c *Cache) Set(ctx context.Context, model, text string, vector []float32) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("redis: marshal: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(model, text), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// cacheKey hashes text so a cache key's length never depends on the length
// of the relation row it was computed from.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("semjoin:embed:%s:%s", model, hex.EncodeToString(sum[:]))
}
