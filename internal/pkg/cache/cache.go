package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}

// PushToList appends a value to a list, trims the list to the newest
// maxLen entries and refreshes its TTL. Used for chat session history.
func PushToList(key, value string, maxLen int64, expiration time.Duration) error {
	c := GetClient()
	if err := c.RPush(ctx, key, value).Err(); err != nil {
		return err
	}
	if err := c.LTrim(ctx, key, -maxLen, -1).Err(); err != nil {
		return err
	}
	return c.Expire(ctx, key, expiration).Err()
}

// GetList returns all entries of a list, oldest first
func GetList(key string) ([]string, error) {
	return GetClient().LRange(ctx, key, 0, -1).Result()
}
