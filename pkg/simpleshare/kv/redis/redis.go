package redis

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// Store is a Redis implementation of the simpleshare.KVStore interface.
// TTLs map to native key expiry; prefix listings use SCAN MATCH.
type Store struct {
	client *redis.Client
}

// Config options for the Redis store
type Config struct {
	Address  string
	Password string
	DB       int
}

// New creates a new Redis metadata store and verifies connectivity.
func New(cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client. Intended for tests.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value for key, or simpleshare.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, simpleshare.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put stores value under key with no expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// PutWithTTL stores value under key with native Redis expiry.
func (s *Store) PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Put(ctx, key, value)
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// List returns all keys with the given prefix in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	// SCAN yields keys in no particular order.
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
