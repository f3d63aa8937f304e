package redis

import (
	"github.com/redis/go-redis/v9"
)

// Store handles Redis persistence for the allow-set and folder labels.
// It backs the in-memory structures in access and folders; all callers
// treat it as best effort.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
