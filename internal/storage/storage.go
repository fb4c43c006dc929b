package storage

import (
	"context"
	"time"
)

// Object is a cached download: raw bytes plus the headers needed to serve it.
type Object struct {
	Content     []byte
	ContentType string
	Filename    string
}

type Storage interface {
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, key string, obj *Object, itemID, eTag string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
