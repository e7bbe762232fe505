package storage

import "context"

// Object is one stored object as reported by a listing.
type Object struct {
	Key  string
	Size int64
}

// Lister enumerates objects under a key prefix.
type Lister interface {
	ListObjects(ctx context.Context, prefix string) ([]Object, error)
}
