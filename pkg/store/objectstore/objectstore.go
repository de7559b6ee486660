// Package objectstore provides the remote report stores: Amazon S3 through
// aws-sdk-go-v2 and S3 compatible servers through minio-go.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/daily-report/pkg/models/domain"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is a flat key/value blob store. Put overwrites existing keys.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// New builds the store for a storage profile.
func New(ctx context.Context, profile domain.StorageProfile) (Store, error) {
	if profile.Bucket == "" {
		return nil, fmt.Errorf("storage profile %s has no bucket", profile.Name)
	}
	switch profile.Backend {
	case domain.BackendS3, "":
		return NewS3(ctx, profile)
	case domain.BackendMinio:
		return NewMinio(ctx, profile)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", profile.Backend)
	}
}
