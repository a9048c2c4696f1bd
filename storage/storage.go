package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/config"
)

var ErrInvalidKey = errors.New("invalid object key")

// Storage keeps uploaded files and returns the location clients fetch them from.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// New picks the backend named by the storage driver setting.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case config.StorageS3:
		return NewS3(ctx, c)
	default:
		return NewLocal(c.UploadDir, "/uploads")
	}
}

func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "..") && !strings.HasPrefix(key, "/")
}
