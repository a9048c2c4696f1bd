package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
)

// Local writes files under a directory that the router serves statically.
type Local struct {
	dir     string
	urlBase string
}

func NewLocal(dir, urlBase string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Local{dir: dir, urlBase: urlBase}, nil
}

func (l *Local) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	target := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "create object dir")
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write object")
	}
	return path.Join(l.urlBase, key), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete object")
	}
	return nil
}
