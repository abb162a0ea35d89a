// Package storage keeps uploaded document bytes outside the SQL database.
package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"subvenciones/config"
	"subvenciones/tools"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("storage: blob not found")

// BlobStore stores opaque blobs under string keys.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by the configuration.
func Open(c config.Configuration) (BlobStore, error) {
	switch c.Storage.Driver {
	case "disk":
		return NewDiskStore(c.Storage.Path)
	case "badger", "":
		return OpenBadger(c.Storage.Path, false)
	case "memory":
		return OpenBadger("", true)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}
}

// ProjectKey returns a fresh key projects/<id>/<uuid>-<name> for an upload.
func ProjectKey(projectID int64, fileName string) string {
	return fmt.Sprintf("projects/%d/%s-%s", projectID, uuid.NewString(), tools.SafeFileName(fileName))
}

// Checksum returns the hex blake2b-256 digest of data.
func Checksum(data []byte) string {
	h, err := blake2b.New(32, nil)
	if err != nil {
		// only fails for an invalid size or key
		panic(err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}
