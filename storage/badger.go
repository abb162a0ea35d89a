package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// BadgerStore keeps blobs in an embedded badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	// tempDir is removed on Close; set for ephemeral stores.
	tempDir string
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) {
	l.logger.Error(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.logger.Warn(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Infof(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

func (l *badgerLogger) Debugf(msg string, items ...any) {
	l.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBadger opens (creating if needed) a badger store at dir. With
// ephemeral set, dir is ignored and the store lives in a fresh temporary
// directory removed on Close. badger's InMemory mode is not used: it caps
// values at ValueThreshold (1 MB), below the upload limit.
func OpenBadger(dir string, ephemeral bool) (*BadgerStore, error) {
	logger := slog.Default().With("component", "blob-store")

	var tempDir string
	if ephemeral {
		d, err := os.MkdirTemp("", "subvenciones-blobs-*")
		if err != nil {
			return nil, fmt.Errorf("storage: temp dir: %w", err)
		}
		dir, tempDir = d, d
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: logger}
	// PDFs and DOCX are already compressed.
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
		return nil, fmt.Errorf("storage: open badger: %w", err)
	}
	return &BadgerStore{db: db, logger: logger, tempDir: tempDir}, nil
}

func (s *BadgerStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error {
	err := s.db.Close()
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); err == nil {
			err = rmErr
		}
	}
	return err
}
