// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

const (
	lockFileName    = ".reviewdeck.lock"
	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
)

// FileStore maps each key to one file under a data directory. Keys are
// percent-encoded into file names so arbitrary key strings stay on disk
// losslessly.
//
// The store takes an exclusive advisory lock on the data directory for its
// whole lifetime. Startup migrations rely on being the only writer; the lock
// turns a second concurrent process into an open-time error instead of silent
// data corruption.
type FileStore struct {
	dir  string
	lock *flock.Flock
}

// NewFileStore opens (creating if needed) the data directory and acquires its
// lock. Callers must Close the store to release the lock.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}

	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, errors.Wrapf(err, "failed to create data directory %s", dir)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock data directory %s", dir)
	}
	if !locked {
		return nil, errors.Errorf("data directory %s is locked by another process", dir)
	}

	return &FileStore{dir: dir, lock: lock}, nil
}

// Close releases the data directory lock.
func (fs *FileStore) Close() error {
	return fs.lock.Unlock()
}

// Dir returns the data directory backing the store.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	b, err := os.ReadFile(fs.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read key %q", key)
	}
	return string(b), true, nil
}

func (fs *FileStore) Set(key string, value string) error {
	if err := os.WriteFile(fs.path(key), []byte(value), defaultFilePerm); err != nil {
		return errors.Wrapf(err, "failed to write key %q", key)
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	if err := os.Remove(fs.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove key %q", key)
	}
	return nil
}

func (fs *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enumerate data directory %s", fs.dir)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == lockFileName {
			continue
		}
		key, err := url.PathUnescape(entry.Name())
		if err != nil {
			// not a store-written file; leave it alone
			continue
		}
		keys = append(keys, key)
	}

	return keys, nil
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, url.PathEscape(key))
}
