// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
	"github.com/marine14f/geminipwa-sub000/models"
)

const blobFileMode = 0o644

// FSBlobStore keeps every blob as one file in a flat directory. Writes go
// through a temp file and a rename, so a concurrent reader on another device
// never sees a torn blob.
type FSBlobStore struct {
	dir string
	ns  namespace

	logger *logger.Logger
}

// NewFSBlobStore creates dir if needed and returns a store rooted there.
func NewFSBlobStore(dir, prefix string, keys Keys, logger *logger.Logger) (*FSBlobStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("empty blob directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}

	return &FSBlobStore{
		dir:    dir,
		ns:     namespace{prefix: prefix, keys: keys},
		logger: logger,
	}, nil
}

func (s *FSBlobStore) path(key string) (string, error) {
	name, err := s.ns.name(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FSBlobStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	return transportErr("put", key, utils.WriteFileAtomic(path, data, blobFileMode))
}

func (s *FSBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, transportErr("get", key, err)
	}

	return data, nil
}

func (s *FSBlobStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, transportErr("list", "", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	keys := s.ns.assetKeys(names)
	sort.Strings(keys)
	return keys, nil
}

func (s *FSBlobStore) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *FSBlobStore) delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return transportErr("delete", key, err)
	}
	return nil
}

func (s *FSBlobStore) PutLock(ctx context.Context, lock models.LockRecord) error {
	data, err := encodeLock(lock)
	if err != nil {
		return err
	}
	return s.Put(ctx, s.ns.keys.Lock, data)
}

func (s *FSBlobStore) GetLock(ctx context.Context) (*models.LockRecord, error) {
	data, err := s.Get(ctx, s.ns.keys.Lock)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLock(data), nil
}

func (s *FSBlobStore) DeleteLock(ctx context.Context) error {
	return s.delete(s.ns.keys.Lock)
}

func (s *FSBlobStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return transportErr("ping", "", err)
	}
	if !info.IsDir() {
		return transportErr("ping", "", fmt.Errorf("%s is not a directory", s.dir))
	}
	return nil
}

// Watch implements [Watcher] on top of fsnotify. Only events on the
// manifest file are reported; asset and lock churn is ignored.
func (s *FSBlobStore) Watch(ctx context.Context, onChange func()) error {
	log := logger.FromContext(ctx)

	manifest, err := s.ns.name(s.ns.keys.Manifest)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch blob directory %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != manifest {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				log.Debug().
					Str("func", "FSBlobStore.Watch").
					Str("op", event.Op.String()).
					Msg("manifest changed on remote")
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Err(err).Str("func", "FSBlobStore.Watch").Msg("watcher error")
		}
	}
}
