// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the blob store clients the sync engine talks to.
//
// The primary abstraction is [BlobStore], a passive key/blob store with a
// single advisory lock blob. Two backends ship with the package: an HTTP/REST
// client ([NewHTTPBlobStore]) and a plain directory ([NewFSBlobStore]), for
// example a folder shared through a file sync tool.
//
// Error values defined in errors.go are mapped from HTTP statuses by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrBlobNotFound] for 404).
package adapter

import (
	"context"

	"github.com/marine14f/geminipwa-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/blob_store_mock.go -package=mock

// BlobStore is the remote key/blob storage shared by all devices.
type BlobStore interface {
	// Put stores data under key, replacing any previous blob.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the blob under key, or an error wrapping [ErrBlobNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the asset keys present remotely, sorted. The manifest and
	// lock blobs are never listed.
	List(ctx context.Context) ([]string, error)

	// DeleteMany removes every listed key. Absent keys are ignored.
	DeleteMany(ctx context.Context, keys []string) error

	// PutLock overwrites the lock blob unconditionally.
	PutLock(ctx context.Context, lock models.LockRecord) error

	// GetLock returns the lock blob, nil when absent. A lock that cannot be
	// decoded is returned with an empty Operation.
	GetLock(ctx context.Context) (*models.LockRecord, error)

	// DeleteLock removes the lock blob. An absent lock is not an error.
	DeleteLock(ctx context.Context) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// Watcher is implemented by backends that can report manifest changes made
// by other devices.
type Watcher interface {
	// Watch blocks until ctx is done, calling onChange whenever the manifest
	// blob is created or rewritten.
	Watch(ctx context.Context, onChange func()) error
}
