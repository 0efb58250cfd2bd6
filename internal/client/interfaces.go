// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/marine14f/geminipwa-sub000/models"
)

// Client is what the command line drives.
type Client interface {
	// Startup runs crash recovery and the initial pull.
	Startup(ctx context.Context) error
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
	Recover(ctx context.Context) error
	Status() (models.SyncState, models.SyncMode)

	// Import reads a dataset export from path and pushes it.
	Import(ctx context.Context, path string) error
	// Export writes the local dataset to path.
	Export(ctx context.Context, path string) error

	// Daemon runs startup and then the background workers until ctx is
	// done.
	Daemon(ctx context.Context) error

	Close() error
}
