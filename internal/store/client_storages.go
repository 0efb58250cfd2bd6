package store

import (
	"context"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// ClientStorages groups the client-side storage of the sync engine into a
// single value that can be passed around the service layer.
type ClientStorages struct {
	// LocalStore is the SQLite-backed store of the full local dataset.
	LocalStore LocalStore
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [ClientStorages] value wired to a fresh
//     [LocalStore].
//
// Interrupted replaces are not recovered here; the sync service does that
// as the first step of its startup.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		LocalStore: NewLocalStore(db, logger),
	}, nil
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	return s.LocalStore.Close()
}
