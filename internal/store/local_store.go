// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

type sqliteLocalStore struct {
	*DB
	logger *logger.Logger
}

// NewLocalStore returns a [LocalStore] on top of an already migrated db.
func NewLocalStore(db *DB, logger *logger.Logger) LocalStore {
	return &sqliteLocalStore{
		DB:     db,
		logger: logger,
	}
}

func (s *sqliteLocalStore) Collection(name models.CollectionName) CollectionStore {
	table, err := mainTable(name)
	return newCollection(s.DB.DB, table, err)
}

func (s *sqliteLocalStore) WithTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	log := logger.FromContext(ctx)

	sqlTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "sqliteLocalStore.WithTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil {
				log.Err(rbErr).Str("func", "sqliteLocalStore.WithTx").Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(&sqliteTx{tx: sqlTx}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		log.Err(err).Str("func", "sqliteLocalStore.WithTx").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *sqliteLocalStore) ReadDataset(ctx context.Context) (*models.Dataset, error) {
	return ReadDataset(ctx, s)
}

func (s *sqliteLocalStore) WriteDataset(ctx context.Context, ds *models.Dataset) error {
	return s.WithTx(ctx, func(tx Tx) error {
		return WriteDataset(ctx, tx, ds)
	})
}

func (s *sqliteLocalStore) Close() error {
	return s.DB.Close()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Collection(name models.CollectionName) CollectionStore {
	return t.collection(name)
}

func (t *sqliteTx) Staging(name models.CollectionName) CollectionStore {
	return t.staging(name)
}

func (t *sqliteTx) collection(name models.CollectionName) *sqlCollection {
	table, err := mainTable(name)
	return newCollection(t.tx, table, err)
}

func (t *sqliteTx) staging(name models.CollectionName) *sqlCollection {
	table, err := stagingTable(name)
	return newCollection(t.tx, table, err)
}
