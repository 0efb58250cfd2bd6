package store

import (
	"context"

	"github.com/marine14f/geminipwa-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/local_store_mock.go -package=mock

// CollectionStore is a single document collection keyed by id.
type CollectionStore interface {
	// GetAll returns every record ordered by id.
	GetAll(ctx context.Context) ([]models.Record, error)
	// Get returns the record with id or [ErrRecordNotFound].
	Get(ctx context.Context, id string) (models.Record, error)
	// Put inserts or overwrites a record.
	Put(ctx context.Context, record models.Record) error
	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Tx is a multi-collection transaction scope handed to [LocalStore.WithTx].
type Tx interface {
	Collection(name models.CollectionName) CollectionStore
	Staging(name models.CollectionName) CollectionStore
}

// CollectionSource is anything collections can be opened from: the store
// itself or an open transaction.
type CollectionSource interface {
	Collection(name models.CollectionName) CollectionStore
}

// LocalStore is the device-local persistence of the full dataset.
type LocalStore interface {
	Collection(name models.CollectionName) CollectionStore
	// WithTx runs fn in one transaction: committed when fn returns nil,
	// rolled back on error or panic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	ReadDataset(ctx context.Context) (*models.Dataset, error)
	// WriteDataset upserts every entity of ds in one transaction without
	// removing anything.
	WriteDataset(ctx context.Context, ds *models.Dataset) error
	// ReplaceDataset swaps the whole local dataset for ds. Settings named in
	// privilegedKeys are kept from the local side.
	ReplaceDataset(ctx context.Context, ds *models.Dataset, privilegedKeys []string) error
	// RecoverReplace finishes a replace interrupted after staging. It reports
	// whether a pending replace was found.
	RecoverReplace(ctx context.Context) (bool, error)

	Close() error
}
