package service

import (
	"context"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// BlobService is the server side of the sync remote: a flat key/blob store
// with no knowledge of manifests or locks.
type BlobService interface {
	PutBlob(ctx context.Context, key string, data []byte) error
	GetBlob(ctx context.Context, key string) ([]byte, error)
	ListBlobs(ctx context.Context) ([]string, error)
	DeleteBlobs(ctx context.Context, keys []string) error
	Ping(ctx context.Context) error
}

type blobService struct {
	store  adapter.BlobStore
	logger *logger.Logger
}

func NewBlobService(store adapter.BlobStore, logger *logger.Logger) BlobService {
	return &blobService{store: store, logger: logger}
}

func (s *blobService) PutBlob(ctx context.Context, key string, data []byte) error {
	if err := validateBlobKeys(key); err != nil {
		return err
	}
	if err := s.store.Put(ctx, key, data); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "blobService.PutBlob").Str("key", key).Msg("failed to store blob")
		return err
	}
	return nil
}

func (s *blobService) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if err := validateBlobKeys(key); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, key)
}

func (s *blobService) ListBlobs(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

func (s *blobService) DeleteBlobs(ctx context.Context, keys []string) error {
	if err := validateBlobKeys(keys...); err != nil {
		return err
	}
	if err := s.store.DeleteMany(ctx, keys); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "blobService.DeleteBlobs").Int("count", len(keys)).Msg("failed to delete blobs")
		return err
	}
	return nil
}

func (s *blobService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func validateBlobKeys(keys ...string) error {
	for _, key := range keys {
		if err := adapter.ValidateKey(key); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
	}
	return nil
}
