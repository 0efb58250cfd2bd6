package service

import (
	"context"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
)

// ClientServices groups the services of one device.
type ClientServices struct {
	SyncService *SyncService
	DataService *DataService
	SyncJob     SyncJob
}

func NewClientServices(
	ctx context.Context,
	storages *store.ClientStorages,
	remote adapter.BlobStore,
	notifier tui.Notifier,
	cfg config.ClientSync,
	logger *logger.Logger,
) (*ClientServices, error) {
	syncSvc, err := NewSyncService(ctx, storages.LocalStore, remote, notifier, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &ClientServices{
		SyncService: syncSvc,
		DataService: NewDataService(storages.LocalStore, syncSvc, utils.NewUUIDGenerator(), cfg.PrivilegedSettings),
		SyncJob:     NewSyncJob(syncSvc),
	}, nil
}

// Close stops background work.
func (s *ClientServices) Close() {
	s.SyncJob.Stop()
	s.SyncService.Close()
}

// Services groups the services of the blob server.
type Services struct {
	BlobService BlobService
}

func NewServices(store adapter.BlobStore, logger *logger.Logger) *Services {
	logger.Info().Msg("creating new services...")
	return &Services{
		BlobService: NewBlobService(store, logger),
	}
}
