package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/service"
	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
	"github.com/marine14f/geminipwa-sub000/internal/workers"
	"github.com/marine14f/geminipwa-sub000/models"
)

const exportFileMode = 0o600

type App struct {
	services *service.ClientServices
	storages *store.ClientStorages
	remote   adapter.BlobStore
	cfg      config.ClientWorkers

	logger *logger.Logger
}

// NewApp opens the local store, connects the remote and builds the
// services. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, cfg *config.ClientConfig, notifier tui.Notifier, logger *logger.Logger) (*App, error) {
	remote, err := adapter.NewBlobStore(cfg.Remote, cfg.Sync, logger)
	if err != nil {
		return nil, fmt.Errorf("create remote: %w", err)
	}

	return newApp(ctx, cfg, remote, notifier, logger)
}

func newApp(ctx context.Context, cfg *config.ClientConfig, remote adapter.BlobStore, notifier tui.Notifier, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	services, err := service.NewClientServices(ctx, storages, remote, notifier, cfg.Sync, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create client services: %w", err)
	}

	return &App{
		services: services,
		storages: storages,
		remote:   remote,
		cfg:      cfg.Workers,
		logger:   logger,
	}, nil
}

// Services exposes the wired services, e.g. for an embedding UI.
func (a *App) Services() *service.ClientServices {
	return a.services
}

func (a *App) Startup(ctx context.Context) error {
	return a.services.SyncService.Startup(ctx)
}

// Push, Pull and Import each finish an interrupted operation first, the way
// Startup does, so a resumed push is never mistaken for local edits.
func (a *App) Push(ctx context.Context) error {
	if err := a.Recover(ctx); err != nil {
		return err
	}
	return a.services.SyncService.ForcePush(ctx)
}

func (a *App) Pull(ctx context.Context) error {
	if err := a.Recover(ctx); err != nil {
		return err
	}
	return a.services.SyncService.Pull(ctx)
}

func (a *App) Recover(ctx context.Context) error {
	err := a.services.SyncService.Recover(ctx)
	if errors.Is(err, service.ErrRecoveryDeclined) {
		return nil
	}
	return err
}

func (a *App) Status() (models.SyncState, models.SyncMode) {
	return a.services.SyncService.State(), a.services.SyncService.Mode()
}

func (a *App) Import(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err)
	}

	if err := a.Recover(ctx); err != nil {
		// importing is local; an unreachable remote must not block it
		logger.FromContext(ctx).Warn().Err(err).Str("func", "App.Import").Msg("recovery before import failed")
	}

	return a.services.DataService.Import(ctx, &ds)
}

func (a *App) Export(ctx context.Context, path string) error {
	ds, err := a.services.DataService.Export(ctx)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return utils.WriteFileAtomic(path, raw, exportFileMode)
}

// Daemon keeps the device in sync until ctx is done: it pulls periodically,
// retries after a lost connection and, when the backend supports it, pulls
// as soon as another device pushes.
func (a *App) Daemon(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := a.Startup(ctx); err != nil {
		// an unreachable remote must not keep the daemon from starting
		log.Err(err).Str("func", "App.Daemon").Msg("startup sync failed")
	}

	syncSvc := a.services.SyncService
	ws := workers.NewWorkers(
		workers.NewPullWorker(a.services.SyncJob, a.cfg.PullInterval),
		workers.NewConnectivityMonitor(a.remote, syncSvc, a.cfg.ConnectivityInterval),
	)
	if watcher, ok := a.remote.(adapter.Watcher); ok {
		ws.Add(workers.NewRemoteWatcher(watcher, syncSvc, ignoreSyncError))
	}

	log.Info().Str("func", "App.Daemon").Str("mode", string(syncSvc.Mode())).Msg("daemon started")
	return ws.Run(ctx)
}

func (a *App) Close() error {
	a.services.Close()
	return a.storages.Close()
}

// ignoreSyncError reports errors that are routine for unattended pulls.
func ignoreSyncError(err error) bool {
	return errors.Is(err, service.ErrSyncInProgress) ||
		errors.Is(err, service.ErrReplaceDeclined) ||
		errors.Is(err, service.ErrConflictDeclined)
}
