// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
	"github.com/marine14f/geminipwa-sub000/models"
)

// SyncService is the sync orchestrator. It owns the device SyncState and is
// the only writer of it.
//
// At most one push or pull runs at a time. Triggers that arrive while one is
// running are dropped with [ErrSyncInProgress].
type SyncService struct {
	local    store.LocalStore
	remote   adapter.BlobStore
	notifier tui.Notifier
	indexer  *AssetIndexer
	transfer *assetTransfer
	ids      IDGenerator
	now      func() time.Time
	logger   *logger.Logger

	mode        models.SyncMode
	threshold   int
	manifestKey string
	privileged  []string
	scheduler   *syncScheduler

	// background context of scheduled pushes
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup

	mu       sync.Mutex
	state    models.SyncState
	missed   bool
	onReload func()
}

// NewSyncService loads the persisted SyncState and returns a ready
// orchestrator. Nothing touches the remote until Startup, Push or Pull.
func NewSyncService(
	ctx context.Context,
	local store.LocalStore,
	remote adapter.BlobStore,
	notifier tui.Notifier,
	cfg config.ClientSync,
	logger *logger.Logger,
) (*SyncService, error) {
	state, err := loadSyncState(ctx, local)
	if err != nil {
		return nil, err
	}

	bgCtx, cancel := context.WithCancel(logger.WithContext(context.WithoutCancel(ctx)))

	s := &SyncService{
		local:       local,
		remote:      remote,
		notifier:    notifier,
		indexer:     NewAssetIndexer(),
		transfer:    newAssetTransfer(remote, notifier, cfg.BatchSize),
		ids:         utils.NewUUIDGenerator(),
		now:         time.Now,
		logger:      logger,
		mode:        cfg.Mode,
		threshold:   cfg.Threshold,
		manifestKey: cfg.ManifestKey,
		privileged:  privilegedKeys(cfg.PrivilegedSettings),
		bgCtx:       bgCtx,
		bgCancel:    cancel,
		state:       state,
	}
	s.scheduler = newSyncScheduler(cfg.Debounce, s.scheduledPush)

	return s, nil
}

// OnReload registers fn to be called after every pull that replaced the
// local dataset. In-memory views built from the old data must be rebuilt.
func (s *SyncService) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = fn
}

// State returns a copy of the current sync state. PushScheduled reports a
// push waiting for its debounce window.
func (s *SyncService) State() models.SyncState {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	st.PushScheduled = s.scheduler.Pending()
	return st
}

// Mode returns the configured scheduling mode.
func (s *SyncService) Mode() models.SyncMode {
	return s.mode
}

// MarkDirty records a local mutation and schedules a push according to the
// sync mode. A mutation during a running sync is remembered and applied
// when the sync ends.
func (s *SyncService) MarkDirty(ctx context.Context) error {
	schedule := false

	err := s.update(ctx, func(st *models.SyncState) bool {
		if st.IsSyncing {
			s.missed = true
			return false
		}

		st.IsDirty = true
		switch s.mode {
		case models.SyncModeInstant:
			schedule = true
		case models.SyncModeThreshold:
			st.MutationCount++
			if s.threshold > 0 && st.MutationCount%s.threshold == 0 {
				st.MutationCount = 0
				schedule = true
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	if schedule {
		s.scheduler.Schedule()
	}
	return nil
}

// ForcePush marks the state dirty and pushes right away, bypassing the
// debounce window.
func (s *SyncService) ForcePush(ctx context.Context) error {
	err := s.update(ctx, func(st *models.SyncState) bool {
		if st.IsSyncing {
			s.missed = true
			return false
		}
		st.IsDirty = true
		return true
	})
	if err != nil {
		return err
	}

	s.scheduler.Cancel()
	return s.Push(ctx)
}

// OnNetworkRestored retries a push when the device holds unsynced changes
// or the last attempt failed.
func (s *SyncService) OnNetworkRestored(ctx context.Context) error {
	st := s.State()
	if !st.IsDirty && st.LastError == nil {
		return nil
	}

	logger.FromContext(ctx).Info().
		Str("func", "SyncService.OnNetworkRestored").
		Bool("dirty", st.IsDirty).
		Msg("network restored, retrying push")

	return s.Push(ctx)
}

// Close cancels the pending debounce trigger and waits for a scheduled
// push that is already running.
func (s *SyncService) Close() {
	s.scheduler.Cancel()

	s.mu.Lock()
	s.bgCancel()
	s.mu.Unlock()

	s.bgWG.Wait()
}

func (s *SyncService) scheduledPush() {
	s.mu.Lock()
	if s.bgCtx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.bgWG.Add(1)
	s.mu.Unlock()
	defer s.bgWG.Done()

	log := s.logger
	err := s.Push(s.bgCtx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		log.Debug().Str("func", "SyncService.scheduledPush").Msg("trigger dropped, sync in progress")
	case isUserDecline(err):
		log.Info().Str("func", "SyncService.scheduledPush").Err(err).Msg("scheduled push declined")
	default:
		log.Err(err).Str("func", "SyncService.scheduledPush").Msg("scheduled push failed")
	}
}

// update applies fn to a copy of the state, persists the copy and only then
// publishes it. fn returns false to leave the state untouched.
func (s *SyncService) update(ctx context.Context, fn func(st *models.SyncState) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	if !fn(&next) {
		return nil
	}
	if err := saveSyncState(ctx, s.local, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// begin is the single point where sync operations are admitted.
func (s *SyncService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsSyncing {
		return ErrSyncInProgress
	}
	s.state.IsSyncing = true
	s.missed = false
	return nil
}

func (s *SyncService) end(ctx context.Context) {
	s.mu.Lock()
	s.state.IsSyncing = false
	missed := s.missed
	s.missed = false
	s.mu.Unlock()

	if missed {
		if err := s.MarkDirty(ctx); err != nil {
			logger.FromContext(ctx).Err(err).Str("func", "SyncService.end").Msg("failed to mark dirty after sync")
		}
	}
}

// succeed records a committed or adopted manifest.
func (s *SyncService) succeed(ctx context.Context, syncID string) error {
	now := s.now().UTC()
	return s.update(ctx, func(st *models.SyncState) bool {
		id := syncID
		st.LastSyncID = &id
		st.IsDirty = false
		st.LastError = nil
		st.MutationCount = 0
		st.LastSyncedAt = &now
		return true
	})
}

// touch records a pull that found nothing new. Dirty is kept.
func (s *SyncService) touch(ctx context.Context) error {
	now := s.now().UTC()
	return s.update(ctx, func(st *models.SyncState) bool {
		st.LastError = nil
		st.LastSyncedAt = &now
		return true
	})
}

// finish records the outcome of one operation. A user decline is not an
// error: the state is left as it was.
func (s *SyncService) finish(ctx context.Context, op models.LockOperation, err error) error {
	log := logger.FromContext(ctx)

	if err == nil {
		log.Info().Str("func", "SyncService.finish").Str("operation", string(op)).Msg("sync finished")
		return nil
	}
	if isUserDecline(err) {
		log.Info().Str("func", "SyncService.finish").Str("operation", string(op)).Err(err).Msg("sync cancelled by user")
		return err
	}

	log.Err(err).Str("func", "SyncService.finish").Str("operation", string(op)).Msg("sync failed")

	now := s.now().UTC()
	if uerr := s.update(ctx, func(st *models.SyncState) bool {
		st.LastError = &models.SyncError{Message: err.Error(), Timestamp: now}
		return true
	}); uerr != nil {
		log.Err(uerr).Str("func", "SyncService.finish").Msg("failed to record sync error")
	}

	s.notifier.Alert(fmt.Sprintf("Sync %s failed: %s", op, tui.HumanizeError(err)))
	return err
}

// run wraps one operation with the lock protocol: the lock is written
// first and always deleted afterwards.
func (s *SyncService) run(ctx context.Context, op models.LockOperation, fn func(ctx context.Context) error) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end(ctx)

	log := logger.FromContext(ctx).With().Str("operation", string(op)).Logger()
	ctx = log.WithContext(ctx)

	lock := models.LockRecord{Operation: op, Timestamp: s.now().UTC().Format(time.RFC3339Nano)}
	if err := s.remote.PutLock(ctx, lock); err != nil {
		return s.finish(ctx, op, fmt.Errorf("write lock: %w", err))
	}

	err := fn(ctx)
	s.releaseLock(ctx)

	return s.finish(ctx, op, err)
}

func (s *SyncService) releaseLock(ctx context.Context) {
	if err := s.remote.DeleteLock(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "SyncService.releaseLock").Msg("failed to delete lock")
	}
}

// fetchManifest returns the remote manifest, nil when there is none.
func (s *SyncService) fetchManifest(ctx context.Context) (*models.Manifest, error) {
	raw, err := s.remote.Get(ctx, s.manifestKey)
	if errors.Is(err, adapter.ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	return ParseManifest(raw)
}

// hasSyncableData reports whether ds holds anything besides privileged
// settings.
func (s *SyncService) hasSyncableData(ds *models.Dataset) bool {
	return !withoutPrivileged(ds, s.privileged).IsEmpty()
}
