package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

// Push uploads the local dataset. When the remote manifest was written by
// another device the user must confirm the overwrite first.
func (s *SyncService) Push(ctx context.Context) error {
	return s.run(ctx, models.LockPush, func(ctx context.Context) error {
		return s.push(ctx, false)
	})
}

// push runs the pipeline after the lock is held. force skips the conflict
// checkpoint.
func (s *SyncService) push(ctx context.Context, force bool) error {
	log := logger.FromContext(ctx)

	if !force {
		if err := s.checkPushConflict(ctx); err != nil {
			return err
		}
	}

	local, err := s.local.ReadDataset(ctx)
	if err != nil {
		return fmt.Errorf("read local dataset: %w", err)
	}

	indexed := s.indexer.Index(local)
	if !indexed.Changed.IsEmpty() {
		// keys are kept even if the rest of the push fails
		if err := s.persistAssetKeys(ctx, indexed.Changed); err != nil {
			return fmt.Errorf("persist asset keys: %w", err)
		}
	}

	candidate := withoutPrivileged(indexed.Dataset, s.privileged)

	remoteKeys, err := s.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("list remote assets: %w", err)
	}

	// blobs referenced without a local payload must already be remote
	referenced := referencedKeys(candidate)
	if missing := difference(referenced, union(indexed.LocalAssetKeys, remoteKeys)); len(missing) > 0 {
		return fmt.Errorf("%w: assets without payload: %v", ErrInvalidDataProvided, missing)
	}
	keep := union(indexed.LocalAssetKeys, intersection(referenced, remoteKeys))

	diff := DiffForPush(keep, remoteKeys)
	log.Debug().
		Str("func", "SyncService.push").
		Int("upload", len(diff.ToUpload)).
		Int("delete", len(diff.ToDelete)).
		Msg("asset diff computed")

	if err := s.transfer.Upload(ctx, diff.ToUpload, indexed.Blobs); err != nil {
		return fmt.Errorf("upload assets: %w", err)
	}
	if err := s.transfer.Delete(ctx, diff.ToDelete); err != nil {
		return fmt.Errorf("delete remote assets: %w", err)
	}

	syncID := s.ids.Generate()
	raw, err := EncodeManifest(BuildManifest(candidate, syncID, s.now()))
	if err != nil {
		return err
	}
	if err := s.remote.Put(ctx, s.manifestKey, raw); err != nil {
		return fmt.Errorf("upload manifest: %w", err)
	}

	if err := s.succeed(ctx, syncID); err != nil {
		return err
	}

	log.Info().Str("func", "SyncService.push").Str("sync_id", syncID).Msg("manifest committed")
	return nil
}

// checkPushConflict is the first of the two confirmation checkpoints.
func (s *SyncService) checkPushConflict(ctx context.Context) error {
	var message string

	remote, err := s.fetchManifest(ctx)
	switch {
	case errors.Is(err, ErrCorruptManifest):
		message = "The remote sync data cannot be read. Overwrite it with the data of this device?"
	case err != nil:
		return err
	case remote == nil:
		return nil
	case remote.SyncID == s.State().LastSyncIDValue():
		return nil
	default:
		message = "Another device has pushed changes since your last sync. Overwrite the remote data with the data of this device?"
	}

	logger.FromContext(ctx).Warn().
		Str("func", "SyncService.checkPushConflict").
		Str("local_sync_id", s.State().LastSyncIDValue()).
		Msg("push conflict")

	ok, err := s.notifier.Confirm(ctx, message)
	if err != nil {
		return fmt.Errorf("confirm overwrite: %w", err)
	}
	if !ok {
		return ErrConflictDeclined
	}
	return nil
}
