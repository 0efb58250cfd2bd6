package service

import (
	"context"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

// Pull adopts the remote dataset. With no remote manifest and local data
// present the pull turns into a bootstrap push under the same lock.
func (s *SyncService) Pull(ctx context.Context) error {
	return s.run(ctx, models.LockPull, func(ctx context.Context) error {
		return s.pull(ctx, false)
	})
}

// pull runs the pipeline after the lock is held. force skips the replace
// checkpoint.
func (s *SyncService) pull(ctx context.Context, force bool) error {
	log := logger.FromContext(ctx)

	remote, err := s.fetchManifest(ctx)
	if err != nil {
		return err
	}

	if remote == nil {
		local, err := s.local.ReadDataset(ctx)
		if err != nil {
			return fmt.Errorf("read local dataset: %w", err)
		}
		if s.hasSyncableData(local) || s.State().IsDirty {
			log.Info().Str("func", "SyncService.pull").Msg("no remote manifest, bootstrapping remote")
			return s.push(ctx, force)
		}
		log.Debug().Str("func", "SyncService.pull").Msg("both sides empty")
		return nil
	}

	state := s.State()
	if remote.SyncID == state.LastSyncIDValue() {
		log.Debug().Str("func", "SyncService.pull").Str("sync_id", remote.SyncID).Msg("already up to date")
		return s.touch(ctx)
	}

	if state.IsDirty && !force {
		ok, err := s.notifier.Confirm(ctx,
			"The remote data has changed. Pulling is a full replace that cannot be merged: "+
				"changes made on this device since the last sync will be lost. Continue?")
		if err != nil {
			return fmt.Errorf("confirm replace: %w", err)
		}
		if !ok {
			return ErrReplaceDeclined
		}
	}

	incoming, err := s.fetchIncoming(ctx, remote)
	if err != nil {
		return err
	}

	if err := s.local.ReplaceDataset(ctx, incoming, s.privileged); err != nil {
		return fmt.Errorf("replace local dataset: %w", err)
	}

	if err := s.succeed(ctx, remote.SyncID); err != nil {
		return err
	}

	log.Info().Str("func", "SyncService.pull").Str("sync_id", remote.SyncID).Msg("remote dataset adopted")

	s.mu.Lock()
	onReload := s.onReload
	s.mu.Unlock()
	if onReload != nil {
		onReload()
	}
	return nil
}

// fetchIncoming resolves every asset the manifest references, downloading
// only the ones missing locally.
func (s *SyncService) fetchIncoming(ctx context.Context, remote *models.Manifest) (*models.Dataset, error) {
	local, err := s.local.ReadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local dataset: %w", err)
	}

	blobs := collectBlobs(local)
	available := make([]string, 0, len(blobs))
	for key := range blobs {
		available = append(available, key)
	}

	toDownload := DiffForPull(RequiredAssetKeys(remote), available)
	downloaded, err := s.transfer.Download(ctx, toDownload)
	if err != nil {
		return nil, fmt.Errorf("download assets: %w", err)
	}
	for key, data := range downloaded {
		blobs[key] = data
	}

	incoming := ManifestDataset(remote)
	attachPayloads(incoming, blobs)
	return incoming, nil
}
