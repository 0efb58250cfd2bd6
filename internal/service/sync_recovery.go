package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

// Startup must run before any other sync activity: it finishes an
// interrupted local replace, resumes an interrupted remote operation and
// otherwise pulls.
func (s *SyncService) Startup(ctx context.Context) error {
	handled, err := s.recover(ctx)
	if errors.Is(err, ErrRecoveryDeclined) {
		return nil
	}
	if err != nil || handled {
		return err
	}
	return s.Pull(ctx)
}

// Recover runs the crash checks of Startup without the trailing pull. It
// returns [ErrRecoveryDeclined] when the user chose to only drop a stale
// lock.
func (s *SyncService) Recover(ctx context.Context) error {
	_, err := s.recover(ctx)
	return err
}

// recover reports whether an interrupted operation was found and handled.
func (s *SyncService) recover(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx)

	replaced, err := s.local.RecoverReplace(ctx)
	if err != nil {
		return false, fmt.Errorf("recover local replace: %w", err)
	}
	if replaced {
		log.Warn().Str("func", "SyncService.recover").Msg("finished an interrupted local replace")
		s.mu.Lock()
		onReload := s.onReload
		s.mu.Unlock()
		if onReload != nil {
			onReload()
		}
	}

	lock, err := s.remote.GetLock(ctx)
	if err != nil {
		return false, fmt.Errorf("read lock: %w", err)
	}
	if lock == nil {
		return false, nil
	}

	log.Warn().
		Str("func", "SyncService.recover").
		Str("operation", string(lock.Operation)).
		Str("timestamp", lock.Timestamp).
		Msg("found lock of an interrupted sync")

	// a known operation is resumed as is, the user already went through
	// its checkpoint before the crash
	switch {
	case lock.Operation == models.LockPush:
		if err := s.update(ctx, func(st *models.SyncState) bool {
			st.IsDirty = true
			return true
		}); err != nil {
			return true, err
		}
		return true, s.run(ctx, models.LockPush, func(ctx context.Context) error {
			return s.push(ctx, true)
		})
	case lock.Operation == models.LockPull:
		return true, s.run(ctx, models.LockPull, func(ctx context.Context) error {
			return s.pull(ctx, true)
		})
	default:
		return true, s.recoverUnknownLock(ctx)
	}
}

// recoverUnknownLock asks the user how to resolve a lock this engine cannot
// interpret: adopt the remote, force the remote to match local, or only
// drop the lock.
func (s *SyncService) recoverUnknownLock(ctx context.Context) error {
	adopt, err := s.notifier.Confirm(ctx,
		"An earlier sync was interrupted and its state is unknown. "+
			"Replace the data on this device with the remote data?")
	if err != nil {
		return fmt.Errorf("confirm recovery: %w", err)
	}
	if adopt {
		// forget the last sync so the remote is adopted even if it matches
		if err := s.update(ctx, func(st *models.SyncState) bool {
			st.LastSyncID = nil
			return true
		}); err != nil {
			return err
		}
		return s.run(ctx, models.LockPull, func(ctx context.Context) error {
			return s.pull(ctx, true)
		})
	}

	overwrite, err := s.notifier.Confirm(ctx, "Overwrite the remote data with the data of this device instead?")
	if err != nil {
		return fmt.Errorf("confirm recovery: %w", err)
	}
	if overwrite {
		if err := s.update(ctx, func(st *models.SyncState) bool {
			st.IsDirty = true
			return true
		}); err != nil {
			return err
		}
		return s.run(ctx, models.LockPush, func(ctx context.Context) error {
			return s.push(ctx, true)
		})
	}

	if err := s.remote.DeleteLock(ctx); err != nil {
		return fmt.Errorf("delete stale lock: %w", err)
	}
	logger.FromContext(ctx).Info().Str("func", "SyncService.recoverUnknownLock").Msg("stale lock removed")
	return ErrRecoveryDeclined
}
