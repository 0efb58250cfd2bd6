package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/models"
)

// SyncStateKey is the setting the sync state is persisted under. It is
// always treated as privileged.
const SyncStateKey = "syncState"

func loadSyncState(ctx context.Context, local store.CollectionSource) (models.SyncState, error) {
	setting, err := store.GetEntity[models.Setting](ctx, local.Collection(models.CollectionSettings), SyncStateKey)
	if errors.Is(err, store.ErrRecordNotFound) {
		return models.SyncState{}, nil
	}
	if err != nil {
		return models.SyncState{}, fmt.Errorf("load sync state: %w", err)
	}

	var state models.SyncState
	if len(setting.Value) > 0 {
		if err := json.Unmarshal(setting.Value, &state); err != nil {
			return models.SyncState{}, fmt.Errorf("decode sync state: %w", err)
		}
	}
	return state, nil
}

func saveSyncState(ctx context.Context, local store.CollectionSource, state models.SyncState) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}

	setting := models.Setting{Key: SyncStateKey, Value: value}
	if err := store.PutEntity(ctx, local.Collection(models.CollectionSettings), SyncStateKey, setting); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

// privilegedKeys always contains SyncStateKey.
func privilegedKeys(configured []string) []string {
	keys := slices.Clone(configured)
	if !slices.Contains(keys, SyncStateKey) {
		keys = append(keys, SyncStateKey)
	}
	return keys
}

// withoutPrivileged returns a shallow copy of ds without the privileged
// settings.
func withoutPrivileged(ds *models.Dataset, keys []string) *models.Dataset {
	out := *ds
	out.Settings = make([]models.Setting, 0, len(ds.Settings))
	for _, s := range ds.Settings {
		if !slices.Contains(keys, s.Key) {
			out.Settings = append(out.Settings, s)
		}
	}
	return &out
}
