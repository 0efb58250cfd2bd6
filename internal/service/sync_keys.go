package service

import (
	"bytes"
	"context"
	"errors"

	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/models"
)

// persistAssetKeys writes newly assigned keys back to the local store. Each
// entity is re-read inside the transaction and only its key fields are
// patched, so an edit made since the push read the dataset survives. A key
// is applied only while the stored payload is still the indexed one.
func (s *SyncService) persistAssetKeys(ctx context.Context, changed *models.Dataset) error {
	return s.local.WithTx(ctx, func(tx store.Tx) error {
		profiles := tx.Collection(models.CollectionProfiles)
		for _, keyed := range changed.Profiles {
			if err := patchEntity(ctx, profiles, keyed.ID, func(cur *models.Profile) bool {
				return patchProfileKeys(cur, keyed)
			}); err != nil {
				return err
			}
		}

		chats := tx.Collection(models.CollectionChats)
		for _, keyed := range changed.Chats {
			if err := patchEntity(ctx, chats, keyed.ID, func(cur *models.Chat) bool {
				return patchChatKeys(cur, keyed)
			}); err != nil {
				return err
			}
		}

		assets := tx.Collection(models.CollectionAssets)
		for _, keyed := range changed.Assets {
			if err := patchEntity(ctx, assets, keyed.ID, func(cur *models.Asset) bool {
				if cur.AssetKey != "" || !bytes.Equal(cur.Data, keyed.Data) {
					return false
				}
				cur.AssetKey = keyed.AssetKey
				return true
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// patchEntity loads id, applies patch and stores the result when patch
// reports a change. A deleted entity is skipped.
func patchEntity[T any](ctx context.Context, c store.CollectionStore, id string, patch func(*T) bool) error {
	cur, err := store.GetEntity[T](ctx, c, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !patch(&cur) {
		return nil
	}
	return store.PutEntity(ctx, c, id, cur)
}

func patchProfileKeys(cur *models.Profile, keyed models.Profile) bool {
	if cur.Icon == nil || keyed.Icon == nil {
		return false
	}

	changed := false
	if cur.Icon.AssetKey == "" && keyed.Icon.AssetKey != "" && bytes.Equal(cur.Icon.Data, keyed.Icon.Data) {
		cur.Icon.AssetKey = keyed.Icon.AssetKey
		changed = true
	}
	if cur.Icon.AssetKey != "" && cur.IconAssetKey != cur.Icon.AssetKey {
		cur.IconAssetKey = cur.Icon.AssetKey
		changed = true
	}
	return changed
}

// patchChatKeys matches attachments by position. Messages appended since
// the read have no counterpart and are keyed by the next push.
func patchChatKeys(cur *models.Chat, keyed models.Chat) bool {
	changed := false
	for i := range min(len(cur.Messages), len(keyed.Messages)) {
		attachments := cur.Messages[i].Attachments
		for j := range min(len(attachments), len(keyed.Messages[i].Attachments)) {
			want := keyed.Messages[i].Attachments[j]
			if attachments[j].AssetKey != "" || want.AssetKey == "" || !bytes.Equal(attachments[j].Data, want.Data) {
				continue
			}
			attachments[j].AssetKey = want.AssetKey
			changed = true
		}
	}
	return changed
}
