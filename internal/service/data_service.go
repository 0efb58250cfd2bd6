package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/models"
)

// DataService is the mutation facade of the local dataset. Every write is
// persisted first and then reported to the sync trigger. A failed sync never
// fails the write: it is recorded in the sync state instead.
type DataService struct {
	local      store.LocalStore
	trigger    SyncTrigger
	ids        IDGenerator
	now        func() time.Time
	privileged []string
}

func NewDataService(local store.LocalStore, trigger SyncTrigger, ids IDGenerator, privileged []string) *DataService {
	return &DataService{
		local:      local,
		trigger:    trigger,
		ids:        ids,
		now:        time.Now,
		privileged: privilegedKeys(privileged),
	}
}

func (d *DataService) PutProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if strings.TrimSpace(p.Name) == "" {
		return p, fmt.Errorf("%w: profile name is empty", ErrInvalidDataProvided)
	}
	if p.ID == "" {
		p.ID = d.ids.Generate()
	}
	now := d.now().UTC()
	p.UpdatedAt = &now

	if err := store.PutEntity(ctx, d.local.Collection(models.CollectionProfiles), p.ID, p); err != nil {
		return p, err
	}
	d.markDirty(ctx, "DataService.PutProfile")
	return p, nil
}

// RenameProfile is a structural edit and is pushed right away.
func (d *DataService) RenameProfile(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: profile name is empty", ErrInvalidDataProvided)
	}

	profiles := d.local.Collection(models.CollectionProfiles)
	p, err := store.GetEntity[models.Profile](ctx, profiles, id)
	if err != nil {
		return err
	}
	now := d.now().UTC()
	p.Name = name
	p.UpdatedAt = &now

	if err := store.PutEntity(ctx, profiles, p.ID, p); err != nil {
		return err
	}
	d.forcePush(ctx, "DataService.RenameProfile")
	return nil
}

func (d *DataService) PutChat(ctx context.Context, c models.Chat) (models.Chat, error) {
	if c.ID == "" {
		c.ID = d.ids.Generate()
	}
	now := d.now().UTC()
	if c.CreatedAt == nil {
		c.CreatedAt = &now
	}
	c.UpdatedAt = &now

	if err := store.PutEntity(ctx, d.local.Collection(models.CollectionChats), c.ID, c); err != nil {
		return c, err
	}
	d.markDirty(ctx, "DataService.PutChat")
	return c, nil
}

// DeleteChat is a structural edit and is pushed right away.
func (d *DataService) DeleteChat(ctx context.Context, id string) error {
	if err := d.local.Collection(models.CollectionChats).Delete(ctx, id); err != nil {
		return err
	}
	d.forcePush(ctx, "DataService.DeleteChat")
	return nil
}

func (d *DataService) PutMemory(ctx context.Context, m models.Memory) (models.Memory, error) {
	if m.ID == "" {
		m.ID = d.ids.Generate()
	}
	if m.CreatedAt == nil {
		now := d.now().UTC()
		m.CreatedAt = &now
	}

	if err := store.PutEntity(ctx, d.local.Collection(models.CollectionMemories), m.ID, m); err != nil {
		return m, err
	}
	d.markDirty(ctx, "DataService.PutMemory")
	return m, nil
}

// ImportAsset stores a user-imported binary. Its asset key is assigned on
// the next push.
func (d *DataService) ImportAsset(ctx context.Context, name, mimeType string, data []byte) (models.Asset, error) {
	if len(data) == 0 {
		return models.Asset{}, fmt.Errorf("%w: asset %q is empty", ErrInvalidDataProvided, name)
	}

	a := models.Asset{
		ID:        d.ids.Generate(),
		Name:      name,
		MimeType:  mimeType,
		CreatedAt: d.now().UTC(),
		Data:      data,
	}
	if err := store.PutEntity(ctx, d.local.Collection(models.CollectionAssets), a.ID, a); err != nil {
		return a, err
	}
	d.markDirty(ctx, "DataService.ImportAsset")
	return a, nil
}

// PutSetting stores one setting. Privileged settings stay on this device
// and do not make the dataset dirty. The sync state itself cannot be
// written here.
func (d *DataService) PutSetting(ctx context.Context, key string, value json.RawMessage) error {
	if key == "" || key == SyncStateKey {
		return fmt.Errorf("%w: setting key %q is reserved", ErrInvalidDataProvided, key)
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: setting %q is not valid JSON", ErrInvalidDataProvided, key)
	}

	setting := models.Setting{Key: key, Value: value}
	if err := store.PutEntity(ctx, d.local.Collection(models.CollectionSettings), key, setting); err != nil {
		return err
	}
	if !slices.Contains(d.privileged, key) {
		d.markDirty(ctx, "DataService.PutSetting")
	}
	return nil
}

// Import upserts every entity of ds and pushes. Privileged settings of ds
// are ignored.
func (d *DataService) Import(ctx context.Context, ds *models.Dataset) error {
	if err := d.local.WriteDataset(ctx, withoutPrivileged(ds, d.privileged)); err != nil {
		return err
	}
	d.forcePush(ctx, "DataService.Import")
	return nil
}

// Export returns the local dataset without privileged settings.
func (d *DataService) Export(ctx context.Context) (*models.Dataset, error) {
	ds, err := d.local.ReadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return withoutPrivileged(ds, d.privileged), nil
}

func (d *DataService) markDirty(ctx context.Context, fn string) {
	if err := d.trigger.MarkDirty(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to mark dataset dirty")
	}
}

func (d *DataService) forcePush(ctx context.Context, fn string) {
	err := d.trigger.ForcePush(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress), isUserDecline(err):
		logger.FromContext(ctx).Info().Str("func", fn).Err(err).Msg("push skipped")
	default:
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("push after local change failed")
	}
}
