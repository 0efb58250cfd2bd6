package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/models"
)

// GetEntity loads the record with id and decodes it into T.
func GetEntity[T any](ctx context.Context, c CollectionStore, id string) (T, error) {
	var entity T

	record, err := c.Get(ctx, id)
	if err != nil {
		return entity, err
	}
	if err := json.Unmarshal(record.Data, &entity); err != nil {
		return entity, fmt.Errorf("%w: %s: %w", ErrDecodingRecord, id, err)
	}

	return entity, nil
}

// PutEntity encodes v as a JSON document stored under id.
func PutEntity(ctx context.Context, c CollectionStore, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	return c.Put(ctx, models.Record{ID: id, Data: doc})
}

func decodeAll[T any](ctx context.Context, c CollectionStore) ([]T, error) {
	records, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(records))
	for _, record := range records {
		var entity T
		if err := json.Unmarshal(record.Data, &entity); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecodingRecord, record.ID, err)
		}
		entities = append(entities, entity)
	}

	return entities, nil
}

// ReadDataset decodes every collection of src into a dataset.
func ReadDataset(ctx context.Context, src CollectionSource) (*models.Dataset, error) {
	var (
		ds  models.Dataset
		err error
	)

	if ds.Profiles, err = decodeAll[models.Profile](ctx, src.Collection(models.CollectionProfiles)); err != nil {
		return nil, err
	}
	if ds.Chats, err = decodeAll[models.Chat](ctx, src.Collection(models.CollectionChats)); err != nil {
		return nil, err
	}
	if ds.Memories, err = decodeAll[models.Memory](ctx, src.Collection(models.CollectionMemories)); err != nil {
		return nil, err
	}
	if ds.Assets, err = decodeAll[models.Asset](ctx, src.Collection(models.CollectionAssets)); err != nil {
		return nil, err
	}
	if ds.Settings, err = decodeAll[models.Setting](ctx, src.Collection(models.CollectionSettings)); err != nil {
		return nil, err
	}

	return &ds, nil
}

// EncodeDataset turns ds into records grouped by collection.
func EncodeDataset(ds *models.Dataset) (map[models.CollectionName][]models.Record, error) {
	out := make(map[models.CollectionName][]models.Record, len(models.Collections))

	add := func(name models.CollectionName, id string, v any) error {
		doc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", name, id, err)
		}
		out[name] = append(out[name], models.Record{ID: id, Data: doc})
		return nil
	}

	for _, p := range ds.Profiles {
		if err := add(models.CollectionProfiles, p.ID, p); err != nil {
			return nil, err
		}
	}
	for _, c := range ds.Chats {
		if err := add(models.CollectionChats, c.ID, c); err != nil {
			return nil, err
		}
	}
	for _, m := range ds.Memories {
		if err := add(models.CollectionMemories, m.ID, m); err != nil {
			return nil, err
		}
	}
	for _, a := range ds.Assets {
		if err := add(models.CollectionAssets, a.ID, a); err != nil {
			return nil, err
		}
	}
	for _, s := range ds.Settings {
		if err := add(models.CollectionSettings, s.Key, s); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// WriteDataset upserts every entity of ds into the collections of src.
func WriteDataset(ctx context.Context, src CollectionSource, ds *models.Dataset) error {
	return writeRecords(ctx, ds, src.Collection)
}

func writeRecords(ctx context.Context, ds *models.Dataset, open func(models.CollectionName) CollectionStore) error {
	grouped, err := EncodeDataset(ds)
	if err != nil {
		return err
	}

	for _, name := range models.Collections {
		c := open(name)
		for _, record := range grouped[name] {
			if err := c.Put(ctx, record); err != nil {
				return err
			}
		}
	}

	return nil
}
