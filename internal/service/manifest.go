package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kaptinlin/jsonschema"

	"github.com/marine14f/geminipwa-sub000/models"
)

//go:embed schema/manifest.schema.json
var manifestSchemaJSON []byte

var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(manifestSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	return schema, nil
})

// BuildManifest wraps a keyed, payload-free dataset into a manifest.
func BuildManifest(ds *models.Dataset, syncID string, now time.Time) models.Manifest {
	m := models.Manifest{
		Version:    models.ManifestVersion,
		ExportedAt: now.UTC().Format(time.RFC3339Nano),
		SyncID:     syncID,
		Data: models.ManifestData{
			Profiles: nonNil(ds.Profiles),
			Chats:    nonNil(ds.Chats),
			Memories: nonNil(ds.Memories),
			Settings: nonNil(ds.Settings),
			Assets:   make([]models.AssetIndexEntry, 0, len(ds.Assets)),
		},
	}

	for _, a := range ds.Assets {
		m.Data.Assets = append(m.Data.Assets, models.AssetIndexEntry{
			AssetKey:  a.AssetKey,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
			Name:      a.Name,
			MimeType:  a.MimeType,
			ID:        a.ID,
		})
	}

	return m
}

// EncodeManifest returns the wire form of m.
func EncodeManifest(m models.Manifest) ([]byte, error) {
	raw, err := m.MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return raw, nil
}

// ParseManifest decodes and validates a remote manifest. Every failure
// matches [ErrCorruptManifest].
func ParseManifest(raw []byte) (*models.Manifest, error) {
	if !json.Valid(raw) {
		return nil, &ManifestError{Reason: "not a JSON document"}
	}

	schema, err := manifestSchema()
	if err != nil {
		return nil, err
	}
	if result := schema.ValidateJSON(raw); !result.IsValid() {
		return nil, &ManifestError{Reason: fmt.Sprintf("schema validation failed: %v", result.Errors)}
	}

	var m models.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ManifestError{Reason: err.Error()}
	}
	if m.Version != models.ManifestVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedManifestVersion, m.Version)
	}

	return &m, nil
}

// ManifestDataset turns the manifest entities back into a dataset without
// payloads.
func ManifestDataset(m *models.Manifest) *models.Dataset {
	ds := &models.Dataset{
		Profiles: m.Data.Profiles,
		Chats:    m.Data.Chats,
		Memories: m.Data.Memories,
		Settings: m.Data.Settings,
	}

	for _, entry := range m.Data.Assets {
		id := entry.ID
		if id == "" {
			id = entry.AssetKey
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, entry.CreatedAt)
		ds.Assets = append(ds.Assets, models.Asset{
			ID:        id,
			Name:      entry.Name,
			MimeType:  entry.MimeType,
			CreatedAt: createdAt,
			AssetKey:  entry.AssetKey,
		})
	}

	return ds
}

// RequiredAssetKeys collects every asset key the manifest references:
// profile icons, message attachments and the asset index. The result is
// sorted and free of duplicates.
func RequiredAssetKeys(m *models.Manifest) []string {
	return referencedKeys(ManifestDataset(m))
}

func referencedKeys(ds *models.Dataset) []string {
	set := make(map[string]struct{})
	add := func(key string) {
		if key != "" {
			set[key] = struct{}{}
		}
	}

	for _, p := range ds.Profiles {
		add(p.IconAssetKey)
		if p.Icon != nil {
			add(p.Icon.AssetKey)
		}
	}
	for _, c := range ds.Chats {
		for _, msg := range c.Messages {
			for _, a := range msg.Attachments {
				add(a.AssetKey)
			}
		}
	}
	for _, a := range ds.Assets {
		add(a.AssetKey)
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
