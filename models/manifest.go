package models

import (
	"encoding/json"
	"time"
)

// ManifestVersion is the only manifest document version this engine reads
// and writes.
const ManifestVersion = "2.0"

// Manifest is the single versioned document describing the full non-binary
// dataset plus the asset-key index. It is the commit point of every push.
type Manifest struct {
	Version    string       `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	SyncID     string       `json:"syncId"`
	Data       ManifestData `json:"data"`
}

// ManifestData holds the exported collections. Profiles and chats reference
// binaries by asset key only.
type ManifestData struct {
	Profiles []Profile         `json:"profiles"`
	Chats    []Chat            `json:"chats"`
	Memories []Memory          `json:"memories"`
	Assets   []AssetIndexEntry `json:"assets"`
	Settings []Setting         `json:"settings"`
}

// AssetIndexEntry lists one user-imported asset in the manifest.
type AssetIndexEntry struct {
	AssetKey  string `json:"assetKey"`
	CreatedAt string `json:"createdAt"`

	// Name and MimeType are optional extensions; readers that do not know
	// them ignore them.
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	ID       string `json:"id,omitempty"`
}

// ExportedTime parses ExportedAt. The zero time is returned when the field
// cannot be parsed.
func (m Manifest) ExportedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.ExportedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// MarshalIndent encodes the manifest as an indented JSON document.
func (m Manifest) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
