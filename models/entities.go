// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Attachment is a binary payload owned by a profile or a chat message.
//
// Data holds the bytes while the attachment lives in the local store. Once the
// asset indexer has assigned an AssetKey, the key is the only thing that
// travels through the manifest; the bytes travel as a separate blob.
type Attachment struct {
	// AssetKey is the blob-store object name of the payload. Empty until the
	// attachment is indexed for the first time.
	AssetKey string `json:"assetKey,omitempty"`

	// MimeType is the media type of the payload (e.g. "image/webp").
	MimeType string `json:"mimeType,omitempty"`

	// Name is the original file name, if any.
	Name string `json:"name,omitempty"`

	// Data is the raw payload. It is stripped from manifest candidates.
	Data []byte `json:"data,omitempty"`
}

// HasPayload reports whether the attachment carries bytes locally.
func (a Attachment) HasPayload() bool {
	return len(a.Data) > 0
}

// Profile is a chat persona with its own system prompt and optional icon.
type Profile struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	SystemPrompt string      `json:"systemPrompt,omitempty"`
	Icon         *Attachment `json:"icon,omitempty"`

	// IconAssetKey mirrors Icon.AssetKey so that consumers which only read
	// the top-level record can resolve the icon blob.
	IconAssetKey string     `json:"iconAssetKey,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Message is one turn of a chat transcript.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   *time.Time   `json:"timestamp,omitempty"`
}

// Chat is a full transcript owned by a profile.
type Chat struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profileId,omitempty"`
	Title     string     `json:"title"`
	Messages  []Message  `json:"messages"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Memory is a long-term memory entry attached to a profile.
type Memory struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profileId,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Setting is a single key/value application setting.
type Setting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Asset is a user-imported named binary asset.
type Asset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	AssetKey  string    `json:"assetKey,omitempty"`
	Data      []byte    `json:"data,omitempty"`
}

// Dataset is the complete local dataset: every record of every synchronized
// collection.
type Dataset struct {
	Profiles []Profile `json:"profiles"`
	Chats    []Chat    `json:"chats"`
	Memories []Memory  `json:"memories"`
	Assets   []Asset   `json:"assets"`
	Settings []Setting `json:"settings"`
}

// IsEmpty reports whether the dataset holds no records at all.
func (d Dataset) IsEmpty() bool {
	return len(d.Profiles) == 0 &&
		len(d.Chats) == 0 &&
		len(d.Memories) == 0 &&
		len(d.Assets) == 0 &&
		len(d.Settings) == 0
}
