// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/marine14f/geminipwa-sub000/models"
)

const (
	assetKeyExt      = ".webp"
	randomSuffixLen  = 9
	randomSuffixBase = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ProfileIconKey returns the asset key of a profile icon.
func ProfileIconKey(profileID string) string {
	return "profile_" + profileID + "_icon" + assetKeyExt
}

// NamedAssetKey returns the asset key of a user-imported asset.
func NamedAssetKey(name string, createdAt time.Time) string {
	return fmt.Sprintf("asset_%s_%d%s", SanitizeAssetName(name), createdAt.UnixMilli(), assetKeyExt)
}

// InlineImageKey returns the asset key of an image attached to a message.
func InlineImageKey(at time.Time, suffix string) string {
	return fmt.Sprintf("img_%d_%s", at.UnixMilli(), suffix)
}

// SanitizeAssetName keeps ASCII letters, digits, '_' and '-' and maps every
// other rune to '_'.
func SanitizeAssetName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func randomSuffix() string {
	max := big.NewInt(int64(len(randomSuffixBase)))
	out := make([]byte, randomSuffixLen)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = randomSuffixBase[n.Int64()]
	}
	return string(out)
}

// IndexResult is the output of one [AssetIndexer.Index] run.
type IndexResult struct {
	// Dataset is the manifest candidate: every binary replaced by its key.
	Dataset *models.Dataset
	// Blobs maps every key with a local payload to its bytes.
	Blobs map[string][]byte
	// LocalAssetKeys lists every key with a local payload, sorted.
	LocalAssetKeys []string
	// Changed holds the entities whose keys were assigned in this run, with
	// payloads kept. They must be written back to the local store.
	Changed *models.Dataset
}

// AssetIndexer assigns asset keys to binaries that do not have one yet.
type AssetIndexer struct {
	now    func() time.Time
	suffix func() string
}

func NewAssetIndexer() *AssetIndexer {
	return &AssetIndexer{now: time.Now, suffix: randomSuffix}
}

// Index keys every binary of ds. ds itself is left untouched. Keys that are
// already set are reused as they are.
func (x *AssetIndexer) Index(ds *models.Dataset) IndexResult {
	res := IndexResult{
		Dataset: &models.Dataset{},
		Blobs:   make(map[string][]byte),
		Changed: &models.Dataset{},
	}

	for _, p := range ds.Profiles {
		keyed, changed := x.indexProfile(p, res.Blobs)
		if changed {
			res.Changed.Profiles = append(res.Changed.Profiles, keyed)
		}
		res.Dataset.Profiles = append(res.Dataset.Profiles, stripProfile(keyed))
	}

	for _, c := range ds.Chats {
		keyed, changed := x.indexChat(c, res.Blobs)
		if changed {
			res.Changed.Chats = append(res.Changed.Chats, keyed)
		}
		res.Dataset.Chats = append(res.Dataset.Chats, stripChat(keyed))
	}

	for _, a := range ds.Assets {
		changed := false
		if a.AssetKey == "" {
			a.AssetKey = NamedAssetKey(a.Name, a.CreatedAt)
			changed = true
		}
		if len(a.Data) > 0 {
			res.Blobs[a.AssetKey] = a.Data
		}
		if changed {
			res.Changed.Assets = append(res.Changed.Assets, a)
		}
		a.Data = nil
		res.Dataset.Assets = append(res.Dataset.Assets, a)
	}

	res.Dataset.Memories = append(res.Dataset.Memories, ds.Memories...)
	res.Dataset.Settings = append(res.Dataset.Settings, ds.Settings...)

	res.LocalAssetKeys = make([]string, 0, len(res.Blobs))
	for key := range res.Blobs {
		res.LocalAssetKeys = append(res.LocalAssetKeys, key)
	}
	sort.Strings(res.LocalAssetKeys)

	return res
}

func (x *AssetIndexer) indexProfile(p models.Profile, blobs map[string][]byte) (models.Profile, bool) {
	if p.Icon == nil {
		return p, false
	}

	icon := *p.Icon
	changed := false
	if icon.AssetKey == "" && icon.HasPayload() {
		icon.AssetKey = ProfileIconKey(p.ID)
		changed = true
	}
	if icon.AssetKey != "" && p.IconAssetKey != icon.AssetKey {
		p.IconAssetKey = icon.AssetKey
		changed = true
	}
	if icon.HasPayload() {
		blobs[icon.AssetKey] = icon.Data
	}
	p.Icon = &icon

	return p, changed
}

func (x *AssetIndexer) indexChat(c models.Chat, blobs map[string][]byte) (models.Chat, bool) {
	if c.Messages == nil {
		return c, false
	}

	changed := false
	messages := make([]models.Message, len(c.Messages))
	for i, m := range c.Messages {
		if len(m.Attachments) > 0 {
			attachments := make([]models.Attachment, len(m.Attachments))
			for j, a := range m.Attachments {
				if a.AssetKey == "" && a.HasPayload() {
					a.AssetKey = InlineImageKey(x.now(), x.suffix())
					changed = true
				}
				if a.HasPayload() {
					blobs[a.AssetKey] = a.Data
				}
				attachments[j] = a
			}
			m.Attachments = attachments
		}
		messages[i] = m
	}
	c.Messages = messages

	return c, changed
}

func stripProfile(p models.Profile) models.Profile {
	if p.Icon != nil {
		icon := *p.Icon
		icon.Data = nil
		p.Icon = &icon
	}
	return p
}

func stripChat(c models.Chat) models.Chat {
	if c.Messages == nil {
		return c
	}
	messages := make([]models.Message, len(c.Messages))
	for i, m := range c.Messages {
		if len(m.Attachments) > 0 {
			attachments := make([]models.Attachment, len(m.Attachments))
			for j, a := range m.Attachments {
				a.Data = nil
				attachments[j] = a
			}
			m.Attachments = attachments
		}
		messages[i] = m
	}
	c.Messages = messages
	return c
}

// collectBlobs maps every keyed payload of ds to its bytes.
func collectBlobs(ds *models.Dataset) map[string][]byte {
	blobs := make(map[string][]byte)
	add := func(key string, data []byte) {
		if key != "" && len(data) > 0 {
			blobs[key] = data
		}
	}

	for _, p := range ds.Profiles {
		if p.Icon != nil {
			add(p.Icon.AssetKey, p.Icon.Data)
		}
	}
	for _, c := range ds.Chats {
		for _, m := range c.Messages {
			for _, a := range m.Attachments {
				add(a.AssetKey, a.Data)
			}
		}
	}
	for _, a := range ds.Assets {
		add(a.AssetKey, a.Data)
	}

	return blobs
}

// attachPayloads fills the payload of every keyed binary of ds from blobs.
// A profile that only carries IconAssetKey gets its Icon back.
func attachPayloads(ds *models.Dataset, blobs map[string][]byte) {
	for i := range ds.Profiles {
		p := &ds.Profiles[i]
		if p.Icon == nil && p.IconAssetKey != "" {
			p.Icon = &models.Attachment{AssetKey: p.IconAssetKey}
		}
		if p.Icon != nil && p.Icon.AssetKey != "" {
			icon := *p.Icon
			icon.Data = blobs[icon.AssetKey]
			p.Icon = &icon
		}
	}

	for i := range ds.Chats {
		c := &ds.Chats[i]
		for j := range c.Messages {
			m := &c.Messages[j]
			for k := range m.Attachments {
				if key := m.Attachments[k].AssetKey; key != "" {
					m.Attachments[k].Data = blobs[key]
				}
			}
		}
	}

	for i := range ds.Assets {
		ds.Assets[i].Data = blobs[ds.Assets[i].AssetKey]
	}
}
