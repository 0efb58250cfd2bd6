package adapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marine14f/geminipwa-sub000/models"
)

// Keys names the two reserved blobs of a sync remote. Both are hidden from
// List. Zero values reserve nothing, which is what the blob server wants.
type Keys struct {
	Manifest string
	Lock     string
}

// ValidateKey rejects keys that cannot be stored as a single flat object
// name on every backend.
func ValidateKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.HasPrefix(key, "."):
		// hidden names are reserved for temp files
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidKey, key)
	case strings.ContainsAny(key, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	}
	return nil
}

// namespace applies an optional prefix to remote object names.
type namespace struct {
	prefix string
	keys   Keys
}

func (n namespace) name(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return n.prefix + key, nil
}

// assetKeys turns raw remote names into asset keys: names outside the
// prefix and the reserved blobs are dropped.
func (n namespace) assetKeys(names []string) []string {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, n.prefix) {
			continue
		}
		key := strings.TrimPrefix(name, n.prefix)
		if key == "" || key == n.keys.Manifest || key == n.keys.Lock {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func encodeLock(lock models.LockRecord) ([]byte, error) {
	data, err := json.Marshal(lock)
	if err != nil {
		return nil, fmt.Errorf("encode lock: %w", err)
	}
	return data, nil
}

// decodeLock never fails: a legacy or garbled lock still signals an
// interrupted operation, just not which one.
func decodeLock(data []byte) *models.LockRecord {
	var lock models.LockRecord
	if err := json.Unmarshal(data, &lock); err != nil {
		return &models.LockRecord{}
	}
	return &lock
}
