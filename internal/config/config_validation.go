// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/marine14f/geminipwa-sub000/models"
)

// validate checks that the final merged [StructuredConfig] satisfies the
// invariants shared by every binary. View-specific rules live on the views.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.BatchSize < 0 || cfg.Sync.Threshold < 0 {
		return fmt.Errorf("%w: negative batch size or threshold", ErrInvalidSyncConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Remote.Backend {
	case BackendHTTP:
		if cfg.Remote.HTTPAddress == "" || cfg.Remote.RequestTimeout <= 0 {
			return fmt.Errorf("%w: http backend needs an address and a request timeout", ErrInvalidRemoteConfigs)
		}
	case BackendFS:
		if cfg.Remote.Dir == "" {
			return fmt.Errorf("%w: fs backend needs a directory", ErrInvalidRemoteConfigs)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidRemoteConfigs, cfg.Remote.Backend)
	}

	if !cfg.Sync.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSyncConfigs, cfg.Sync.Mode)
	}
	if cfg.Sync.Mode == models.SyncModeThreshold && cfg.Sync.Threshold < 1 {
		return fmt.Errorf("%w: threshold must be at least 1", ErrInvalidSyncConfigs)
	}
	if cfg.Sync.Debounce < 0 || cfg.Sync.BatchSize < 1 {
		return fmt.Errorf("%w: debounce must be non-negative and batch size positive", ErrInvalidSyncConfigs)
	}
	if cfg.Sync.ManifestKey == "" || cfg.Sync.LockKey == "" || cfg.Sync.ManifestKey == cfg.Sync.LockKey {
		return fmt.Errorf("%w: manifest and lock keys must be distinct and non-empty", ErrInvalidSyncConfigs)
	}

	if cfg.Workers.PullInterval < 0 || cfg.Workers.ConnectivityInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *BlobServerConfig) validate() error {
	if cfg.HTTPAddress == "" || cfg.Dir == "" {
		return ErrInvalidBlobServerConfigs
	}

	return nil
}
