// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging defaults, environment
// variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings such as the device label and logging.
	App App `envPrefix:"APP_"`

	// Storage holds configuration of the device-local store.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds configuration of the shared blob store.
	Remote Remote `envPrefix:"REMOTE_"`

	// Sync holds the sync engine policy.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds intervals of background workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// BlobServer holds settings of the reference blob server.
	BlobServer BlobServer `envPrefix:"BLOBSERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level settings.
type App struct {
	// DeviceName labels this device in logs.
	// Env: APP_DEVICE_NAME
	DeviceName string `env:"DEVICE_NAME"`

	// LogFile is the path of the rotated client log file.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// LogLevel is one of debug, info, warn, error.
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Storage groups the configuration of the local store.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite database file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Remote holds settings of the shared blob store all devices sync through.
type Remote struct {
	// Backend selects the blob store implementation: "http" or "fs".
	// Env: REMOTE_BACKEND
	Backend string `env:"BACKEND"`

	// HTTPAddress is the base address of the HTTP blob service.
	// Env: REMOTE_HTTP_ADDRESS
	HTTPAddress string `env:"HTTP_ADDRESS"`

	// Token is the bearer token presented to the HTTP blob service.
	// Env: REMOTE_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout bounds a single HTTP request.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Dir is the directory used by the "fs" backend (e.g. a shared folder).
	// Env: REMOTE_DIR
	Dir string `env:"DIR"`

	// Prefix namespaces every key on the remote, so several datasets can
	// share one bucket.
	// Env: REMOTE_PREFIX
	Prefix string `env:"PREFIX"`
}

// Sync holds the sync engine policy.
type Sync struct {
	// Mode is one of manual, instant, threshold.
	// Env: SYNC_MODE
	Mode string `env:"MODE"`

	// Threshold is N for the threshold mode: a push is scheduled on every
	// Nth local mutation.
	// Env: SYNC_THRESHOLD
	Threshold int `env:"THRESHOLD"`

	// Debounce is the quiet period after the last mutation before an
	// automatic push starts.
	// Env: SYNC_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// BatchSize is the number of assets transferred concurrently.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// ManifestKey is the remote name of the manifest blob.
	// Env: SYNC_MANIFEST_KEY
	ManifestKey string `env:"MANIFEST_KEY"`

	// LockKey is the remote name of the advisory lock blob.
	// Env: SYNC_LOCK_KEY
	LockKey string `env:"LOCK_KEY"`

	// PrivilegedSettings are setting keys that never leave the device and
	// survive a full replace.
	// Env: SYNC_PRIVILEGED_SETTINGS (comma separated)
	PrivilegedSettings []string `env:"PRIVILEGED_SETTINGS"`
}

// Workers holds intervals of background workers.
type Workers struct {
	// PullInterval is the period of the background pull job. Zero disables it.
	// Env: WORKERS_PULL_INTERVAL
	PullInterval time.Duration `env:"PULL_INTERVAL"`

	// ConnectivityInterval is how often the remote is probed to detect a
	// restored network.
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval time.Duration `env:"CONNECTIVITY_INTERVAL"`
}

// BlobServer holds settings of the reference blob server.
type BlobServer struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: BLOBSERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// Dir is the directory blobs are stored in.
	// Env: BLOBSERVER_DIR
	Dir string `env:"DIR"`

	// Token, when set, is required as a bearer token on every request.
	// Env: BLOBSERVER_TOKEN
	Token string `env:"TOKEN"`
}

// defaults returns the lowest-priority configuration layer.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			DeviceName: "default",
			LogLevel:   "info",
		},
		Storage: Storage{
			DB: DB{DSN: "chatsync.db"},
		},
		Remote: Remote{
			Backend:        BackendHTTP,
			RequestTimeout: 30 * time.Second,
		},
		Sync: Sync{
			Mode:               "instant",
			Threshold:          5,
			Debounce:           3 * time.Second,
			BatchSize:          5,
			ManifestKey:        "sync_manifest.json",
			LockKey:            "sync_lock.json",
			PrivilegedSettings: []string{"apiKey", "syncState"},
		},
		Workers: Workers{
			ConnectivityInterval: 30 * time.Second,
		},
		BlobServer: BlobServer{
			HTTPAddress: "0.0.0.0:8080",
			Dir:         "blobs",
		},
	}
}

// Remote backends.
const (
	BackendHTTP = "http"
	BackendFS   = "fs"
)

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (later sources win
// for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (when flags is non-nil)
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
}
