package config

import (
	"fmt"
	"time"

	"github.com/marine14f/geminipwa-sub000/models"
)

// ClientApp holds process-level client settings.
type ClientApp struct {
	DeviceName string
	LogFile    string
	LogLevel   string
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientRemote holds settings of the blob store the client syncs through.
type ClientRemote struct {
	Backend        string
	HTTPAddress    string
	Token          string
	RequestTimeout time.Duration
	Dir            string
	Prefix         string
}

// ClientSync is the sync engine policy.
type ClientSync struct {
	Mode               models.SyncMode
	Threshold          int
	Debounce           time.Duration
	BatchSize          int
	ManifestKey        string
	LockKey            string
	PrivilegedSettings []string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	PullInterval         time.Duration
	ConnectivityInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Storage ClientStorage
	Remote  ClientRemote
	Sync    ClientSync
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig(flags *Flags) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)

	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			DeviceName: cfg.App.DeviceName,
			LogFile:    cfg.App.LogFile,
			LogLevel:   cfg.App.LogLevel,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Remote: ClientRemote{
			Backend:        cfg.Remote.Backend,
			HTTPAddress:    cfg.Remote.HTTPAddress,
			Token:          cfg.Remote.Token,
			RequestTimeout: cfg.Remote.RequestTimeout,
			Dir:            cfg.Remote.Dir,
			Prefix:         cfg.Remote.Prefix,
		},
		Sync: ClientSync{
			Mode:               models.SyncMode(cfg.Sync.Mode),
			Threshold:          cfg.Sync.Threshold,
			Debounce:           cfg.Sync.Debounce,
			BatchSize:          cfg.Sync.BatchSize,
			ManifestKey:        cfg.Sync.ManifestKey,
			LockKey:            cfg.Sync.LockKey,
			PrivilegedSettings: cfg.Sync.PrivilegedSettings,
		},
		Workers: ClientWorkers{
			PullInterval:         cfg.Workers.PullInterval,
			ConnectivityInterval: cfg.Workers.ConnectivityInterval,
		},
	}
}
