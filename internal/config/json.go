package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of the configuration file.
type StructuredJSONConfig struct {
	App struct {
		DeviceName string `json:"device_name"`
		LogFile    string `json:"log_file"`
		LogLevel   string `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Remote struct {
		Backend        string   `json:"backend"`
		HTTPAddress    string   `json:"http_address"`
		Token          string   `json:"token"`
		RequestTimeout Duration `json:"request_timeout"`
		Dir            string   `json:"dir"`
		Prefix         string   `json:"prefix"`
	} `json:"remote,omitempty"`

	Sync struct {
		Mode               string   `json:"mode"`
		Threshold          int      `json:"threshold"`
		Debounce           Duration `json:"debounce"`
		BatchSize          int      `json:"batch_size"`
		ManifestKey        string   `json:"manifest_key"`
		LockKey            string   `json:"lock_key"`
		PrivilegedSettings []string `json:"privileged_settings"`
	} `json:"sync,omitempty"`

	Workers struct {
		PullInterval         Duration `json:"pull_interval"`
		ConnectivityInterval Duration `json:"connectivity_interval"`
	} `json:"workers,omitempty"`

	BlobServer struct {
		HTTPAddress string `json:"http_address"`
		Dir         string `json:"dir"`
		Token       string `json:"token"`
	} `json:"blob_server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			DeviceName: jsonCfg.App.DeviceName,
			LogFile:    jsonCfg.App.LogFile,
			LogLevel:   jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Remote: Remote{
			Backend:        jsonCfg.Remote.Backend,
			HTTPAddress:    jsonCfg.Remote.HTTPAddress,
			Token:          jsonCfg.Remote.Token,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
			Dir:            jsonCfg.Remote.Dir,
			Prefix:         jsonCfg.Remote.Prefix,
		},
		Sync: Sync{
			Mode:               jsonCfg.Sync.Mode,
			Threshold:          jsonCfg.Sync.Threshold,
			Debounce:           time.Duration(jsonCfg.Sync.Debounce),
			BatchSize:          jsonCfg.Sync.BatchSize,
			ManifestKey:        jsonCfg.Sync.ManifestKey,
			LockKey:            jsonCfg.Sync.LockKey,
			PrivilegedSettings: jsonCfg.Sync.PrivilegedSettings,
		},
		Workers: Workers{
			PullInterval:         time.Duration(jsonCfg.Workers.PullInterval),
			ConnectivityInterval: time.Duration(jsonCfg.Workers.ConnectivityInterval),
		},
		BlobServer: BlobServer{
			HTTPAddress: jsonCfg.BlobServer.HTTPAddress,
			Dir:         jsonCfg.BlobServer.Dir,
			Token:       jsonCfg.BlobServer.Token,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
