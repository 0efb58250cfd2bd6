package config

import "fmt"

// BlobServerConfig is the configuration view of the reference blob server.
type BlobServerConfig struct {
	HTTPAddress string
	Dir         string
	Token       string
	LogLevel    string
}

// GetBlobServerConfig builds and validates the blob server view of the merged
// structured configuration.
func GetBlobServerConfig(flags *Flags) (*BlobServerConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := &BlobServerConfig{
		HTTPAddress: cfg.BlobServer.HTTPAddress,
		Dir:         cfg.BlobServer.Dir,
		Token:       cfg.BlobServer.Token,
		LogLevel:    cfg.App.LogLevel,
	}

	return serverCfg, serverCfg.validate()
}
