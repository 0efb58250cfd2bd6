package adapter

import (
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// NewBlobStore picks the backend configured in remoteCfg. The reserved
// manifest and lock names come from syncCfg.
func NewBlobStore(remoteCfg config.ClientRemote, syncCfg config.ClientSync, logger *logger.Logger) (BlobStore, error) {
	keys := Keys{Manifest: syncCfg.ManifestKey, Lock: syncCfg.LockKey}

	switch remoteCfg.Backend {
	case config.BackendHTTP:
		return NewHTTPBlobStore(remoteCfg, keys, logger)
	case config.BackendFS:
		fsStore, err := NewFSBlobStore(remoteCfg.Dir, remoteCfg.Prefix, keys, logger)
		if err != nil {
			return nil, err
		}
		return fsStore, nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", remoteCfg.Backend)
	}
}
