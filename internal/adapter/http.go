package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/utils"
	"github.com/marine14f/geminipwa-sub000/models"
)

// KeysPayload is the JSON body of the list and bulk delete endpoints.
type KeysPayload struct {
	Keys []string `json:"keys"`
}

type httpBlobStore struct {
	client *utils.HTTPClient
	ns     namespace

	logger *logger.Logger
}

// NewHTTPBlobStore constructs an HTTP/REST implementation of [BlobStore].
// It normalises and validates the base URL from cfg.HTTPAddress, configures
// the underlying HTTP client with the resolved base URL and request timeout,
// and attaches cfg.Token as a bearer token to every request.
//
// The REST contract is:
//
//	PUT    /api/blobs/{key}   store a blob
//	GET    /api/blobs/{key}   fetch a blob (404 when absent)
//	DELETE /api/blobs/{key}   delete a blob
//	GET    /api/blobs         {"keys": [...]}
//	POST   /api/blobs/delete  {"keys": [...]}
//	GET    /api/health
func NewHTTPBlobStore(cfg config.ClientRemote, keys Keys, logger *logger.Logger) (BlobStore, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid remote http address: %w", err)
	}

	client := utils.NewHTTPClient(utils.HTTPClientOptions{
		BaseURL: baseURL,
		Timeout: cfg.RequestTimeout,
		Token:   cfg.Token,
	})

	return &httpBlobStore{
		client: client,
		ns:     namespace{prefix: cfg.Prefix, keys: keys},
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpBlobStore) Put(ctx context.Context, key string, data []byte) error {
	name, err := h.ns.name(key)
	if err != nil {
		return err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetPathParam("key", name).
		SetBody(data).
		Put("/api/blobs/{key}")
	if err != nil {
		return transportErr("put", key, err)
	}

	return transportErr("put", key, mapHTTPError(resp))
}

func (h *httpBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := h.ns.name(key)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("key", name).
		Get("/api/blobs/{key}")
	if err != nil {
		return nil, transportErr("get", key, err)
	}
	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, transportErr("get", key, err)
	}

	return resp.Body(), nil
}

func (h *httpBlobStore) List(ctx context.Context) ([]string, error) {
	var payload KeysPayload

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/api/blobs")
	if err != nil {
		return nil, transportErr("list", "", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, transportErr("list", "", err)
	}

	keys := h.ns.assetKeys(payload.Keys)
	sort.Strings(keys)
	return keys, nil
}

func (h *httpBlobStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name, err := h.ns.name(key)
		if err != nil {
			return err
		}
		names = append(names, name)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(KeysPayload{Keys: names}).
		Post("/api/blobs/delete")
	if err != nil {
		return transportErr("delete", "", err)
	}

	return transportErr("delete", "", mapHTTPError(resp))
}

func (h *httpBlobStore) PutLock(ctx context.Context, lock models.LockRecord) error {
	data, err := encodeLock(lock)
	if err != nil {
		return err
	}
	return h.Put(ctx, h.ns.keys.Lock, data)
}

func (h *httpBlobStore) GetLock(ctx context.Context) (*models.LockRecord, error) {
	data, err := h.Get(ctx, h.ns.keys.Lock)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lock := decodeLock(data)
	if !lock.Known() {
		logger.FromContext(ctx).Warn().
			Str("func", "httpBlobStore.GetLock").
			Str("operation", string(lock.Operation)).
			Msg("lock blob has no recognizable operation")
	}
	return lock, nil
}

func (h *httpBlobStore) DeleteLock(ctx context.Context) error {
	name, err := h.ns.name(h.ns.keys.Lock)
	if err != nil {
		return err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("key", name).
		Delete("/api/blobs/{key}")
	if err != nil {
		return transportErr("delete lock", h.ns.keys.Lock, err)
	}
	if err = mapHTTPError(resp); err != nil && !errors.Is(err, ErrBlobNotFound) {
		return transportErr("delete lock", h.ns.keys.Lock, err)
	}

	return nil
}

func (h *httpBlobStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return transportErr("ping", "", err)
	}

	return transportErr("ping", "", mapHTTPError(resp))
}
