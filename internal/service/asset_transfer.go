package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
)

// PushDiff is the asset work of one push.
type PushDiff struct {
	ToUpload []string
	ToDelete []string
}

// DiffForPush returns local−remote as uploads and remote−local as deletes.
// Keys are compared by exact string equality.
func DiffForPush(local, remote []string) PushDiff {
	return PushDiff{
		ToUpload: difference(local, remote),
		ToDelete: difference(remote, local),
	}
}

// DiffForPull returns the required keys that are not available locally.
func DiffForPull(required, available []string) []string {
	return difference(required, available)
}

func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, key := range b {
		exclude[key] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0)
	for _, key := range a {
		if _, ok := exclude[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func union(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, key := range a {
		set[key] = struct{}{}
	}
	for _, key := range b {
		set[key] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func intersection(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, key := range b {
		in[key] = struct{}{}
	}
	out := make([]string, 0)
	for _, key := range difference(a, nil) {
		if _, ok := in[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

// assetTransfer moves blobs in batches. Items of one batch run concurrently
// and the first failure aborts the whole step.
type assetTransfer struct {
	remote    adapter.BlobStore
	notifier  tui.Notifier
	batchSize int
}

func newAssetTransfer(remote adapter.BlobStore, notifier tui.Notifier, batchSize int) *assetTransfer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &assetTransfer{remote: remote, notifier: notifier, batchSize: batchSize}
}

// Upload puts every key of keys from blobs.
func (t *assetTransfer) Upload(ctx context.Context, keys []string, blobs map[string][]byte) error {
	return t.run(ctx, "Uploading assets", keys, func(ctx context.Context, key string) error {
		data, ok := blobs[key]
		if !ok {
			return fmt.Errorf("%w: no local payload for asset %s", ErrInvalidDataProvided, key)
		}
		return t.remote.Put(ctx, key, data)
	})
}

// Download fetches every key of keys.
func (t *assetTransfer) Download(ctx context.Context, keys []string) (map[string][]byte, error) {
	var mu sync.Mutex
	out := make(map[string][]byte, len(keys))

	err := t.run(ctx, "Downloading assets", keys, func(ctx context.Context, key string) error {
		data, err := t.remote.Get(ctx, key)
		if err != nil {
			return err
		}
		mu.Lock()
		out[key] = data
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes keys from the remote in batches.
func (t *assetTransfer) Delete(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += t.batchSize {
		end := min(start+t.batchSize, len(keys))
		if err := t.remote.DeleteMany(ctx, keys[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (t *assetTransfer) run(ctx context.Context, title string, keys []string, do func(context.Context, string) error) error {
	if len(keys) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	total := len(keys)

	t.notifier.ShowProgress(title)
	defer t.notifier.HideProgress()
	t.notifier.UpdateProgress(title, 0, total)

	done := 0
	for start := 0; start < total; start += t.batchSize {
		batch := keys[start:min(start+t.batchSize, total)]

		g, gctx := errgroup.WithContext(ctx)
		for _, key := range batch {
			g.Go(func() error {
				if err := do(gctx, key); err != nil {
					log.Err(err).Str("func", "assetTransfer.run").Str("asset_key", key).Msg("asset transfer failed")
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		done += len(batch)
		t.notifier.UpdateProgress(title, done, total)
	}

	log.Debug().Str("func", "assetTransfer.run").Int("count", total).Msg(title)
	return nil
}
