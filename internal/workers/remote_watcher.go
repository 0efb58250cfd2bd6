package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// RemoteWatcher pulls whenever another device rewrites the remote manifest.
// Only backends with change notification can be watched.
type RemoteWatcher struct {
	watcher Watcher
	puller  Puller
	// ignore reports errors that are expected and not worth logging
	ignore func(error) bool
	pulls  chan struct{}
}

func NewRemoteWatcher(watcher Watcher, puller Puller, ignore func(error) bool) *RemoteWatcher {
	if ignore == nil {
		ignore = func(error) bool { return false }
	}
	return &RemoteWatcher{
		watcher: watcher,
		puller:  puller,
		ignore:  ignore,
		pulls:   make(chan struct{}, 1),
	}
}

// Run watches until ctx is done. Change bursts collapse into one pending
// pull, and pulls never run concurrently.
func (w *RemoteWatcher) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-w.pulls:
				w.pull(ctx)
			}
		}
	}()

	err := w.watcher.Watch(ctx, func() {
		select {
		case w.pulls <- struct{}{}:
		default:
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch remote: %w", err)
	}
	return nil
}

func (w *RemoteWatcher) pull(ctx context.Context) {
	err := w.puller.Pull(ctx)
	if err == nil || w.ignore(err) || ctx.Err() != nil {
		return
	}
	logger.FromContext(ctx).Err(err).Str("func", "RemoteWatcher.pull").Msg("pull after remote change failed")
}
