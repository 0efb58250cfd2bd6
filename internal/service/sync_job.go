package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

type syncJob struct {
	puller Puller

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that calls puller.Pull on a ticker. The job
// is idle until Start is called.
func NewSyncJob(puller Puller) SyncJob {
	return &syncJob{puller: puller}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that pulls every interval. A zero or
// negative interval disables the job. The goroutine exits when ctx is
// cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	j.Stop()

	if interval <= 0 {
		return
	}

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				err := j.puller.Pull(jobCtx)
				if err != nil && !errors.Is(err, ErrSyncInProgress) && !isUserDecline(err) {
					logger.FromContext(jobCtx).Err(err).Str("func", "syncJob.Start").Msg("periodic pull failed")
				}
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the
// job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
