package workers

import (
	"context"
	"time"
)

// PullWorker adapts a start/stop pull job to the Worker interface.
type PullWorker struct {
	job      Job
	interval time.Duration
}

func NewPullWorker(job Job, interval time.Duration) *PullWorker {
	return &PullWorker{job: job, interval: interval}
}

func (w *PullWorker) Run(ctx context.Context) error {
	w.job.Start(ctx, w.interval)
	<-ctx.Done()
	w.job.Stop()
	return nil
}
