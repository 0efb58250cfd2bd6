package service

import (
	"context"
	"time"
)

// IDGenerator produces the opaque syncId of every committed manifest.
type IDGenerator interface {
	Generate() string
}

// SyncTrigger is what local mutations notify.
type SyncTrigger interface {
	// MarkDirty records a mutation and lets the scheduler decide when to push.
	MarkDirty(ctx context.Context) error
	// ForcePush pushes right away. Used for structural edits.
	ForcePush(ctx context.Context) error
}

// Puller is anything that can adopt the remote dataset.
type Puller interface {
	Pull(ctx context.Context) error
}

// SyncJob periodically pulls in the background.
type SyncJob interface {
	// Start launches the background goroutine. A non-positive interval
	// leaves the job stopped. A running job is stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the goroutine to exit and waits until it has.
	Stop()
}
