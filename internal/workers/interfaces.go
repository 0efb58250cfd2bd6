// Package workers runs the background activities of a syncing device:
// the periodic pull, connectivity probing and remote change watching.
// It defines the Worker interface and a Workers aggregate that runs
// several workers under one context.
package workers

import (
	"context"
	"time"
)

// Worker is a long running background activity.
//
// Run blocks until ctx is cancelled or the worker cannot continue. A worker
// that stops because ctx was cancelled returns nil.
type Worker interface {
	Run(ctx context.Context) error
}

// Pinger reports whether the remote is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NetworkListener is notified when the remote becomes reachable again.
type NetworkListener interface {
	OnNetworkRestored(ctx context.Context) error
}

// Puller adopts the remote dataset.
type Puller interface {
	Pull(ctx context.Context) error
}

// Watcher reports remote manifest changes.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Job is a start/stop style background job.
type Job interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
