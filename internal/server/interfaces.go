package server

import "context"

// Server is a runnable transport server.
type Server interface {
	// RunServer serves until ctx is cancelled or a termination signal
	// arrives, then shuts down gracefully.
	RunServer(ctx context.Context) error

	// Shutdown stops the server, waiting at most until ctx is done.
	Shutdown(ctx context.Context) error
}
