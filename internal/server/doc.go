// Package server runs the blob server: it owns the HTTP listener, waits for
// a termination signal and shuts the listener down gracefully.
package server
