package adapter

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [BlobStore] implementations. HTTP statuses are
// mapped onto them by mapHTTPError, so callers can stay backend-agnostic.
var (
	ErrBlobNotFound        = errors.New("blob not found")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrUnavailable         = errors.New("blob store unavailable")
	ErrInvalidKey          = errors.New("invalid blob key")
)

// TransportError wraps any failed blob store call with the operation and key
// it was issued for.
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("blob store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("blob store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func transportErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Key: key, Err: err}
}
