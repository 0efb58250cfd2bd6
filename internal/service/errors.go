package service

import (
	"errors"
	"fmt"
)

var (
	// ErrConflictDeclined is returned when the user refuses to overwrite a
	// remote manifest written by another device. It is not a sync failure:
	// the state stays dirty and nothing is recorded as an error.
	ErrConflictDeclined = errors.New("remote overwrite declined")

	// ErrReplaceDeclined is returned when the user refuses to replace dirty
	// local data with the remote dataset.
	ErrReplaceDeclined = errors.New("local replace declined")

	// ErrRecoveryDeclined is returned when the user chose to only drop a
	// stale lock left by an unknown operation.
	ErrRecoveryDeclined = errors.New("lock recovery declined")

	ErrCorruptManifest            = errors.New("corrupt manifest")
	ErrUnsupportedManifestVersion = fmt.Errorf("%w: unsupported version", ErrCorruptManifest)

	// ErrSyncInProgress is returned by triggers that arrive while another
	// push or pull is running. The trigger is dropped.
	ErrSyncInProgress = errors.New("sync already in progress")

	ErrInvalidDataProvided = errors.New("invalid data provided")
)

// ManifestError describes which part of a manifest failed validation.
type ManifestError struct {
	Field  string
	Reason string
}

func (e *ManifestError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrCorruptManifest, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrCorruptManifest, e.Field, e.Reason)
}

func (e *ManifestError) Is(target error) bool {
	return target == ErrCorruptManifest
}

// isUserDecline reports whether err only means the user said no.
func isUserDecline(err error) bool {
	return errors.Is(err, ErrConflictDeclined) ||
		errors.Is(err, ErrReplaceDeclined) ||
		errors.Is(err, ErrRecoveryDeclined)
}
