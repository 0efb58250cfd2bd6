package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the local store. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrRecordNotFound is returned when a lookup by id matches no document
	// in the requested collection.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrUnknownCollection is returned when an operation names a collection
	// that is not part of the local schema.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrPartialReplace is matched by every [PartialReplaceError].
	ErrPartialReplace = errors.New("dataset replace failed")

	// ErrDecodingRecord is returned when a stored document cannot be decoded
	// into its entity type.
	ErrDecodingRecord = errors.New("failed to decode record")
)

// Low-level database operation errors. These are returned (or wrapped) by
// store methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan record row")

	// ErrScanningRows is returned when scanning during multi-row iteration
	// fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan record rows")
)

// Replace phases reported by [PartialReplaceError].
const (
	PhaseStage = "stage"
	PhaseSwap  = "swap"
)

// PartialReplaceError reports a failed dataset replace and the phase it
// failed in. A stage failure leaves the main collections untouched.
type PartialReplaceError struct {
	Phase string
	Err   error
}

func (e *PartialReplaceError) Error() string {
	return fmt.Sprintf("dataset replace failed during %s: %v", e.Phase, e.Err)
}

func (e *PartialReplaceError) Unwrap() error {
	return e.Err
}

func (e *PartialReplaceError) Is(target error) bool {
	return target == ErrPartialReplace
}
