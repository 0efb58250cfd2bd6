package models

import "time"

// SyncError records the last failed sync attempt.
type SyncError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncState is the device-local synchronization state.
//
// It is persisted in the privileged "syncState" setting and never travels
// through the remote dataset. IsSyncing and PushScheduled are volatile and
// are not persisted.
type SyncState struct {
	LastSyncID    *string    `json:"lastSyncId"`
	IsDirty       bool       `json:"isDirty"`
	IsSyncing     bool       `json:"-"`
	PushScheduled bool       `json:"-"`
	LastError     *SyncError `json:"lastError"`
	MutationCount int        `json:"mutationCount"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`
}

// LastSyncIDValue returns the last synced id or an empty string.
func (s SyncState) LastSyncIDValue() string {
	if s.LastSyncID == nil {
		return ""
	}
	return *s.LastSyncID
}

// Phase derives the orchestrator state from the flags.
func (s SyncState) Phase() SyncPhase {
	switch {
	case s.IsSyncing:
		return PhaseSyncing
	case s.LastError != nil:
		return PhaseError
	case s.IsDirty:
		return PhaseDirty
	default:
		return PhaseIdle
	}
}

// SyncPhase is a coarse state of the sync orchestrator.
type SyncPhase string

const (
	PhaseIdle    SyncPhase = "idle"
	PhaseDirty   SyncPhase = "dirty"
	PhaseSyncing SyncPhase = "syncing"
	PhaseError   SyncPhase = "error"
)

// SyncMode controls how local mutations trigger pushes.
type SyncMode string

const (
	// SyncModeManual never triggers a push automatically.
	SyncModeManual SyncMode = "manual"
	// SyncModeInstant pushes after the debounce window following every mutation.
	SyncModeInstant SyncMode = "instant"
	// SyncModeThreshold pushes after the debounce window on every Nth mutation.
	SyncModeThreshold SyncMode = "threshold"
)

// Valid reports whether m is a known mode.
func (m SyncMode) Valid() bool {
	switch m {
	case SyncModeManual, SyncModeInstant, SyncModeThreshold:
		return true
	}
	return false
}
