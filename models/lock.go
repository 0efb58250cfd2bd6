package models

// LockOperation names the sync operation recorded in a LockRecord.
type LockOperation string

const (
	LockPush LockOperation = "push"
	LockPull LockOperation = "pull"
)

// LockRecord is the ephemeral remote marker of an in-flight sync operation.
// Its presence on startup means the previous run never reached cleanup.
type LockRecord struct {
	Operation LockOperation `json:"operation"`
	Timestamp string        `json:"timestamp"`
}

// Known reports whether the record names an operation this engine can resume.
// Legacy or malformed records return false.
func (l LockRecord) Known() bool {
	return l.Operation == LockPush || l.Operation == LockPull
}
