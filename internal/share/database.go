package share

import (
	"io"
	"time"
)

// Operation kinds recorded in the journal.
const (
	KindShare           = "share"
	KindRevoke          = "revoke"
	KindRevokeDirectory = "revoke-dir"
	KindDeleteVersion   = "delete-version"
)

// Operation statuses.
const (
	StatusPending  = "pending"
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusInvalid  = "invalid"
	StatusDeclined = "declined"
)

// Operation is one journaled mutating command.
type Operation struct {
	ID         int64
	OpID       string
	Kind       string
	Target     string
	Version    string
	Recipient  string
	Status     string
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Database stores the operation journal and the sealed session of each server.
type Database interface {
	// CreateOperation inserts op with StatusPending and sets op.ID.
	CreateOperation(op *Operation) error

	// FinishOperation records the final status and message of an operation.
	FinishOperation(id int64, status, message string, finishedAt time.Time) error

	// ListOperations returns at most limit operations, newest first.
	ListOperations(limit int) ([]*Operation, error)

	// PutSession stores the sealed session cookie for serverURL, replacing any previous one.
	PutSession(serverURL string, sealed []byte, updatedAt time.Time) error

	// GetSession returns the sealed session for serverURL, or nil when none is stored.
	GetSession(serverURL string) ([]byte, error)

	// DeleteSession removes the stored session for serverURL.
	DeleteSession(serverURL string) error

	// CheckMigrations returns an error when the schema is not at the latest version.
	CheckMigrations() error

	Close() error
}

// Sealer encrypts secrets kept at rest.
type Sealer interface {
	// Setup performs one-time key generation. Called during `sharectl config init`.
	Setup() error

	// Seal encrypts data read from r and writes ciphertext to w.
	Seal(r io.Reader, w io.Writer) error

	// Open decrypts ciphertext read from r and writes plaintext to w.
	Open(r io.Reader, w io.Writer) error

	// IsConfigured returns true if the key material exists.
	IsConfigured() bool
}
