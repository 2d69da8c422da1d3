package database

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"sharectl/internal/share"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newOperation(kind, target string, startedAt time.Time) *share.Operation {
	return &share.Operation{
		OpID:      "op-" + target,
		Kind:      kind,
		Target:    target,
		Version:   "2",
		Recipient: "bob@example.com",
		StartedAt: startedAt,
	}
}

func TestSQLiteDatabase_CreateOperation(t *testing.T) {
	t.Run("assigns id and pending status", func(t *testing.T) {
		db := newTestDB(t)
		op := newOperation(share.KindShare, "F1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

		if err := db.CreateOperation(op); err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}
		if op.ID == 0 {
			t.Error("ID = 0, want assigned id")
		}
		if op.Status != share.StatusPending {
			t.Errorf("Status = %q, want %q", op.Status, share.StatusPending)
		}

		ops, err := db.ListOperations(10)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 1 {
			t.Fatalf("len(ops) = %d, want 1", len(ops))
		}
		got := ops[0]
		if got.OpID != "op-F1" || got.Kind != share.KindShare || got.Target != "F1" {
			t.Errorf("operation = %+v, want op-F1/share/F1", got)
		}
		if got.Version != "2" || got.Recipient != "bob@example.com" {
			t.Errorf("Version/Recipient = %q/%q, want 2/bob@example.com", got.Version, got.Recipient)
		}
		if !got.StartedAt.Equal(op.StartedAt) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, op.StartedAt)
		}
		if got.FinishedAt != nil {
			t.Errorf("FinishedAt = %v, want nil", got.FinishedAt)
		}
	})
}

func TestSQLiteDatabase_FinishOperation(t *testing.T) {
	t.Run("records status and message", func(t *testing.T) {
		db := newTestDB(t)
		start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		op := newOperation(share.KindRevoke, "F1", start)
		if err := db.CreateOperation(op); err != nil {
			t.Fatalf("CreateOperation() error = %v", err)
		}

		finish := start.Add(2 * time.Second)
		if err := db.FinishOperation(op.ID, share.StatusSuccess, "Share successfully revoked!", finish); err != nil {
			t.Fatalf("FinishOperation() error = %v", err)
		}

		ops, err := db.ListOperations(1)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		got := ops[0]
		if got.Status != share.StatusSuccess {
			t.Errorf("Status = %q, want %q", got.Status, share.StatusSuccess)
		}
		if got.Message != "Share successfully revoked!" {
			t.Errorf("Message = %q", got.Message)
		}
		if got.FinishedAt == nil || !got.FinishedAt.Equal(finish) {
			t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finish)
		}
	})

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		db := newTestDB(t)

		err := db.FinishOperation(42, share.StatusError, "", time.Now())
		if !errors.Is(err, share.ErrNotFound) {
			t.Errorf("FinishOperation() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteDatabase_ListOperations(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, target := range []string{"F1", "F2", "F3"} {
		op := newOperation(share.KindShare, target, start.Add(time.Duration(i)*time.Minute))
		if err := db.CreateOperation(op); err != nil {
			t.Fatalf("CreateOperation(%s) error = %v", target, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		ops, err := db.ListOperations(10)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 3 {
			t.Fatalf("len(ops) = %d, want 3", len(ops))
		}
		for i, want := range []string{"F3", "F2", "F1"} {
			if ops[i].Target != want {
				t.Errorf("ops[%d].Target = %q, want %q", i, ops[i].Target, want)
			}
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		ops, err := db.ListOperations(2)
		if err != nil {
			t.Fatalf("ListOperations() error = %v", err)
		}
		if len(ops) != 2 {
			t.Errorf("len(ops) = %d, want 2", len(ops))
		}
	})
}

func TestSQLiteDatabase_Sessions(t *testing.T) {
	const server = "https://files.example.com"

	t.Run("returns nil when no session stored", func(t *testing.T) {
		db := newTestDB(t)

		got, err := db.GetSession(server)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetSession() = %q, want nil", got)
		}
	})

	t.Run("put replaces previous session", func(t *testing.T) {
		db := newTestDB(t)
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := db.PutSession(server, []byte("first"), now); err != nil {
			t.Fatalf("PutSession() error = %v", err)
		}
		if err := db.PutSession(server, []byte("second"), now.Add(time.Hour)); err != nil {
			t.Fatalf("PutSession() error = %v", err)
		}

		got, err := db.GetSession(server)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if !bytes.Equal(got, []byte("second")) {
			t.Errorf("GetSession() = %q, want %q", got, "second")
		}
	})

	t.Run("sessions are keyed by server", func(t *testing.T) {
		db := newTestDB(t)
		now := time.Now()

		if err := db.PutSession(server, []byte("a"), now); err != nil {
			t.Fatalf("PutSession() error = %v", err)
		}
		got, err := db.GetSession("https://other.example.com")
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetSession(other) = %q, want nil", got)
		}
	})

	t.Run("delete removes session", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.PutSession(server, []byte("a"), time.Now()); err != nil {
			t.Fatalf("PutSession() error = %v", err)
		}
		if err := db.DeleteSession(server); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}
		got, err := db.GetSession(server)
		if err != nil {
			t.Fatalf("GetSession() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetSession() after delete = %q, want nil", got)
		}
	})

	t.Run("delete of missing session is not an error", func(t *testing.T) {
		db := newTestDB(t)

		if err := db.DeleteSession(server); err != nil {
			t.Errorf("DeleteSession() error = %v", err)
		}
	})
}

func TestSQLiteDatabase_CheckMigrations(t *testing.T) {
	db := newTestDB(t)

	if err := db.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}
}
