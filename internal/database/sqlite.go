package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sharectl/internal/database/migrations"
	"sharectl/internal/share"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the share.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path and migrates it to the latest schema.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a fresh database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Operation journal

func (s *SQLiteDatabase) CreateOperation(op *share.Operation) error {
	op.Status = share.StatusPending
	res, err := s.db.Exec(`
		INSERT INTO operations (op_id, kind, target, version, recipient, status, message, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		op.OpID, op.Kind, op.Target, op.Version, op.Recipient, op.Status, op.Message, op.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading operation id: %w", err)
	}
	op.ID = id
	return nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status, message string, finishedAt time.Time) error {
	res, err := s.db.Exec(`UPDATE operations SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		status, message, finishedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("finishing operation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing operation %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("operation %d: %w", id, share.ErrNotFound)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*share.Operation, error) {
	rows, err := s.db.Query(`
		SELECT id, op_id, kind, target, version, recipient, status, message, started_at, finished_at
		FROM operations
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*share.Operation
	for rows.Next() {
		var (
			op       share.Operation
			finished sql.NullTime
		)
		if err := rows.Scan(&op.ID, &op.OpID, &op.Kind, &op.Target, &op.Version, &op.Recipient,
			&op.Status, &op.Message, &op.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Sessions

func (s *SQLiteDatabase) PutSession(serverURL string, sealed []byte, updatedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (server_url, sealed, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (server_url) DO UPDATE SET sealed = excluded.sealed, updated_at = excluded.updated_at`,
		serverURL, sealed, updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("storing session for %s: %w", serverURL, err)
	}
	return nil
}

func (s *SQLiteDatabase) GetSession(serverURL string) ([]byte, error) {
	var sealed []byte
	err := s.db.QueryRow(`SELECT sealed FROM sessions WHERE server_url = ?`, serverURL).Scan(&sealed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("loading session for %s: %w", serverURL, err)
	}
	return sealed, nil
}

func (s *SQLiteDatabase) DeleteSession(serverURL string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE server_url = ?`, serverURL); err != nil {
		return fmt.Errorf("deleting session for %s: %w", serverURL, err)
	}
	return nil
}

// CheckMigrations verifies that the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

var _ share.Database = (*SQLiteDatabase)(nil)
