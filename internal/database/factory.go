package database

import (
	"fmt"
	"os"
	"path/filepath"

	"sharectl/internal/config"
	"sharectl/internal/share"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
// name is the file stem used for the sqlite database.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, name string) (share.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		db, err := NewSQLiteDatabase(filepath.Join(cfg.DataDir, name+".db"))
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
