// Package db implements the relational report backend over a small SQLite
// table. Every user-supplied value reaching a query is bound as a
// parameter, and every JSON-path predicate first verifies the column holds
// syntactically valid JSON.
package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle for the reports table.
type DB struct {
	*sql.DB
	path string
}

// openDB opens a SQLite database at the given path.
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return sqlDB, nil
}

// Open opens or creates the reports database at path, initializing the
// schema and running the startup migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.ensureSchemaExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// ensureSchemaExists checks for the reports table and initializes the
// schema if missing.
func (db *DB) ensureSchemaExists() error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='reports'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return db.InitSchema()
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// InitSchema creates the base table and indexes.
func (db *DB) InitSchema() error {
	_, err := db.Exec(schemaSQL)
	return err
}

// Migrate applies the additive column migrations. Running it against a
// database that already has the columns is a no-op: a "duplicate column"
// failure is treated as success.
func (db *DB) Migrate() error {
	migrations := []string{
		"ALTER TABLE reports ADD COLUMN categories TEXT",
		"ALTER TABLE reports ADD COLUMN search_text TEXT",
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration %q failed: %w", m, err)
		}
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
