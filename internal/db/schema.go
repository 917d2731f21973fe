package db

import (
	"database/sql"
	"fmt"

	"github.com/zanvidmar/vitrina/internal/model"
)

// recordTable is the common shape of every content collection table.
// Collection-specific fields live in the payload JSON column.
const recordTable = `
CREATE TABLE IF NOT EXISTS %s (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL DEFAULT '',
    sort_order  INTEGER NOT NULL DEFAULT 0,
    payload     TEXT NOT NULL DEFAULT '{}',
    is_archived INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// baseSchema holds the non-collection tables.
const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for _, collection := range model.Collections() {
		if _, err := db.Exec(fmt.Sprintf(recordTable, collection)); err != nil {
			return fmt.Errorf("creating %s table: %w", collection, err)
		}
	}

	return nil
}
