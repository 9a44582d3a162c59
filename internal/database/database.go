package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection used as the café's document store. It has
// no multi-row transactions exposed to callers; the service layer serializes
// compound read-check-write sequences through the lock manager, and the
// conditional UPDATE helpers here report whether a row actually changed.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tables (
            id TEXT PRIMARY KEY,
            number INTEGER UNIQUE NOT NULL,
            capacity INTEGER NOT NULL,
            location TEXT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            status TEXT NOT NULL DEFAULT 'available'
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id TEXT PRIMARY KEY,
            holder_phone TEXT NOT NULL DEFAULT '',
            holder_name TEXT NOT NULL DEFAULT '',
            holder_email TEXT NOT NULL DEFAULT '',
            contact_phone TEXT NOT NULL DEFAULT '',
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            duration_minutes INTEGER NOT NULL DEFAULT 90,
            guests INTEGER NOT NULL,
            table_id TEXT NOT NULL DEFAULT '',
            table_number INTEGER NOT NULL DEFAULT 0,
            table_capacity INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            lock_expiry DATETIME,
            special_requests TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            confirmed_at DATETIME,
            sms_sent BOOLEAN NOT NULL DEFAULT 0,
            booked_by_role TEXT NOT NULL DEFAULT 'customer',
            booked_by_agent TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS users (
            phone TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT,
            role TEXT NOT NULL DEFAULT 'customer',
            hashed_password TEXT,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS menu_items (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            price REAL NOT NULL,
            image TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS cafe_info (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            hours TEXT NOT NULL DEFAULT '{}',
            social_media TEXT NOT NULL DEFAULT '{}'
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            reservation_id TEXT NOT NULL,
            payload TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_table_date ON reservations(table_id, date, time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status_expiry ON reservations(status, lock_expiry)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_holder ON reservations(holder_phone)`,
		`CREATE INDEX IF NOT EXISTS idx_tables_capacity ON tables(capacity)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
