package database

import (
	"context"
	"database/sql"
	"fmt"

	"lumiere/internal/models"
)

func scanTable(row rowScanner) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Location, &t.Available, &t.Status)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (db *DB) CreateTable(ctx context.Context, t *models.Table) error {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables WHERE number = ?`, t.Number).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check table number: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateNumber
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO tables (id, number, capacity, location, available, status) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Number, t.Capacity, t.Location, t.Available, t.Status)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (db *DB) GetTable(ctx context.Context, id string) (*models.Table, error) {
	t, err := scanTable(db.QueryRowContext(ctx,
		`SELECT id, number, capacity, location, available, status FROM tables WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return t, nil
}

func (db *DB) ListTables(ctx context.Context) ([]*models.Table, error) {
	return db.queryTables(ctx,
		`SELECT id, number, capacity, location, available, status FROM tables ORDER BY number ASC`)
}

// TablesWithCapacity returns available tables seating at least minCapacity,
// smallest first so the finder allocates the tightest fit.
func (db *DB) TablesWithCapacity(ctx context.Context, minCapacity int) ([]*models.Table, error) {
	return db.queryTables(ctx,
		`SELECT id, number, capacity, location, available, status FROM tables
         WHERE capacity >= ? AND available = 1 ORDER BY capacity ASC, number ASC`, minCapacity)
}

func (db *DB) UpdateTable(ctx context.Context, t *models.Table) error {
	var clash int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tables WHERE number = ? AND id != ?`, t.Number, t.ID).Scan(&clash)
	if err != nil {
		return fmt.Errorf("failed to check table number: %w", err)
	}
	if clash > 0 {
		return ErrDuplicateNumber
	}

	result, err := db.ExecContext(ctx,
		`UPDATE tables SET number = ?, capacity = ?, location = ?, available = ?, status = ? WHERE id = ?`,
		t.Number, t.Capacity, t.Location, t.Available, t.Status, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTable removes a table unless it still carries active reservations.
// The caller holds the table's lock scope so the check and the delete are
// not interleaved with a concurrent hold creation.
func (db *DB) DeleteTable(ctx context.Context, id string) error {
	active, err := db.CountActiveOnTable(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count active reservations: %w", err)
	}
	if active > 0 {
		return ErrHasActiveReservations
	}

	result, err := db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SyncTables seeds the floor plan from configuration. Existing tables are
// matched by number and updated in place so reservations keep their table
// ids; new numbers are inserted.
func (db *DB) SyncTables(ctx context.Context, tables []*models.Table) error {
	for _, t := range tables {
		var id string
		err := db.QueryRowContext(ctx, `SELECT id FROM tables WHERE number = ?`, t.Number).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			if err := db.CreateTable(ctx, t); err != nil {
				return fmt.Errorf("failed to seed table %d: %w", t.Number, err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up table %d: %w", t.Number, err)
		default:
			t.ID = id
			if err := db.UpdateTable(ctx, t); err != nil {
				return fmt.Errorf("failed to refresh table %d: %w", t.Number, err)
			}
		}
	}
	return nil
}

func (db *DB) CountTables(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tables`).Scan(&n)
	return n, err
}

func (db *DB) queryTables(ctx context.Context, query string, args ...any) ([]*models.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var out []*models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
