package database

import (
	"context"
	"fmt"

	"lumiere/internal/models"
)

func (db *DB) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO menu_items (id, name, description, category, price, image, available, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Description, item.Category, item.Price, item.Image, item.Available, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (db *DB) ListMenuItems(ctx context.Context) ([]*models.MenuItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, category, price, image, available, created_at
         FROM menu_items ORDER BY category ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var out []*models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Image, &m.Available, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (db *DB) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	result, err := db.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, description = ?, category = ?, price = ?, image = ?, available = ?
         WHERE id = ?`,
		item.Name, item.Description, item.Category, item.Price, item.Image, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteMenuItem(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CountMenuItems(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}
