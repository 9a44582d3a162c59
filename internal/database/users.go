package database

import (
	"context"
	"database/sql"
	"fmt"

	"lumiere/internal/models"
)

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var email, hashed sql.NullString
	err := row.Scan(&u.Phone, &u.Name, &email, &u.Role, &hashed, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.HashedPassword = hashed.String
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (phone, name, email, role, hashed_password, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Phone, u.Name, u.Email, u.Role, u.HashedPassword, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByPhone looks a user up by phone, falling back to the legacy email
// column so tokens issued to email-registered accounts keep working.
func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	const cols = `phone, name, email, role, hashed_password, created_at`
	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+cols+` FROM users WHERE phone = ?`, phone))
	if err == sql.ErrNoRows {
		u, err = scanUser(db.QueryRowContext(ctx, `SELECT `+cols+` FROM users WHERE email = ?`, phone))
	}
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT phone, name, email, role, hashed_password, created_at FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (db *DB) CountUsersByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}
