package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"lumiere/internal/models"
)

// GetCafeInfo returns the café profile, or ErrNotFound when it has never
// been written.
func (db *DB) GetCafeInfo(ctx context.Context) (*models.CafeInfo, error) {
	var info models.CafeInfo
	var hours, social string
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, address, phone, email, hours, social_media FROM cafe_info WHERE id = 'main'`).
		Scan(&info.ID, &info.Name, &info.Description, &info.Address, &info.Phone, &info.Email, &hours, &social)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cafe info: %w", err)
	}
	if err := json.Unmarshal([]byte(hours), &info.Hours); err != nil {
		return nil, fmt.Errorf("failed to decode hours: %w", err)
	}
	if err := json.Unmarshal([]byte(social), &info.SocialMedia); err != nil {
		return nil, fmt.Errorf("failed to decode social media: %w", err)
	}
	return &info, nil
}

func (db *DB) UpsertCafeInfo(ctx context.Context, info *models.CafeInfo) error {
	hours, err := json.Marshal(info.Hours)
	if err != nil {
		return fmt.Errorf("failed to encode hours: %w", err)
	}
	social, err := json.Marshal(info.SocialMedia)
	if err != nil {
		return fmt.Errorf("failed to encode social media: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO cafe_info (id, name, description, address, phone, email, hours, social_media)
         VALUES ('main', ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             description = excluded.description,
             address = excluded.address,
             phone = excluded.phone,
             email = excluded.email,
             hours = excluded.hours,
             social_media = excluded.social_media`,
		info.Name, info.Description, info.Address, info.Phone, info.Email, string(hours), string(social))
	if err != nil {
		return fmt.Errorf("failed to upsert cafe info: %w", err)
	}
	return nil
}
