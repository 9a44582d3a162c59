package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lumiere/internal/models"
)

const reservationColumns = `id, holder_phone, holder_name, holder_email, contact_phone,
        date, time, duration_minutes, guests, table_id, table_number, table_capacity,
        status, lock_expiry, special_requests, created_at, confirmed_at,
        sms_sent, booked_by_role, booked_by_agent`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	var lockExpiry, confirmedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.HolderPhone, &r.HolderName, &r.HolderEmail, &r.ContactPhone,
		&r.Date, &r.Time, &r.DurationMinutes, &r.Guests, &r.TableID, &r.TableNumber, &r.TableCapacity,
		&r.Status, &lockExpiry, &r.SpecialRequests, &r.CreatedAt, &confirmedAt,
		&r.SMSSent, &r.BookedByRole, &r.BookedByAgent,
	)
	if err != nil {
		return nil, err
	}
	if lockExpiry.Valid {
		t := lockExpiry.Time
		r.LockExpiry = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		r.ConfirmedAt = &t
	}
	// Rows written before phone login existed carry only the email
	// identifier. Normalize here so nothing downstream branches on which
	// field happens to be populated.
	if r.HolderPhone == "" && r.HolderEmail != "" {
		r.HolderPhone = r.HolderEmail
	}
	return &r, nil
}

func (db *DB) InsertReservation(ctx context.Context, r *models.Reservation) error {
	query := `INSERT INTO reservations (` + reservationColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var lockExpiry, confirmedAt any
	if r.LockExpiry != nil {
		lockExpiry = *r.LockExpiry
	}
	if r.ConfirmedAt != nil {
		confirmedAt = *r.ConfirmedAt
	}
	_, err := db.ExecContext(ctx, query,
		r.ID, r.HolderPhone, r.HolderName, r.HolderEmail, r.ContactPhone,
		r.Date, r.Time, r.DurationMinutes, r.Guests, r.TableID, r.TableNumber, r.TableCapacity,
		r.Status, lockExpiry, r.SpecialRequests, r.CreatedAt, confirmedAt,
		r.SMSSent, r.BookedByRole, r.BookedByAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// ActiveReservationsOnTable returns held and confirmed reservations for one
// table on one day, ordered by start time. Expired-but-unreconciled holds
// are included; the caller decides their fate under its lock scope.
func (db *DB) ActiveReservationsOnTable(ctx context.Context, tableID, date string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE table_id = ? AND date = ? AND status IN (?, ?) ORDER BY time ASC`
	return db.queryReservations(ctx, query, tableID, date, models.StatusHeld, models.StatusConfirmed)
}

// FindLiveHold returns an unexpired held reservation by the same holder for
// the identical slot, or ErrNotFound. Used for idempotent hold creation.
func (db *DB) FindLiveHold(ctx context.Context, holderPhone, tableID, date, timeOfDay string, now time.Time) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE holder_phone = ? AND table_id = ? AND date = ? AND time = ?
                AND status = ? AND lock_expiry > ?
              LIMIT 1`
	r, err := scanReservation(db.QueryRowContext(ctx, query, holderPhone, tableID, date, timeOfDay, models.StatusHeld, now))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find live hold: %w", err)
	}
	return r, nil
}

// ConfirmReservation flips a reservation from held to confirmed, stamping
// confirmed_at and clearing the hold expiry. The WHERE clause re-checks the
// status so a hold that expired or changed between the caller's read and
// this write results in ErrNoChange rather than a silent double booking.
func (db *DB) ConfirmReservation(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE reservations SET status = ?, confirmed_at = ?, lock_expiry = NULL
              WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.StatusConfirmed, now, id, models.StatusHeld)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNoChange
	}
	return nil
}

// MarkReservationExpired transitions a held reservation to expired. The
// conditional WHERE makes racing reconcilers harmless: the loser's update
// touches zero rows.
func (db *DB) MarkReservationExpired(ctx context.Context, id string) error {
	query := `UPDATE reservations SET status = ?, lock_expiry = NULL WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.StatusExpired, id, models.StatusHeld)
	if err != nil {
		return fmt.Errorf("failed to expire reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNoChange
	}
	return nil
}

// CancelReservation sets status to cancelled if the current status still
// matches fromStatus.
func (db *DB) CancelReservation(ctx context.Context, id, fromStatus string) error {
	query := `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, models.StatusCancelled, id, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNoChange
	}
	return nil
}

// ForceReservationStatus is the admin override: any status, no
// precondition beyond existence. Confirming this way stamps confirmed_at.
func (db *DB) ForceReservationStatus(ctx context.Context, id, status string, now time.Time) error {
	var result sql.Result
	var err error
	if status == models.StatusConfirmed {
		result, err = db.ExecContext(ctx,
			`UPDATE reservations SET status = ?, confirmed_at = ?, lock_expiry = NULL WHERE id = ?`,
			status, now, id)
	} else {
		result, err = db.ExecContext(ctx,
			`UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	}
	if err != nil {
		return fmt.Errorf("failed to force reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetSMSSent(ctx context.Context, id string, sent bool) error {
	_, err := db.ExecContext(ctx, `UPDATE reservations SET sms_sent = ? WHERE id = ?`, sent, id)
	if err != nil {
		return fmt.Errorf("failed to set sms flag: %w", err)
	}
	return nil
}

// FindExpiredHeld lists ids of held reservations whose lock has passed.
// The sweep re-checks each one under its lock scope before writing.
func (db *DB) FindExpiredHeld(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id FROM reservations WHERE status = ? AND lock_expiry <= ?`,
		models.StatusHeld, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired holds: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReservationsByHolder returns the holder's reservations, newest first.
// Matches the legacy email identifier as well.
func (db *DB) ReservationsByHolder(ctx context.Context, phone, email string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE holder_phone = ? OR (holder_email != '' AND holder_email IN (?, ?))
              ORDER BY created_at DESC`
	return db.queryReservations(ctx, query, phone, email, phone)
}

// ListReservations returns reservations matching optional status and date
// filters, newest first.
func (db *DB) ListReservations(ctx context.Context, status, date string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []any{}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY created_at DESC`
	return db.queryReservations(ctx, query, args...)
}

// SearchReservations supports the agent view: optional date and status
// filters plus case-insensitive substring match on name or phone.
func (db *DB) SearchReservations(ctx context.Context, date, status, search string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []any{}
	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query += ` AND (holder_name LIKE ? OR holder_phone LIKE ? OR contact_phone LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY date DESC, time ASC`
	return db.queryReservations(ctx, query, args...)
}

// ConfirmedOnDateRange returns confirmed reservations with date in
// (after, upTo], ordered by date then time. Used by the agent dashboard
// and the reminder worker.
func (db *DB) ConfirmedOnDateRange(ctx context.Context, after, upTo string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date > ? AND date <= ? AND status = ? ORDER BY date ASC, time ASC`
	return db.queryReservations(ctx, query, after, upTo, models.StatusConfirmed)
}

// ConfirmedOnDate returns confirmed reservations for one day ordered by time.
func (db *DB) ConfirmedOnDate(ctx context.Context, date string) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date = ? AND status = ? ORDER BY time ASC`
	return db.queryReservations(ctx, query, date, models.StatusConfirmed)
}

// LiveHoldsOnDate returns unexpired holds for one day.
func (db *DB) LiveHoldsOnDate(ctx context.Context, date string, now time.Time) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
              WHERE date = ? AND status = ? AND lock_expiry > ? ORDER BY time ASC`
	return db.queryReservations(ctx, query, date, models.StatusHeld, now)
}

func (db *DB) CountReservations(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&n)
	return n, err
}

func (db *DB) CountReservationsByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE status = ?`, status).Scan(&n)
	return n, err
}

func (db *DB) CountReservationsOnDate(ctx context.Context, date, status string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE date = ? AND status = ?`, date, status).Scan(&n)
	return n, err
}

// CountActiveOnTable counts held and confirmed reservations on a table,
// used to guard table deletion.
func (db *DB) CountActiveOnTable(ctx context.Context, tableID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE table_id = ? AND status IN (?, ?)`,
		tableID, models.StatusHeld, models.StatusConfirmed).Scan(&n)
	return n, err
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...any) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var out []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
