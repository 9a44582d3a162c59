package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lumiere/internal/database"
	"lumiere/internal/domain"
	"lumiere/internal/models"
)

// TableService handles the admin-facing table catalog. Deletion runs under
// the table's lock scope so it cannot interleave with a hold being placed
// on the same table.
type TableService struct {
	store  domain.Store
	locker domain.Locker
	logger *zerolog.Logger
}

func NewTableService(store domain.Store, locker domain.Locker, logger *zerolog.Logger) *TableService {
	return &TableService{store: store, locker: locker, logger: logger}
}

func (s *TableService) Create(ctx context.Context, number, capacity int, location string) (*models.Table, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}
	if number < 1 {
		return nil, fmt.Errorf("%w: table number must be positive", ErrValidation)
	}

	table := &models.Table{
		ID:        uuid.New().String(),
		Number:    number,
		Capacity:  capacity,
		Location:  location,
		Available: true,
		Status:    models.TableAvailable,
	}
	if err := s.store.CreateTable(ctx, table); err != nil {
		if errors.Is(err, database.ErrDuplicateNumber) {
			return nil, fmt.Errorf("%w: table number %d already exists", ErrConflict, number)
		}
		return nil, err
	}

	s.logger.Info().Int("number", number).Int("capacity", capacity).Msg("table created")
	return table, nil
}

func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	table, err := s.store.GetTable(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: table %s", ErrNotFound, id)
	}
	return table, err
}

func (s *TableService) List(ctx context.Context) ([]*models.Table, error) {
	return s.store.ListTables(ctx)
}

func (s *TableService) Update(ctx context.Context, table *models.Table) error {
	if table.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}

	err := s.locker.Do(ctx, tableKey(table.ID), models.LockAcquireTimeout, func() error {
		return s.store.UpdateTable(ctx, table)
	})
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: table %s", ErrNotFound, table.ID)
	}
	if errors.Is(err, database.ErrDuplicateNumber) {
		return fmt.Errorf("%w: table number %d already exists", ErrConflict, table.Number)
	}
	return err
}

func (s *TableService) Delete(ctx context.Context, id string) error {
	err := s.locker.Do(ctx, tableKey(id), models.LockAcquireTimeout, func() error {
		return s.store.DeleteTable(ctx, id)
	})
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: table %s", ErrNotFound, id)
	}
	if errors.Is(err, database.ErrHasActiveReservations) {
		return fmt.Errorf("%w: table has active reservations", ErrConflict)
	}
	if err == nil {
		s.logger.Info().Str("table_id", id).Msg("table deleted")
	}
	return err
}
