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

// MenuService covers the menu catalog and the café profile.
type MenuService struct {
	store  domain.Store
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewMenuService(store domain.Store, clock domain.Clock, logger *zerolog.Logger) *MenuService {
	return &MenuService{store: store, clock: clock, logger: logger}
}

func (s *MenuService) CreateItem(ctx context.Context, item *models.MenuItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = s.clock.Now()
	return s.store.CreateMenuItem(ctx, item)
}

func (s *MenuService) ListItems(ctx context.Context) ([]*models.MenuItem, error) {
	return s.store.ListMenuItems(ctx)
}

func (s *MenuService) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	if item.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	err := s.store.UpdateMenuItem(ctx, item)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: menu item %s", ErrNotFound, item.ID)
	}
	return err
}

func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	err := s.store.DeleteMenuItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: menu item %s", ErrNotFound, id)
	}
	return err
}

func (s *MenuService) CafeInfo(ctx context.Context) (*models.CafeInfo, error) {
	info, err := s.store.GetCafeInfo(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: cafe info is not configured", ErrNotFound)
	}
	return info, err
}

func (s *MenuService) UpdateCafeInfo(ctx context.Context, info *models.CafeInfo) error {
	if info.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	info.ID = "main"
	return s.store.UpsertCafeInfo(ctx, info)
}
