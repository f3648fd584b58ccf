package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dessertbox/models"
)

// BoxStore persists dessert boxes. Every write touches a single row.
type BoxStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBoxStore wraps an open database handle.
func NewBoxStore(db *gorm.DB) *BoxStore {
	return &BoxStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *BoxStore) handle(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

func withOptions(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("DessertType").
		Preload("Flavor").
		Preload("Packaging").
		Preload("Dietary").
		Preload("Theme")
}

// List returns every box, newest first, with option names preloaded.
func (s *BoxStore) List(ctx context.Context) ([]models.DessertBox, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	var boxes []models.DessertBox
	if err := withOptions(tx).Order("created_at desc, id desc").Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("list dessert boxes: %w", err)
	}
	return boxes, nil
}

// Get loads one box by id or returns ErrNotFound.
func (s *BoxStore) Get(ctx context.Context, id uint) (*models.DessertBox, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	var box models.DessertBox
	if err := withOptions(tx).First(&box, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load dessert box %d: %w", id, err)
	}
	return &box, nil
}

// Create inserts the box and fills in its id and timestamps.
func (s *BoxStore) Create(ctx context.Context, box *models.DessertBox) error {
	tx, err := s.handle(ctx)
	if err != nil {
		return err
	}
	box.ID = 0
	now := s.now()
	box.CreatedAt = now
	box.UpdatedAt = now
	if err := tx.Omit("DessertType", "Flavor", "Packaging", "Dietary", "Theme").Create(box).Error; err != nil {
		return fmt.Errorf("create dessert box: %w", err)
	}
	return nil
}

// Replace overwrites every editable column of an existing box and returns
// the stored row. The caller supplies the already computed total.
func (s *BoxStore) Replace(ctx context.Context, id uint, box models.DessertBox) (*models.DessertBox, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	result := tx.Model(&models.DessertBox{}).Where("id = ?", id).Updates(map[string]any{
		"dessert_type_id": box.DessertTypeID,
		"flavor_id":       box.FlavorID,
		"packaging_id":    box.PackagingID,
		"dietary_id":      box.DietaryID,
		"theme_id":        box.ThemeID,
		"quantity":        box.Quantity,
		"custom_message":  box.CustomMessage,
		"total_price":     box.TotalPrice,
		"updated_at":      s.now(),
	})
	if result.Error != nil {
		return nil, fmt.Errorf("replace dessert box %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the box permanently or returns ErrNotFound.
func (s *BoxStore) Delete(ctx context.Context, id uint) error {
	tx, err := s.handle(ctx)
	if err != nil {
		return err
	}
	result := tx.Delete(&models.DessertBox{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete dessert box %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// All returns every box ordered by id without joined options.
func (s *BoxStore) All(ctx context.Context) ([]models.DessertBox, error) {
	tx, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	var boxes []models.DessertBox
	if err := tx.Order(OrderByID).Find(&boxes).Error; err != nil {
		return nil, fmt.Errorf("list dessert boxes: %w", err)
	}
	return boxes, nil
}
