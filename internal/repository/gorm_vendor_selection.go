// internal/repository/gorm_vendor_selection.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/larderline/larder-backend/internal/database"
	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/models"
)

// VendorSelectionRepository stores vendor selections through gorm.
type VendorSelectionRepository struct {
	db *gorm.DB
}

func NewVendorSelectionRepository(db *gorm.DB) *VendorSelectionRepository {
	return &VendorSelectionRepository{db: db}
}

var _ domain.VendorSelectionRepository = (*VendorSelectionRepository)(nil)

func (r *VendorSelectionRepository) FindByID(ctx context.Context, id int64) (*domain.VendorSelection, error) {
	var row models.VendorSelectionRecord
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor selection %d: %w", id, err)
	}
	return row.ToEntity()
}

func (r *VendorSelectionRepository) FindAll(ctx context.Context) ([]*domain.VendorSelection, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *VendorSelectionRepository) Save(ctx context.Context, selection *domain.VendorSelection) (*domain.VendorSelection, error) {
	row := models.VendorSelectionFromEntity(selection)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create vendor selection: %w", err)
	}
	return selection.WithID(row.ID), nil
}

func (r *VendorSelectionRepository) Update(ctx context.Context, selection *domain.VendorSelection) (*domain.VendorSelection, error) {
	if err := r.write(r.db.WithContext(ctx), selection); err != nil {
		return nil, err
	}
	return selection.Clone(), nil
}

func (r *VendorSelectionRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.VendorSelectionRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete vendor selection %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("vendor selection", id)
	}
	return nil
}

func (r *VendorSelectionRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*domain.VendorSelection, error) {
	return r.find(r.db.WithContext(ctx).Where("house_order_id = ?", orderID))
}

func (r *VendorSelectionRepository) FindByHouseOrderItemID(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	row, err := r.loadByItem(r.db.WithContext(ctx), itemID)
	if err != nil || row == nil {
		return nil, err
	}
	return row.ToEntity()
}

func (r *VendorSelectionRepository) FindOverriddenSelections(ctx context.Context) ([]*domain.VendorSelection, error) {
	return r.find(r.db.WithContext(ctx).Where("is_overridden = ?", true))
}

func (r *VendorSelectionRepository) FindSelectionsByStrategy(ctx context.Context, strategy domain.SelectionStrategy) ([]*domain.VendorSelection, error) {
	return r.find(r.db.WithContext(ctx).Where("strategy = ?", strategy.String()))
}

func (r *VendorSelectionRepository) OverrideSelection(ctx context.Context, itemID, vendorItemID int64, overriddenBy string) (*domain.VendorSelection, error) {
	return r.mutate(ctx, itemID, func(v *domain.VendorSelection) error {
		return v.OverrideSelection(vendorItemID, overriddenBy)
	})
}

func (r *VendorSelectionRepository) ResetOverride(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	return r.mutate(ctx, itemID, (*domain.VendorSelection).ResetOverride)
}

func (r *VendorSelectionRepository) mutate(ctx context.Context, itemID int64, fn func(*domain.VendorSelection) error) (*domain.VendorSelection, error) {
	var updated *domain.VendorSelection
	err := database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		row, err := r.loadByItem(tx, itemID)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.NewNotFoundError("vendor selection for house order item", itemID)
		}

		selection, err := row.ToEntity()
		if err != nil {
			return err
		}
		if err := fn(selection); err != nil {
			return err
		}
		if err := r.write(tx, selection); err != nil {
			return err
		}
		updated = selection
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// loadByItem returns the most recent selection of a house order item, or nil.
func (r *VendorSelectionRepository) loadByItem(db *gorm.DB, itemID int64) (*models.VendorSelectionRecord, error) {
	var row models.VendorSelectionRecord
	err := db.Where("house_order_item_id = ?", itemID).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor selection for item %d: %w", itemID, err)
	}
	return &row, nil
}

func (r *VendorSelectionRepository) write(db *gorm.DB, selection *domain.VendorSelection) error {
	columns, err := models.VendorSelectionFromEntity(selection).Columns()
	if err != nil {
		return fmt.Errorf("failed to encode vendor selection %d: %w", selection.ID(), err)
	}

	result := db.Model(&models.VendorSelectionRecord{}).Where("id = ?", selection.ID()).Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update vendor selection %d: %w", selection.ID(), result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("vendor selection", selection.ID())
	}
	return nil
}

func (r *VendorSelectionRepository) find(query *gorm.DB) ([]*domain.VendorSelection, error) {
	var rows []models.VendorSelectionRecord
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query vendor selections: %w", err)
	}

	out := make([]*domain.VendorSelection, 0, len(rows))
	for i := range rows {
		v, err := rows[i].ToEntity()
		if err != nil {
			return nil, fmt.Errorf("vendor selection %d is invalid: %w", rows[i].ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
