// internal/repository/gorm_product.go
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

// ProductRepository stores house items through gorm.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var row models.HouseItem
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load house item %d: %w", id, err)
	}
	return row.ToEntity()
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := models.HouseItemFromEntity(product)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create house item: %w", err)
	}
	return product.WithID(row.ID), nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := models.HouseItemFromEntity(product)
	result := r.db.WithContext(ctx).Model(&models.HouseItem{}).Where("id = ?", product.ID()).
		Updates(row.Columns())
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update house item %d: %w", product.ID(), result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewNotFoundError("house item", product.ID())
	}
	return product.Clone(), nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.HouseItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete house item %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("house item", id)
	}
	return nil
}

func (r *ProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var row models.HouseItem
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find house item by name: %w", err)
	}
	return row.ToEntity()
}

func (r *ProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("LOWER(inventory_category) = LOWER(?)", category))
}

func (r *ProductRepository) FindByStorageLocation(ctx context.Context, location string) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("LOWER(storage_location) = LOWER(?)", location))
}

func (r *ProductRepository) FindActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("active = ?", true))
}

// The stock finders mirror the Product predicates in SQL.
func (r *ProductRepository) FindLowStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("current_count > 0 AND current_count < par_level"))
}

func (r *ProductRepository) FindOutOfStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("current_count = 0"))
}

func (r *ProductRepository) FindProductsNeedingReorder(ctx context.Context) ([]*domain.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("active = ? AND current_count < par_level", true))
}

func (r *ProductRepository) UpdateStockCount(ctx context.Context, id int64, newCount float64) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		return p.UpdateCurrentCount(newCount)
	})
}

func (r *ProductRepository) AdjustStockCount(ctx context.Context, id int64, delta float64) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		return p.AdjustCount(delta)
	})
}

// mutate loads, changes and writes back one house item inside a transaction so entity rules apply.
func (r *ProductRepository) mutate(ctx context.Context, id int64, fn func(*domain.Product) error) (*domain.Product, error) {
	var updated *domain.Product
	err := database.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var row models.HouseItem
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("house item", id)
			}
			return fmt.Errorf("failed to load house item %d: %w", id, err)
		}

		product, err := row.ToEntity()
		if err != nil {
			return err
		}
		if err := fn(product); err != nil {
			return err
		}

		err = tx.Model(&models.HouseItem{}).Where("id = ?", id).Updates(map[string]interface{}{
			"current_count": product.CurrentCount(),
			"updated_at":    product.UpdatedAt(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update stock of house item %d: %w", id, err)
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ProductRepository) find(query *gorm.DB) ([]*domain.Product, error) {
	var rows []models.HouseItem
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query house items: %w", err)
	}

	out := make([]*domain.Product, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToEntity()
		if err != nil {
			return nil, fmt.Errorf("house item %d is invalid: %w", rows[i].ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}
