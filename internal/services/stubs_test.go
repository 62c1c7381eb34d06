// internal/services/stubs_test.go
package services

import (
	"context"
	"errors"

	"github.com/larderline/larder-backend/internal/domain"
)

var errStorageDown = errors.New("storage unavailable")

// failingProductRepository fails every call with errStorageDown.
type failingProductRepository struct{}

func (failingProductRepository) FindByID(context.Context, int64) (*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindAll(context.Context) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) Save(context.Context, *domain.Product) (*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) Update(context.Context, *domain.Product) (*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) Delete(context.Context, int64) error { return errStorageDown }
func (failingProductRepository) FindByName(context.Context, string) (*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindByCategory(context.Context, string) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindByStorageLocation(context.Context, string) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindActiveProducts(context.Context) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindLowStockProducts(context.Context) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindOutOfStockProducts(context.Context) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) FindProductsNeedingReorder(context.Context) ([]*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) UpdateStockCount(context.Context, int64, float64) (*domain.Product, error) {
	return nil, errStorageDown
}
func (failingProductRepository) AdjustStockCount(context.Context, int64, float64) (*domain.Product, error) {
	return nil, errStorageDown
}

// failingSelectionRepository fails every call with errStorageDown.
type failingSelectionRepository struct{}

func (failingSelectionRepository) FindByID(context.Context, int64) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) FindAll(context.Context) ([]*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) Save(context.Context, *domain.VendorSelection) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) Update(context.Context, *domain.VendorSelection) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) Delete(context.Context, int64) error { return errStorageDown }
func (failingSelectionRepository) FindByOrderID(context.Context, int64) ([]*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) FindByHouseOrderItemID(context.Context, int64) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) FindOverriddenSelections(context.Context) ([]*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) FindSelectionsByStrategy(context.Context, domain.SelectionStrategy) ([]*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) OverrideSelection(context.Context, int64, int64, string) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
func (failingSelectionRepository) ResetOverride(context.Context, int64) (*domain.VendorSelection, error) {
	return nil, errStorageDown
}
