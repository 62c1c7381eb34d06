// internal/domain/repository.go
package domain

import "context"

// ProductRepository is the storage contract for house items.
// FindByID returns (nil, nil) when the product does not exist.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	// Save persists a new product and returns it with the id assigned by storage.
	Save(ctx context.Context, product *Product) (*Product, error)
	Update(ctx context.Context, product *Product) (*Product, error)
	Delete(ctx context.Context, id int64) error

	// FindByName, FindByCategory and FindByStorageLocation match case-insensitively.
	FindByName(ctx context.Context, name string) (*Product, error)
	FindByCategory(ctx context.Context, category string) ([]*Product, error)
	FindByStorageLocation(ctx context.Context, location string) ([]*Product, error)
	FindActiveProducts(ctx context.Context) ([]*Product, error)
	FindLowStockProducts(ctx context.Context) ([]*Product, error)
	FindOutOfStockProducts(ctx context.Context) ([]*Product, error)
	FindProductsNeedingReorder(ctx context.Context) ([]*Product, error)
	UpdateStockCount(ctx context.Context, id int64, newCount float64) (*Product, error)
	AdjustStockCount(ctx context.Context, id int64, delta float64) (*Product, error)
}

// VendorSelectionRepository is the storage contract for vendor selections.
// Lookups by house order item id return (nil, nil) when nothing was resolved for the item.
type VendorSelectionRepository interface {
	FindByID(ctx context.Context, id int64) (*VendorSelection, error)
	FindAll(ctx context.Context) ([]*VendorSelection, error)
	Save(ctx context.Context, selection *VendorSelection) (*VendorSelection, error)
	Update(ctx context.Context, selection *VendorSelection) (*VendorSelection, error)
	Delete(ctx context.Context, id int64) error

	FindByOrderID(ctx context.Context, orderID int64) ([]*VendorSelection, error)
	FindByHouseOrderItemID(ctx context.Context, itemID int64) (*VendorSelection, error)
	FindOverriddenSelections(ctx context.Context) ([]*VendorSelection, error)
	FindSelectionsByStrategy(ctx context.Context, strategy SelectionStrategy) ([]*VendorSelection, error)
	// OverrideSelection applies the override rules of VendorSelection.OverrideSelection
	// to the stored selection of the item.
	OverrideSelection(ctx context.Context, itemID, vendorItemID int64, overriddenBy string) (*VendorSelection, error)
	ResetOverride(ctx context.Context, itemID int64) (*VendorSelection, error)
}
