// internal/models/house_item.go
package models

import (
	"github.com/larderline/larder-backend/internal/domain"
)

type HouseItem struct {
	BaseModel
	Name                string  `json:"name" gorm:"size:255;not null;index"`
	Price               float64 `json:"price" gorm:"type:decimal(12,4);not null"`
	Active              bool    `json:"active" gorm:"not null;index"`
	StorageLocation     string  `json:"storage_location" gorm:"size:100;not null;index"`
	InventoryCategory   string  `json:"inventory_category" gorm:"size:100;not null;index"`
	TrackingUnit        string  `json:"tracking_unit" gorm:"type:varchar(20);not null"`
	ParLevel            float64 `json:"par_level" gorm:"type:decimal(12,3);not null"`
	CurrentCount        float64 `json:"current_count" gorm:"type:decimal(12,3);not null"`
	DefaultVendorItemID *int64  `json:"default_vendor_item_id" gorm:"index"`
}

func (HouseItem) TableName() string {
	return "house_items"
}

// HouseItemFromEntity copies a product into its row representation.
func HouseItemFromEntity(p *domain.Product) *HouseItem {
	return &HouseItem{
		BaseModel: BaseModel{
			ID:        p.ID(),
			CreatedAt: p.CreatedAt(),
			UpdatedAt: p.UpdatedAt(),
		},
		Name:                p.Name(),
		Price:               p.Price(),
		Active:              p.Active(),
		StorageLocation:     p.StorageLocation(),
		InventoryCategory:   p.InventoryCategory(),
		TrackingUnit:        p.TrackingUnit().String(),
		ParLevel:            p.ParLevel(),
		CurrentCount:        p.CurrentCount(),
		DefaultVendorItemID: p.DefaultVendorItemID(),
	}
}

// ToEntity rebuilds the product; rows that no longer satisfy the invariants are reported.
func (h *HouseItem) ToEntity() (*domain.Product, error) {
	return domain.NewProduct(domain.ProductParams{
		ID:                  h.ID,
		Name:                h.Name,
		Price:               h.Price,
		Active:              h.Active,
		StorageLocation:     h.StorageLocation,
		InventoryCategory:   h.InventoryCategory,
		TrackingUnit:        domain.TrackingUnit(h.TrackingUnit),
		ParLevel:            h.ParLevel,
		CurrentCount:        h.CurrentCount,
		DefaultVendorItemID: h.DefaultVendorItemID,
		CreatedAt:           h.CreatedAt,
		UpdatedAt:           h.UpdatedAt,
	})
}

// Columns lists the mutable columns, zero values included, for map based updates.
func (h *HouseItem) Columns() map[string]interface{} {
	return map[string]interface{}{
		"name":                   h.Name,
		"price":                  h.Price,
		"active":                 h.Active,
		"storage_location":       h.StorageLocation,
		"inventory_category":     h.InventoryCategory,
		"tracking_unit":          h.TrackingUnit,
		"par_level":              h.ParLevel,
		"current_count":          h.CurrentCount,
		"default_vendor_item_id": h.DefaultVendorItemID,
		"updated_at":             h.UpdatedAt,
	}
}
