// internal/models/vendor_selection.go
package models

import (
	"encoding/json"
	"time"

	"github.com/larderline/larder-backend/internal/domain"
)

// VendorSelectionRecord is the stored vendor choice of one house order item.
type VendorSelectionRecord struct {
	BaseModel
	HouseOrderID     int64                `json:"house_order_id" gorm:"index"`
	HouseOrderItemID int64                `json:"house_order_item_id" gorm:"not null;index"`
	VendorItemID     int64                `json:"vendor_item_id" gorm:"not null"`
	Strategy         string               `json:"strategy" gorm:"type:varchar(40);not null;index"`
	Reason           string               `json:"reason" gorm:"type:text"`
	ConfidenceScore  float64              `json:"confidence_score" gorm:"not null"`
	CostSavings      float64              `json:"cost_savings" gorm:"type:decimal(12,4);not null"`
	Alternatives     []domain.Alternative `json:"alternatives" gorm:"type:text;serializer:json"`
	IsOverridden     bool                 `json:"is_overridden" gorm:"not null;index"`
	OverriddenBy     string               `json:"overridden_by" gorm:"size:255"`
	OverriddenAt     *time.Time           `json:"overridden_at"`
}

func (VendorSelectionRecord) TableName() string {
	return "vendor_selections"
}

func VendorSelectionFromEntity(v *domain.VendorSelection) *VendorSelectionRecord {
	reason := v.SelectionReason()
	return &VendorSelectionRecord{
		BaseModel: BaseModel{
			ID:        v.ID(),
			CreatedAt: v.CreatedAt(),
			UpdatedAt: v.UpdatedAt(),
		},
		HouseOrderID:     v.HouseOrderID(),
		HouseOrderItemID: v.HouseOrderItemID(),
		VendorItemID:     v.VendorItemID(),
		Strategy:         reason.Strategy.String(),
		Reason:           reason.Reason,
		ConfidenceScore:  reason.ConfidenceScore,
		CostSavings:      v.CostSavings(),
		Alternatives:     v.Alternatives(),
		IsOverridden:     v.IsOverridden(),
		OverriddenBy:     v.OverriddenBy(),
		OverriddenAt:     v.OverriddenAt(),
	}
}

func (r *VendorSelectionRecord) ToEntity() (*domain.VendorSelection, error) {
	return domain.NewVendorSelection(domain.VendorSelectionParams{
		ID:               r.ID,
		HouseOrderID:     r.HouseOrderID,
		HouseOrderItemID: r.HouseOrderItemID,
		VendorItemID:     r.VendorItemID,
		SelectionReason: domain.SelectionReason{
			Strategy:        domain.SelectionStrategy(r.Strategy),
			Reason:          r.Reason,
			ConfidenceScore: r.ConfidenceScore,
		},
		CostSavings:  r.CostSavings,
		Alternatives: r.Alternatives,
		IsOverridden: r.IsOverridden,
		OverriddenBy: r.OverriddenBy,
		OverriddenAt: r.OverriddenAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	})
}

// Columns lists the mutable columns for map based updates. Alternatives are pre-encoded
// because map updates bypass the field serializer.
func (r *VendorSelectionRecord) Columns() (map[string]interface{}, error) {
	alternatives, err := json.Marshal(r.Alternatives)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"house_order_id":      r.HouseOrderID,
		"house_order_item_id": r.HouseOrderItemID,
		"vendor_item_id":      r.VendorItemID,
		"strategy":            r.Strategy,
		"reason":              r.Reason,
		"confidence_score":    r.ConfidenceScore,
		"cost_savings":        r.CostSavings,
		"alternatives":        string(alternatives),
		"is_overridden":       r.IsOverridden,
		"overridden_by":       r.OverriddenBy,
		"overridden_at":       r.OverriddenAt,
		"updated_at":          r.UpdatedAt,
	}, nil
}
