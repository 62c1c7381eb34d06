// internal/domain/wire.go
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// flexNumber accepts a JSON number, a numeric string, an empty string or null.
// Upstream payloads are not consistent about quoting monetary and count fields.
type flexNumber struct {
	value float64
	set   bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return NewValidationError("", "malformed numeric string")
		}
		text = strings.TrimSpace(unquoted)
		if text == "" {
			return nil
		}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return NewValidationError("", "invalid number "+strconv.Quote(text))
	}
	f.value = value
	f.set = true
	return nil
}

func (f flexNumber) orZero() float64 {
	if !f.set {
		return 0
	}
	return f.value
}

// id rejects fractional values and anything outside the int64 range.
func (f flexNumber) id(field string) (int64, error) {
	if !f.set {
		return 0, nil
	}
	if f.value != math.Trunc(f.value) || f.value < math.MinInt64 || f.value >= -math.MinInt64 {
		return 0, NewValidationError(field, "must be an integer id")
	}
	return int64(f.value), nil
}

func (f flexNumber) optionalID(field string) (*int64, error) {
	id, err := f.id(field)
	if err != nil || id == 0 {
		return nil, err
	}
	return &id, nil
}

// firstTime returns the first non-nil timestamp, or the zero time.
func firstTime(candidates ...*time.Time) time.Time {
	for _, candidate := range candidates {
		if candidate != nil && !candidate.IsZero() {
			return *candidate
		}
	}
	return time.Time{}
}

type productWire struct {
	ID                  int64        `json:"id"`
	Name                string       `json:"name"`
	Price               float64      `json:"price"`
	Active              bool         `json:"active"`
	StorageLocation     string       `json:"storage_location"`
	InventoryCategory   string       `json:"inventory_category"`
	TrackingUnit        TrackingUnit `json:"tracking_unit"`
	ParLevel            float64      `json:"par_level"`
	CurrentCount        float64      `json:"current_count"`
	DefaultVendorItemID *int64       `json:"default_vendor_item_id"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

type productInbound struct {
	ID                  flexNumber `json:"id"`
	Name                string     `json:"name"`
	Price               flexNumber `json:"price"`
	CurrentPricePerUnit flexNumber `json:"current_price_per_unit"`
	Active              *bool      `json:"active"`
	StorageLocation     string     `json:"storage_location"`
	InventoryCategory   string     `json:"inventory_category"`
	TrackingUnit        string     `json:"tracking_unit"`
	ParLevel            flexNumber `json:"par_level"`
	CurrentCount        flexNumber `json:"current_count"`
	DefaultVendorItemID flexNumber `json:"default_vendor_item_id"`
	CreatedAt           *time.Time `json:"createdAt"`
	CreatedAtSnake      *time.Time `json:"created_at"`
	UpdatedAt           *time.Time `json:"updatedAt"`
	UpdatedAtSnake      *time.Time `json:"updated_at"`
}

// MarshalJSON renders the external house-item representation.
func (p *Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productWire{
		ID:                  p.id,
		Name:                p.name,
		Price:               p.price,
		Active:              p.active,
		StorageLocation:     p.storageLocation,
		InventoryCategory:   p.inventoryCategory,
		TrackingUnit:        p.trackingUnit,
		ParLevel:            p.parLevel,
		CurrentCount:        p.currentCount,
		DefaultVendorItemID: p.DefaultVendorItemID(),
		CreatedAt:           p.createdAt,
		UpdatedAt:           p.updatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON and validates the result.
func (p *Product) UnmarshalJSON(data []byte) error {
	parsed, err := ParseProduct(data)
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// ParseProduct builds a Product from an API payload. Missing numeric fields fall back to zero,
// a non-zero current_price_per_unit wins over price and active defaults to true.
func ParseProduct(data []byte) (*Product, error) {
	var in productInbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	price := in.Price.orZero()
	if in.CurrentPricePerUnit.set && in.CurrentPricePerUnit.value != 0 {
		price = in.CurrentPricePerUnit.value
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	id, err := in.ID.id("id")
	if err != nil {
		return nil, err
	}
	defaultVendorItemID, err := in.DefaultVendorItemID.optionalID("default_vendor_item_id")
	if err != nil {
		return nil, err
	}

	return NewProduct(ProductParams{
		ID:                  id,
		Name:                in.Name,
		Price:               price,
		Active:              active,
		StorageLocation:     in.StorageLocation,
		InventoryCategory:   in.InventoryCategory,
		TrackingUnit:        TrackingUnit(strings.ToLower(strings.TrimSpace(in.TrackingUnit))),
		ParLevel:            in.ParLevel.orZero(),
		CurrentCount:        in.CurrentCount.orZero(),
		DefaultVendorItemID: defaultVendorItemID,
		CreatedAt:           firstTime(in.CreatedAt, in.CreatedAtSnake),
		UpdatedAt:           firstTime(in.UpdatedAt, in.UpdatedAtSnake),
	})
}

type vendorSelectionWire struct {
	ID               int64           `json:"id"`
	HouseOrderID     int64           `json:"house_order_id,omitempty"`
	HouseOrderItemID int64           `json:"house_order_item_id"`
	VendorItemID     int64           `json:"vendor_item_id"`
	SelectionReason  SelectionReason `json:"selection_reason"`
	CostSavings      float64         `json:"cost_savings"`
	Alternatives     []Alternative   `json:"alternatives"`
	IsOverridden     bool            `json:"is_overridden"`
	OverriddenBy     *string         `json:"overridden_by"`
	OverriddenAt     *time.Time      `json:"overridden_at"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type selectionReasonInbound struct {
	Strategy        string     `json:"strategy"`
	Reason          string     `json:"reason"`
	ConfidenceScore flexNumber `json:"confidence_score"`
}

type vendorSelectionInbound struct {
	ID               flexNumber              `json:"id"`
	HouseOrderID     flexNumber              `json:"house_order_id"`
	HouseOrderItemID flexNumber              `json:"house_order_item_id"`
	VendorItemID     flexNumber              `json:"vendor_item_id"`
	SelectionReason  *selectionReasonInbound `json:"selection_reason"`
	CostSavings      flexNumber              `json:"cost_savings"`
	Alternatives     []Alternative           `json:"alternatives"`
	IsOverridden     bool                    `json:"is_overridden"`
	OverriddenBy     *string                 `json:"overridden_by"`
	OverriddenAt     *time.Time              `json:"overridden_at"`
	CreatedAt        *time.Time              `json:"createdAt"`
	CreatedAtSnake   *time.Time              `json:"created_at"`
	UpdatedAt        *time.Time              `json:"updatedAt"`
	UpdatedAtSnake   *time.Time              `json:"updated_at"`
}

// MarshalJSON renders the external vendor-selection representation.
func (v *VendorSelection) MarshalJSON() ([]byte, error) {
	var overriddenBy *string
	if v.overriddenBy != "" {
		actor := v.overriddenBy
		overriddenBy = &actor
	}
	return json.Marshal(vendorSelectionWire{
		ID:               v.id,
		HouseOrderID:     v.houseOrderID,
		HouseOrderItemID: v.houseOrderItemID,
		VendorItemID:     v.vendorItemID,
		SelectionReason:  v.selectionReason,
		CostSavings:      v.costSavings,
		Alternatives:     copyAlternatives(v.alternatives),
		IsOverridden:     v.isOverridden,
		OverriddenBy:     overriddenBy,
		OverriddenAt:     copyTime(v.overriddenAt),
		CreatedAt:        v.createdAt,
		UpdatedAt:        v.updatedAt,
	})
}

func (v *VendorSelection) UnmarshalJSON(data []byte) error {
	parsed, err := ParseVendorSelection(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// ParseVendorSelection builds a VendorSelection from an API payload. Missing savings default to
// zero, missing alternatives to an empty list and a missing override flag to false.
func ParseVendorSelection(data []byte) (*VendorSelection, error) {
	var in vendorSelectionInbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	var reason SelectionReason
	if in.SelectionReason != nil {
		reason = SelectionReason{
			Strategy:        SelectionStrategy(strings.TrimSpace(in.SelectionReason.Strategy)),
			Reason:          in.SelectionReason.Reason,
			ConfidenceScore: in.SelectionReason.ConfidenceScore.orZero(),
		}
	}

	var overriddenBy string
	if in.OverriddenBy != nil {
		overriddenBy = *in.OverriddenBy
	}

	var ids [4]int64
	for i, field := range []struct {
		name  string
		value flexNumber
	}{
		{"id", in.ID},
		{"house_order_id", in.HouseOrderID},
		{"house_order_item_id", in.HouseOrderItemID},
		{"vendor_item_id", in.VendorItemID},
	} {
		id, err := field.value.id(field.name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	return NewVendorSelection(VendorSelectionParams{
		ID:               ids[0],
		HouseOrderID:     ids[1],
		HouseOrderItemID: ids[2],
		VendorItemID:     ids[3],
		SelectionReason:  reason,
		CostSavings:      in.CostSavings.orZero(),
		Alternatives:     in.Alternatives,
		IsOverridden:     in.IsOverridden,
		OverriddenBy:     overriddenBy,
		OverriddenAt:     in.OverriddenAt,
		CreatedAt:        firstTime(in.CreatedAt, in.CreatedAtSnake),
		UpdatedAt:        firstTime(in.UpdatedAt, in.UpdatedAtSnake),
	})
}
