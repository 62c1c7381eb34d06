// internal/domain/product.go
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TrackingUnit is the unit a house item is counted in.
type TrackingUnit string

const (
	UnitEach   TrackingUnit = "each"
	UnitPound  TrackingUnit = "pound"
	UnitGallon TrackingUnit = "gallon"
	UnitDozen  TrackingUnit = "dozen"
	UnitCase   TrackingUnit = "case"
	UnitBox    TrackingUnit = "box"
	UnitBag    TrackingUnit = "bag"
	UnitBottle TrackingUnit = "bottle"
)

var validTrackingUnits = []TrackingUnit{
	UnitEach, UnitPound, UnitGallon, UnitDozen, UnitCase, UnitBox, UnitBag, UnitBottle,
}

func (u TrackingUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known TrackingUnit.
func (u TrackingUnit) IsValid() bool {
	for _, candidate := range validTrackingUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseTrackingUnit converts raw input into a TrackingUnit.
func ParseTrackingUnit(value string) (TrackingUnit, error) {
	unit := TrackingUnit(strings.ToLower(strings.TrimSpace(value)))
	if !unit.IsValid() {
		return "", NewValidationError("tracking_unit", fmt.Sprintf("invalid tracking unit %q", value))
	}
	return unit, nil
}

// TrackingUnits lists every supported unit in declaration order.
func TrackingUnits() []TrackingUnit {
	out := make([]TrackingUnit, len(validTrackingUnits))
	copy(out, validTrackingUnits)
	return out
}

// StockStatus classifies a product's on-hand quantity against its par level.
type StockStatus string

const (
	StockNormal      StockStatus = "normal"
	StockLow         StockStatus = "low_stock"
	StockOut         StockStatus = "out_of_stock"
	StockCritical    StockStatus = "critical"
	StockOverstocked StockStatus = "overstocked"
)

const (
	criticalStockRatio    = 0.5
	overstockedStockRatio = 2.0
)

// now is swapped in tests that need deterministic timestamps.
var now = func() time.Time { return time.Now().UTC() }

// Product is a house item tracked in inventory.
type Product struct {
	id                  int64
	name                string
	price               float64
	active              bool
	storageLocation     string
	inventoryCategory   string
	trackingUnit        TrackingUnit
	parLevel            float64
	currentCount        float64
	defaultVendorItemID *int64
	createdAt           time.Time
	updatedAt           time.Time
}

// ProductParams carries the constructor arguments of a Product.
type ProductParams struct {
	ID                  int64
	Name                string
	Price               float64
	Active              bool
	StorageLocation     string
	InventoryCategory   string
	TrackingUnit        TrackingUnit
	ParLevel            float64
	CurrentCount        float64
	DefaultVendorItemID *int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewProduct builds a Product and validates every invariant.
func NewProduct(params ProductParams) (*Product, error) {
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	updatedAt := params.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	p := &Product{
		id:                params.ID,
		name:              params.Name,
		price:             params.Price,
		active:            params.Active,
		storageLocation:   params.StorageLocation,
		inventoryCategory: params.InventoryCategory,
		trackingUnit:      params.TrackingUnit,
		parLevel:          params.ParLevel,
		currentCount:      params.CurrentCount,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
	if params.DefaultVendorItemID != nil {
		id := *params.DefaultVendorItemID
		p.defaultVendorItemID = &id
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) ID() int64 { return p.id }
func (p *Product) Name() string { return p.name }
func (p *Product) Price() float64 { return p.price }
func (p *Product) Active() bool { return p.active }
func (p *Product) StorageLocation() string { return p.storageLocation }
func (p *Product) InventoryCategory() string { return p.inventoryCategory }
func (p *Product) TrackingUnit() TrackingUnit { return p.trackingUnit }
func (p *Product) ParLevel() float64 { return p.parLevel }
func (p *Product) CurrentCount() float64 { return p.currentCount }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }
func (p *Product) DefaultVendorItemID() *int64 {
	if p.defaultVendorItemID == nil {
		return nil
	}
	id := *p.defaultVendorItemID
	return &id
}

// Params returns the constructor arguments that would rebuild this product.
func (p *Product) Params() ProductParams {
	return ProductParams{
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
	}
}

// Clone returns an independent copy of the product.
func (p *Product) Clone() *Product {
	c := *p
	c.defaultVendorItemID = p.DefaultVendorItemID()
	return &c
}

// WithID returns a copy carrying the identity assigned by a repository.
func (p *Product) WithID(id int64) *Product {
	c := p.Clone()
	c.id = id
	return c
}

func (p *Product) touch() {
	p.updatedAt = now()
}

func (p *Product) UpdateName(name string) error {
	if err := requireText("name", name); err != nil {
		return err
	}
	p.name = name
	p.touch()
	return nil
}

func (p *Product) UpdatePrice(price float64) error {
	if err := requireNonNegative("price", price); err != nil {
		return err
	}
	p.price = price
	p.touch()
	return nil
}

func (p *Product) UpdateStorageLocation(location string) error {
	if err := requireText("storage_location", location); err != nil {
		return err
	}
	p.storageLocation = location
	p.touch()
	return nil
}

func (p *Product) UpdateInventoryCategory(category string) error {
	if err := requireText("inventory_category", category); err != nil {
		return err
	}
	p.inventoryCategory = category
	p.touch()
	return nil
}

func (p *Product) UpdateTrackingUnit(unit TrackingUnit) error {
	if !unit.IsValid() {
		return NewValidationError("tracking_unit", fmt.Sprintf("invalid tracking unit %q", unit))
	}
	p.trackingUnit = unit
	p.touch()
	return nil
}

func (p *Product) UpdateParLevel(parLevel float64) error {
	if err := requireNonNegative("par_level", parLevel); err != nil {
		return err
	}
	p.parLevel = parLevel
	p.touch()
	return nil
}

func (p *Product) UpdateCurrentCount(count float64) error {
	if err := requireNonNegative("current_count", count); err != nil {
		return err
	}
	p.currentCount = count
	p.touch()
	return nil
}

// AdjustCount applies a relative stock change. The product is left untouched on failure.
func (p *Product) AdjustCount(delta float64) error {
	return p.UpdateCurrentCount(p.currentCount + delta)
}

func (p *Product) Activate() {
	p.active = true
	p.touch()
}

func (p *Product) Deactivate() {
	p.active = false
	p.touch()
}

func (p *Product) SetDefaultVendorItem(vendorItemID int64) {
	p.defaultVendorItemID = &vendorItemID
	p.touch()
}

func (p *Product) IsOutOfStock() bool {
	return p.currentCount == 0
}

// IsCriticalStock is a subset of IsLowStock.
func (p *Product) IsCriticalStock() bool {
	return p.currentCount > 0 && p.currentCount < p.parLevel*criticalStockRatio
}

func (p *Product) IsLowStock() bool {
	return p.currentCount > 0 && p.currentCount < p.parLevel
}

func (p *Product) IsOverstocked() bool {
	return p.currentCount > p.parLevel*overstockedStockRatio
}

// StockStatus evaluates the predicates in precedence order; the first match wins.
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.IsOutOfStock():
		return StockOut
	case p.IsCriticalStock():
		return StockCritical
	case p.IsLowStock():
		return StockLow
	case p.IsOverstocked():
		return StockOverstocked
	default:
		return StockNormal
	}
}

// StockPercentage is the on-hand count as a percentage of par, capped at 100.
func (p *Product) StockPercentage() int {
	if p.parLevel == 0 {
		return 0
	}
	return int(math.Round(math.Min(100, p.currentCount/p.parLevel*100)))
}

// NeedsReorder is true for active products below par. That covers the low and critical bands
// and an empty shelf whenever a par level is set.
func (p *Product) NeedsReorder() bool {
	return p.active && p.currentCount < p.parLevel
}

func (p *Product) ReorderQuantity() float64 {
	return math.Max(0, p.parLevel-p.currentCount)
}

// StockValue is price × current count.
func (p *Product) StockValue() decimal.Decimal {
	return decimal.NewFromFloat(p.price).Mul(decimal.NewFromFloat(p.currentCount))
}

func (p *Product) DisplayName() string {
	return p.name
}

func (p *Product) FormattedPrice() string {
	return "$" + decimal.NewFromFloat(p.price).StringFixed(2)
}

func (p *Product) StockDisplayText() string {
	switch p.StockStatus() {
	case StockOut:
		return "Out of Stock"
	case StockCritical:
		return "Critical Stock"
	case StockLow:
		return "Low Stock"
	case StockOverstocked:
		return "Overstocked"
	default:
		return "In Stock"
	}
}

func (p *Product) validate() error {
	if err := requireText("name", p.name); err != nil {
		return err
	}
	if err := requireNonNegative("price", p.price); err != nil {
		return err
	}
	if err := requireText("storage_location", p.storageLocation); err != nil {
		return err
	}
	if err := requireText("inventory_category", p.inventoryCategory); err != nil {
		return err
	}
	if !p.trackingUnit.IsValid() {
		return NewValidationError("tracking_unit", fmt.Sprintf("invalid tracking unit %q", p.trackingUnit))
	}
	if err := requireNonNegative("par_level", p.parLevel); err != nil {
		return err
	}
	return requireNonNegative("current_count", p.currentCount)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "cannot be empty")
	}
	return nil
}

func requireNonNegative(field string, value float64) error {
	if value < 0 || math.IsNaN(value) {
		return NewValidationError(field, "cannot be negative")
	}
	return nil
}
