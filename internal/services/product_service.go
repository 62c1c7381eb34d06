// internal/services/product_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/larderline/larder-backend/internal/domain"
	"github.com/larderline/larder-backend/internal/metrics"
	"github.com/larderline/larder-backend/internal/utils"
)

type ProductService struct {
	products domain.ProductRepository
	metrics  *metrics.Metrics
}

type CreateProductRequest struct {
	Name                string  `json:"name" validate:"notblank,max=255"`
	Price               float64 `json:"price" validate:"min=0"`
	StorageLocation     string  `json:"storage_location" validate:"notblank,max=100"`
	InventoryCategory   string  `json:"inventory_category" validate:"notblank,max=100"`
	TrackingUnit        string  `json:"tracking_unit" validate:"required,tracking_unit"`
	ParLevel            float64 `json:"par_level" validate:"min=0"`
	CurrentCount        float64 `json:"current_count" validate:"min=0"`
	Active              *bool   `json:"active,omitempty"`
	DefaultVendorItemID *int64  `json:"default_vendor_item_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateProductRequest applies only the fields that are present.
type UpdateProductRequest struct {
	ID                  int64    `json:"-"`
	Name                *string  `json:"name,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	StorageLocation     *string  `json:"storage_location,omitempty"`
	InventoryCategory   *string  `json:"inventory_category,omitempty"`
	TrackingUnit        *string  `json:"tracking_unit,omitempty"`
	ParLevel            *float64 `json:"par_level,omitempty"`
	CurrentCount        *float64 `json:"current_count,omitempty"`
	Active              *bool    `json:"active,omitempty"`
	DefaultVendorItemID *int64   `json:"default_vendor_item_id,omitempty" validate:"omitempty,gt=0"`
}

type StockAdjustmentRequest struct {
	ID         int64   `json:"-"`
	Adjustment float64 `json:"adjustment"`
	Reason     string  `json:"reason,omitempty" validate:"max=255"`
}

// ProductFilter narrows ListProducts. Zero values mean no constraint.
type ProductFilter struct {
	Category string
	Location string
	Active   *bool
	Stock    string // low, out or reorder
	Search   string
}

type InventorySummary struct {
	TotalProducts      int             `json:"total_products"`
	TotalValue         decimal.Decimal `json:"total_value"`
	NormalCount        int             `json:"normal_count"`
	LowStockCount      int             `json:"low_stock_count"`
	OutOfStockCount    int             `json:"out_of_stock_count"`
	CriticalStockCount int             `json:"critical_stock_count"`
	OverstockedCount   int             `json:"overstocked_count"`
}

type ReorderLine struct {
	Product       *domain.Product `json:"product"`
	Quantity      float64         `json:"quantity"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

type ReorderList struct {
	Lines     []ReorderLine   `json:"lines"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func NewProductService(products domain.ProductRepository, m *metrics.Metrics) *ProductService {
	return &ProductService{
		products: products,
		metrics:  m,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*domain.Product, error) {
	if err := utils.ValidateCommand(req); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product, err := domain.NewProduct(domain.ProductParams{
		Name:                strings.TrimSpace(req.Name),
		Price:               req.Price,
		Active:              active,
		StorageLocation:     strings.TrimSpace(req.StorageLocation),
		InventoryCategory:   strings.TrimSpace(req.InventoryCategory),
		TrackingUnit:        domain.TrackingUnit(strings.ToLower(strings.TrimSpace(req.TrackingUnit))),
		ParLevel:            req.ParLevel,
		CurrentCount:        req.CurrentCount,
		DefaultVendorItemID: req.DefaultVendorItemID,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to save house item: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": saved.ID(),
		"name":       saved.Name(),
		"category":   saved.InventoryCategory(),
	}).Info("House item created")
	return saved, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*domain.Product, error) {
	if err := utils.ValidateCommand(req); err != nil {
		return nil, err
	}

	product, err := s.requireProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := applyProductUpdate(product, req); err != nil {
		return nil, err
	}

	updated, err := s.products.Update(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to update house item %d: %w", req.ID, err)
	}

	logrus.WithField("product_id", updated.ID()).Info("House item updated")
	return updated, nil
}

func applyProductUpdate(p *domain.Product, req *UpdateProductRequest) error {
	if req.Name != nil {
		if err := p.UpdateName(strings.TrimSpace(*req.Name)); err != nil {
			return err
		}
	}
	if req.Price != nil {
		if err := p.UpdatePrice(*req.Price); err != nil {
			return err
		}
	}
	if req.StorageLocation != nil {
		if err := p.UpdateStorageLocation(strings.TrimSpace(*req.StorageLocation)); err != nil {
			return err
		}
	}
	if req.InventoryCategory != nil {
		if err := p.UpdateInventoryCategory(strings.TrimSpace(*req.InventoryCategory)); err != nil {
			return err
		}
	}
	if req.TrackingUnit != nil {
		unit, err := domain.ParseTrackingUnit(*req.TrackingUnit)
		if err != nil {
			return err
		}
		if err := p.UpdateTrackingUnit(unit); err != nil {
			return err
		}
	}
	if req.ParLevel != nil {
		if err := p.UpdateParLevel(*req.ParLevel); err != nil {
			return err
		}
	}
	if req.CurrentCount != nil {
		if err := p.UpdateCurrentCount(*req.CurrentCount); err != nil {
			return err
		}
	}
	if req.Active != nil {
		if *req.Active {
			p.Activate()
		} else {
			p.Deactivate()
		}
	}
	if req.DefaultVendorItemID != nil {
		p.SetDefaultVendorItem(*req.DefaultVendorItemID)
	}
	return nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.requireProduct(ctx, id); err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete house item %d: %w", id, err)
	}

	logrus.WithField("product_id", id).Info("House item deleted")
	return nil
}

// AdjustStock applies a relative change. The resulting count is checked before anything is written.
func (s *ProductService) AdjustStock(ctx context.Context, req *StockAdjustmentRequest) (product *domain.Product, err error) {
	defer func() { s.metrics.StockChanged("adjust", err) }()

	if err := utils.ValidateCommand(req); err != nil {
		return nil, err
	}

	current, err := s.requireProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	newCount := current.CurrentCount() + req.Adjustment
	if newCount < 0 {
		return nil, domain.NewValidationError("current_count", "stock count cannot be negative")
	}

	updated, err := s.products.UpdateStockCount(ctx, req.ID, newCount)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock of house item %d: %w", req.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": req.ID,
		"adjustment": req.Adjustment,
		"reason":     req.Reason,
		"new_count":  updated.CurrentCount(),
		"status":     updated.StockStatus(),
	}).Info("Stock adjusted")
	return updated, nil
}

func (s *ProductService) SetStockCount(ctx context.Context, id int64, count float64) (product *domain.Product, err error) {
	defer func() { s.metrics.StockChanged("set", err) }()

	if count < 0 {
		return nil, domain.NewValidationError("current_count", "stock count cannot be negative")
	}

	updated, err := s.products.UpdateStockCount(ctx, id, count)
	if err != nil {
		return nil, fmt.Errorf("failed to set stock of house item %d: %w", id, err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": id,
		"new_count":  count,
	}).Info("Stock count set")
	return updated, nil
}

func (s *ProductService) GetAllProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, "all", s.products.FindAll)
}

// ListProducts combines the finder that matches the stock filter with the remaining predicates.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	var (
		products []*domain.Product
		err      error
	)
	switch strings.ToLower(filter.Stock) {
	case "":
		products, err = s.GetAllProducts(ctx)
	case "low":
		products, err = s.GetLowStockProducts(ctx)
	case "out":
		products, err = s.GetOutOfStockProducts(ctx)
	case "reorder":
		products, err = s.GetProductsNeedingReorder(ctx)
	default:
		return nil, domain.NewValidationError("stock", "must be one of low, out, reorder")
	}
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	matches := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if filter.Category != "" && !strings.EqualFold(p.InventoryCategory(), filter.Category) {
			continue
		}
		if filter.Location != "" && !strings.EqualFold(p.StorageLocation(), filter.Location) {
			continue
		}
		if filter.Active != nil && p.Active() != *filter.Active {
			continue
		}
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		matches = append(matches, p)
	}
	return matches, nil
}

// GetProductByID returns nil without error when the product does not exist.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load house item %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	products, err := s.products.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list house items in category %q: %w", category, err)
	}
	return products, nil
}

func (s *ProductService) GetProductsByLocation(ctx context.Context, location string) ([]*domain.Product, error) {
	products, err := s.products.FindByStorageLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list house items at %q: %w", location, err)
	}
	return products, nil
}

func (s *ProductService) GetActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, "active", s.products.FindActiveProducts)
}

func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, "low stock", s.products.FindLowStockProducts)
}

func (s *ProductService) GetOutOfStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, "out of stock", s.products.FindOutOfStockProducts)
}

func (s *ProductService) GetProductsNeedingReorder(ctx context.Context) ([]*domain.Product, error) {
	return s.list(ctx, "reorder", s.products.FindProductsNeedingReorder)
}

// GetInventorySummary folds every product once, using StockStatus as the only classification.
func (s *ProductService) GetInventorySummary(ctx context.Context) (*InventorySummary, error) {
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{TotalValue: decimal.Zero}
	for _, p := range products {
		summary.TotalProducts++
		summary.TotalValue = summary.TotalValue.Add(p.StockValue())

		switch p.StockStatus() {
		case domain.StockLow:
			summary.LowStockCount++
		case domain.StockOut:
			summary.OutOfStockCount++
		case domain.StockCritical:
			summary.CriticalStockCount++
		case domain.StockOverstocked:
			summary.OverstockedCount++
		default:
			summary.NormalCount++
		}
	}

	s.metrics.InventorySnapshot(map[string]int{
		string(domain.StockNormal):      summary.NormalCount,
		string(domain.StockLow):         summary.LowStockCount,
		string(domain.StockOut):         summary.OutOfStockCount,
		string(domain.StockCritical):    summary.CriticalStockCount,
		string(domain.StockOverstocked): summary.OverstockedCount,
	}, summary.TotalValue.InexactFloat64())

	return summary, nil
}

// SearchProducts matches the query case-insensitively against name, category and location.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(query))
	matches := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if matchesSearch(p, term) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func matchesSearch(p *domain.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name()), term) ||
		strings.Contains(strings.ToLower(p.InventoryCategory()), term) ||
		strings.Contains(strings.ToLower(p.StorageLocation()), term)
}

// GetReorderList prices every product that needs reordering, most expensive line first.
func (s *ProductService) GetReorderList(ctx context.Context) (*ReorderList, error) {
	products, err := s.GetProductsNeedingReorder(ctx)
	if err != nil {
		return nil, err
	}

	list := &ReorderList{Lines: make([]ReorderLine, 0, len(products)), TotalCost: decimal.Zero}
	for _, p := range products {
		quantity := p.ReorderQuantity()
		cost := decimal.NewFromFloat(p.Price()).Mul(decimal.NewFromFloat(quantity)).Round(2)
		list.Lines = append(list.Lines, ReorderLine{Product: p, Quantity: quantity, EstimatedCost: cost})
		list.TotalCost = list.TotalCost.Add(cost)
	}

	sort.SliceStable(list.Lines, func(i, j int) bool {
		return list.Lines[i].EstimatedCost.GreaterThan(list.Lines[j].EstimatedCost)
	})
	return list, nil
}

func (s *ProductService) requireProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load house item %d: %w", id, err)
	}
	if product == nil {
		return nil, domain.NewNotFoundError("house item", id)
	}
	return product, nil
}

func (s *ProductService) list(ctx context.Context, label string, find func(context.Context) ([]*domain.Product, error)) ([]*domain.Product, error) {
	products, err := find(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s house items: %w", label, err)
	}
	return products, nil
}
