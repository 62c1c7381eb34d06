// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/larderline/larder-backend/internal/domain"
)

// MemoryProductRepository is a thread-safe in-memory domain.ProductRepository.
// Stored products are cloned on the way in and out.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]*domain.Product),
	}
}

var _ domain.ProductRepository = (*MemoryProductRepository)(nil)

func (r *MemoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *MemoryProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, func(*domain.Product) bool { return true })
}

func (r *MemoryProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := product.ID()
	if id == 0 {
		r.nextID++
		id = r.nextID
	} else if id > r.nextID {
		r.nextID = id
	}

	stored := product.WithID(id)
	r.products[id] = stored
	return stored.Clone(), nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID()]; !ok {
		return nil, domain.NewNotFoundError("house item", product.ID())
	}
	r.products[product.ID()] = product.Clone()
	return product.Clone(), nil
}

func (r *MemoryProductRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.NewNotFoundError("house item", id)
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	matches, err := r.filter(ctx, func(p *domain.Product) bool {
		return strings.EqualFold(p.Name(), name)
	})
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (r *MemoryProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.filter(ctx, func(p *domain.Product) bool {
		return strings.EqualFold(p.InventoryCategory(), category)
	})
}

func (r *MemoryProductRepository) FindByStorageLocation(ctx context.Context, location string) ([]*domain.Product, error) {
	return r.filter(ctx, func(p *domain.Product) bool {
		return strings.EqualFold(p.StorageLocation(), location)
	})
}

func (r *MemoryProductRepository) FindActiveProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, (*domain.Product).Active)
}

func (r *MemoryProductRepository) FindLowStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, (*domain.Product).IsLowStock)
}

func (r *MemoryProductRepository) FindOutOfStockProducts(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, (*domain.Product).IsOutOfStock)
}

func (r *MemoryProductRepository) FindProductsNeedingReorder(ctx context.Context) ([]*domain.Product, error) {
	return r.filter(ctx, (*domain.Product).NeedsReorder)
}

func (r *MemoryProductRepository) UpdateStockCount(ctx context.Context, id int64, newCount float64) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		return p.UpdateCurrentCount(newCount)
	})
}

func (r *MemoryProductRepository) AdjustStockCount(ctx context.Context, id int64, delta float64) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error {
		return p.AdjustCount(delta)
	})
}

// mutate applies fn to a working copy and stores it only when fn succeeds.
func (r *MemoryProductRepository) mutate(ctx context.Context, id int64, fn func(*domain.Product) error) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("house item", id)
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.products[id] = working
	return working.Clone(), nil
}

func (r *MemoryProductRepository) filter(ctx context.Context, keep func(*domain.Product) bool) ([]*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// MemoryVendorSelectionRepository is a thread-safe in-memory domain.VendorSelectionRepository.
type MemoryVendorSelectionRepository struct {
	mu         sync.RWMutex
	nextID     int64
	selections map[int64]*domain.VendorSelection
}

func NewMemoryVendorSelectionRepository() *MemoryVendorSelectionRepository {
	return &MemoryVendorSelectionRepository{
		selections: make(map[int64]*domain.VendorSelection),
	}
}

var _ domain.VendorSelectionRepository = (*MemoryVendorSelectionRepository)(nil)

func (r *MemoryVendorSelectionRepository) FindByID(ctx context.Context, id int64) (*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.selections[id]
	if !ok {
		return nil, nil
	}
	return v.Clone(), nil
}

func (r *MemoryVendorSelectionRepository) FindAll(ctx context.Context) ([]*domain.VendorSelection, error) {
	return r.filter(ctx, func(*domain.VendorSelection) bool { return true })
}

func (r *MemoryVendorSelectionRepository) Save(ctx context.Context, selection *domain.VendorSelection) (*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := selection.ID()
	if id == 0 {
		r.nextID++
		id = r.nextID
	} else if id > r.nextID {
		r.nextID = id
	}

	stored := selection.WithID(id)
	r.selections[id] = stored
	return stored.Clone(), nil
}

func (r *MemoryVendorSelectionRepository) Update(ctx context.Context, selection *domain.VendorSelection) (*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.selections[selection.ID()]; !ok {
		return nil, domain.NewNotFoundError("vendor selection", selection.ID())
	}
	r.selections[selection.ID()] = selection.Clone()
	return selection.Clone(), nil
}

func (r *MemoryVendorSelectionRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.selections[id]; !ok {
		return domain.NewNotFoundError("vendor selection", id)
	}
	delete(r.selections, id)
	return nil
}

func (r *MemoryVendorSelectionRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*domain.VendorSelection, error) {
	return r.filter(ctx, func(v *domain.VendorSelection) bool {
		return v.HouseOrderID() == orderID
	})
}

func (r *MemoryVendorSelectionRepository) FindByHouseOrderItemID(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byItem(itemID)
	if stored == nil {
		return nil, nil
	}
	return stored.Clone(), nil
}

func (r *MemoryVendorSelectionRepository) FindOverriddenSelections(ctx context.Context) ([]*domain.VendorSelection, error) {
	return r.filter(ctx, (*domain.VendorSelection).IsOverridden)
}

func (r *MemoryVendorSelectionRepository) FindSelectionsByStrategy(ctx context.Context, strategy domain.SelectionStrategy) ([]*domain.VendorSelection, error) {
	return r.filter(ctx, func(v *domain.VendorSelection) bool {
		return v.Strategy() == strategy
	})
}

func (r *MemoryVendorSelectionRepository) OverrideSelection(ctx context.Context, itemID, vendorItemID int64, overriddenBy string) (*domain.VendorSelection, error) {
	return r.mutate(ctx, itemID, func(v *domain.VendorSelection) error {
		return v.OverrideSelection(vendorItemID, overriddenBy)
	})
}

func (r *MemoryVendorSelectionRepository) ResetOverride(ctx context.Context, itemID int64) (*domain.VendorSelection, error) {
	return r.mutate(ctx, itemID, (*domain.VendorSelection).ResetOverride)
}

func (r *MemoryVendorSelectionRepository) mutate(ctx context.Context, itemID int64, fn func(*domain.VendorSelection) error) (*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.byItem(itemID)
	if stored == nil {
		return nil, domain.NewNotFoundError("vendor selection for house order item", itemID)
	}
	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.selections[working.ID()] = working
	return working.Clone(), nil
}

// byItem returns the most recent selection of an item. Callers hold the lock.
func (r *MemoryVendorSelectionRepository) byItem(itemID int64) *domain.VendorSelection {
	var found *domain.VendorSelection
	for _, v := range r.selections {
		if v.HouseOrderItemID() == itemID && (found == nil || v.ID() > found.ID()) {
			found = v
		}
	}
	return found
}

func (r *MemoryVendorSelectionRepository) filter(ctx context.Context, keep func(*domain.VendorSelection) bool) ([]*domain.VendorSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.VendorSelection, 0, len(r.selections))
	for _, v := range r.selections {
		if keep(v) {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}
