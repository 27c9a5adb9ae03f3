package domain

import "time"

// ProductStatus represents the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is a catalog entry. A product either carries its own price and
// stock, or is decomposed into variants that each carry their own.
type Product struct {
	ID          int64
	Name        Translated
	Description Translated

	// Specifications are locale-neutral attribute name -> value pairs
	// (dosage, volume, brand, ...). Snapshotted into order items.
	Specifications map[string]string

	// Price and Stock apply when the product has no variants; with
	// variants they are fallback display values only.
	Price int64
	Stock int32

	Status   ProductStatus
	Variants []ProductVariant

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductVariant is a purchasable configuration of a product with its own
// SKU, price and stock.
type ProductVariant struct {
	ID        int64
	ProductID int64
	SKU       string
	Price     int64
	Stock     int32
	IsActive  bool
}

// HasVariants reports whether the product is decomposed into variants.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// IsAvailable reports whether the product can currently be purchased:
// active, and either in stock itself or with at least one active variant
// in stock.
func (p *Product) IsAvailable() bool {
	if p.Status != ProductStatusActive {
		return false
	}
	if !p.HasVariants() {
		return p.Stock > 0
	}
	for _, v := range p.Variants {
		if v.IsActive && v.Stock > 0 {
			return true
		}
	}
	return false
}

// Variant returns the variant with the given id, or nil.
func (p *Product) Variant(id int64) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// EffectivePrice is the price used when no variant is selected: the base
// price for simple products, otherwise the lowest active variant price.
func (p *Product) EffectivePrice() int64 {
	if !p.HasVariants() {
		return p.Price
	}
	return p.LowestPrice()
}

// LowestPrice is the minimum across active variant prices and the base
// price. For simple products it is the base price.
func (p *Product) LowestPrice() int64 {
	lowest := p.Price
	for _, v := range p.Variants {
		if !v.IsActive {
			continue
		}
		if lowest == 0 || v.Price < lowest {
			lowest = v.Price
		}
	}
	return lowest
}

// HighestPrice is the maximum across active variant prices and the base
// price.
func (p *Product) HighestPrice() int64 {
	highest := p.Price
	for _, v := range p.Variants {
		if v.IsActive && v.Price > highest {
			highest = v.Price
		}
	}
	return highest
}

// AvailableStock is the purchasable quantity: the base stock for simple
// products, otherwise the sum across active variants.
func (p *Product) AvailableStock() int32 {
	if !p.HasVariants() {
		return p.Stock
	}
	var total int32
	for _, v := range p.Variants {
		if v.IsActive {
			total += v.Stock
		}
	}
	return total
}
