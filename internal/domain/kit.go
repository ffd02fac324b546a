package domain

import "time"

// Kit is a virtual product assembled from fixed quantities of real
// products. It has no stock of its own; availability is always derived
// from the constituent products at read time.
type Kit struct {
	ID         string         `json:"id"`
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	Components []KitComponent `json:"components"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type KitComponent struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Qty       int    `json:"qty"`
}

// Availability computes how many complete kits the given per-product
// available stock can assemble: min over components of
// floor(available / component qty). A component whose product is
// missing from the map contributes zero.
func (k Kit) Availability(availableByProductID map[string]int) int {
	if len(k.Components) == 0 {
		return 0
	}
	min := -1
	for _, c := range k.Components {
		if c.Qty <= 0 {
			return 0
		}
		n := availableByProductID[c.ProductID] / c.Qty
		if min < 0 || n < min {
			min = n
		}
	}
	return min
}

// Validate checks kit invariants before persisting.
func (k *Kit) Validate() []error {
	var errs []error
	if NormalizeSKU(k.SKU) == "" {
		errs = append(errs, ErrSKURequired)
	}
	if k.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if len(k.Components) == 0 {
		errs = append(errs, ErrComponentsRequired)
	}
	for _, c := range k.Components {
		if c.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
			break
		}
	}
	return errs
}
