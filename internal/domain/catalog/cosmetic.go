package catalog

import (
	"time"
)

// Cosmetic is a catalog row. The catalog is owned by the sync job; the
// settlement engines treat it as read-only and capture the effective price
// into the purchase record at settlement time.
type Cosmetic struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Rarity    string     `json:"rarity"`
	AddedDate *time.Time `json:"added_date,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	BasePrice *int64     `json:"price,omitempty"`
	SalePrice *int64     `json:"sale_price,omitempty"`
	IsNew     bool       `json:"is_new"`
	OnSale    bool       `json:"on_sale"`
	BundleID  *string    `json:"bundle_id,omitempty"`
	SyncedAt  time.Time  `json:"-"`
}

// EffectivePrice is the price a purchase settles at: sale price if set,
// else base price, else 0 (a free item, not an error).
func (c *Cosmetic) EffectivePrice() int64 {
	if c.SalePrice != nil {
		return *c.SalePrice
	}
	if c.BasePrice != nil {
		return *c.BasePrice
	}
	return 0
}

// OnPromotion reports whether the sale price actually undercuts the base price
func (c *Cosmetic) OnPromotion() bool {
	return c.SalePrice != nil && c.BasePrice != nil && *c.SalePrice < *c.BasePrice
}
