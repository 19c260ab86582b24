package handler

import (
	"time"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
)

// RegisterRequest represents a request to create a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change for the current user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// DirectoryEntryResponse is the public directory view of an account.
// Balance is deliberately absent.
type DirectoryEntryResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse carries a signed token together with the account it belongs to
type AuthResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// CosmeticResponse represents a cosmetic in API responses. Owned is present
// only on single-cosmetic reads for authenticated callers.
type CosmeticResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Rarity    string  `json:"rarity"`
	AddedDate string  `json:"added_date,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Price     *int64  `json:"price,omitempty"`
	SalePrice *int64  `json:"sale_price,omitempty"`
	IsNew     bool    `json:"is_new"`
	OnSale    bool    `json:"on_sale"`
	BundleID  *string `json:"bundle_id,omitempty"`
	Owned     *bool   `json:"owned,omitempty"`
}

// PurchaseRequest represents a purchase or return request body
type PurchaseRequest struct {
	CosmeticID string `json:"cosmetic_id" binding:"required"`
}

// CatalogFilterParams represents catalog listing query parameters
type CatalogFilterParams struct {
	Name        string `form:"name"`
	Type        string `form:"type"`
	Rarity      string `form:"rarity"`
	IsNew       *bool  `form:"is_new"`
	OnSale      *bool  `form:"on_sale"`
	OnPromotion bool   `form:"on_promotion"`
	BundleID    string `form:"bundle_id"`
	FromDate    string `form:"from_date"`
	ToDate      string `form:"to_date"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID.String(),
		Email:     acc.Email,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
}

func mapAccountToDirectoryEntry(acc *account.Account) DirectoryEntryResponse {
	return DirectoryEntryResponse{
		ID:        acc.ID.String(),
		Email:     acc.Email,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
	}
}

func mapCosmeticToResponse(c *catalog.Cosmetic) CosmeticResponse {
	resp := CosmeticResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Rarity:    c.Rarity,
		ImageURL:  c.ImageURL,
		Price:     c.BasePrice,
		SalePrice: c.SalePrice,
		IsNew:     c.IsNew,
		OnSale:    c.OnSale,
		BundleID:  c.BundleID,
	}
	if c.AddedDate != nil {
		resp.AddedDate = c.AddedDate.Format(time.RFC3339)
	}
	return resp
}

func (p CatalogFilterParams) toFilter() catalog.Filter {
	return catalog.Filter{
		Name:        p.Name,
		Type:        p.Type,
		Rarity:      p.Rarity,
		IsNew:       p.IsNew,
		OnSale:      p.OnSale,
		OnPromotion: p.OnPromotion,
		BundleID:    p.BundleID,
		FromDate:    p.FromDate,
		ToDate:      p.ToDate,
	}
}
