package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/types"
)

// StoreDTO exposes safe storefront data in API responses.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateStoreInput captures the store creation payload.
type CreateStoreInput struct {
	Name        string  `json:"name" validate:"required,max=160"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	LogoURL     *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=160"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	LogoURL     *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

// StoreListItemDTO is the marketplace directory row.
type StoreListItemDTO struct {
	StoreDTO
	ProductCount int64 `json:"product_count"`
	SalesCount   int64 `json:"sales_count"`
}

// DashboardStatsDTO summarizes a vendor's storefront performance.
type DashboardStatsDTO struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int64           `json:"total_orders"`
	TotalProducts int64           `json:"total_products"`
	AverageRating float64         `json:"average_rating"`
	TotalViews    int64           `json:"total_views"`
}

// SalesPointDTO is one day of payout on the sales chart.
type SalesPointDTO struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		LogoURL:     m.LogoURL,
		Views:       m.Views,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from the creation input.
func (c CreateStoreInput) ToModel(ownerID uuid.UUID) *models.Store {
	return &models.Store{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        c.Name,
		Slug:        types.Slugify(c.Name),
		Description: c.Description,
		LogoURL:     c.LogoURL,
	}
}
