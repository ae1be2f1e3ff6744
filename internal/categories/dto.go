package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/types"
)

// CategoryDTO is the public taxonomy node.
type CategoryDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateCategoryInput captures the creation payload.
type CreateCategoryInput struct {
	Name     string     `json:"name" validate:"required,max=120"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// FromModel maps the persisted category into a DTO.
func FromModel(m *models.Category) *CategoryDTO {
	if m == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
	}
}

// ToModel prepares the GORM model from the creation input.
func (c CreateCategoryInput) ToModel() *models.Category {
	return &models.Category{
		ID:       uuid.New(),
		Name:     c.Name,
		Slug:     types.Slugify(c.Name),
		ParentID: c.ParentID,
	}
}
