package reviews

import (
	"time"

	"github.com/google/uuid"
)

// CreateReviewInput is a rating submission for a product or a store.
type CreateReviewInput struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// ReviewDTO is a published review with reviewer identity.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	ReviewerName string    `json:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at"`
}
