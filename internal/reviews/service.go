package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/solostack/marketplace-backend/pkg/db"
	"github.com/solostack/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
)

type reviewRepository interface {
	CreateProductReview(ctx context.Context, review *models.ProductReview) error
	CreateStoreReview(ctx context.Context, review *models.StoreReview) error
	HasPurchasedProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	HasPurchasedFromStore(ctx context.Context, userID, storeID uuid.UUID) (bool, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewDTO, error)
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error)
}

// Service exposes purchase-gated review operations.
type Service interface {
	AddProductReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	AddStoreReview(ctx context.Context, userID, storeID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewDTO, error)
}

type service struct {
	repo reviewRepository
}

// NewService builds a review service.
func NewService(repo reviewRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) AddProductReview(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	purchased, err := s.repo.HasPurchasedProduct(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase")
	}
	if !purchased {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only verified buyers can review this product")
	}

	review := &models.ProductReview{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.CreateProductReview(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "uniq_product_reviews_product_user", "product_reviews.product_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product review")
	}

	return &ReviewDTO{
		ID:        review.ID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}, nil
}

func (s *service) AddStoreReview(ctx context.Context, userID, storeID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	exists, err := s.repo.StoreExists(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	purchased, err := s.repo.HasPurchasedFromStore(ctx, userID, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase")
	}
	if !purchased {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only verified buyers can review this store")
	}

	review := &models.StoreReview{
		ID:      uuid.New(),
		StoreID: storeID,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := s.repo.CreateStoreReview(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "uniq_store_reviews_store_user", "store_reviews.store_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store review")
	}

	return &ReviewDTO{
		ID:        review.ID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}, nil
}

func (s *service) ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	items, err := s.repo.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product reviews")
	}
	return items, nil
}

func (s *service) ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewDTO, error) {
	items, err := s.repo.ListStoreReviews(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store reviews")
	}
	return items, nil
}
