package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db"
	"github.com/solostack/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/types"
)

const (
	newArrivalsLimit = 8
	trendingLimit    = 10
	topStoresLimit   = 4
)

type productRepository interface {
	CreateWithTx(tx *gorm.DB, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	OwnerOf(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
	ReplaceVariantsWithTx(tx *gorm.DB, productID uuid.UUID, variants []models.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, limit, offset int) ([]PublicProductDTO, error)
	ListPromotions(ctx context.Context, now time.Time) ([]PublicProductDTO, error)
	NewArrivals(ctx context.Context, limit int) ([]PublicProductDTO, error)
	Trending(ctx context.Context, limit int) ([]PublicProductDTO, error)
	TopStores(ctx context.Context, limit int) ([]topStoreRow, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]VendorProductDTO, error)
	ListActiveByStore(ctx context.Context, storeID uuid.UUID) ([]PublicProductDTO, error)
}

type storeLookup interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, ownerID, productID uuid.UUID) error
	GetPublic(ctx context.Context, slug string) (*ProductDTO, error)
	ListPublic(ctx context.Context, limit, offset int) ([]PublicProductDTO, error)
	ListPromotions(ctx context.Context) ([]PublicProductDTO, error)
	VendorProducts(ctx context.Context, ownerID uuid.UUID) ([]VendorProductDTO, error)
	StoreProducts(ctx context.Context, storeID uuid.UUID) ([]PublicProductDTO, error)
	HomeData(ctx context.Context) (*HomeDataDTO, error)
}

type service struct {
	repo   productRepository
	stores storeLookup
	tx     txRunner
}

// NewService builds a catalog service.
func NewService(repo productRepository, stores storeLookup, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, stores: stores, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	product, err := input.ToModel(store.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.CreateWithTx(tx, product)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.BasePrice != nil {
		cents, err := types.ParseMoney(*input.BasePrice)
		if err != nil || cents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid base price")
		}
		product.BasePriceCents = cents
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.IsPromotion != nil {
		product.IsPromotion = *input.IsPromotion
	}
	if input.DiscountPercent != nil {
		product.DiscountPercent = *input.DiscountPercent
	}
	if input.PromotionEndsAt != nil {
		product.PromotionEndsAt = input.PromotionEndsAt
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(input.Tags)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if !product.IsPromotion {
		product.DiscountPercent = 0
	}

	var replacement []models.ProductVariant
	if input.Variants != nil {
		for _, v := range input.Variants {
			variant, err := v.toModel(product.ID)
			if err != nil {
				return nil, err
			}
			replacement = append(replacement, *variant)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, product); err != nil {
			return err
		}
		if input.Variants != nil {
			return s.repo.ReplaceVariantsWithTx(tx, product.ID, replacement)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	if input.Variants != nil {
		product.Variants = replacement
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, ownerID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetPublic(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) ListPublic(ctx context.Context, limit, offset int) ([]PublicProductDTO, error) {
	items, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return items, nil
}

func (s *service) ListPromotions(ctx context.Context) ([]PublicProductDTO, error) {
	items, err := s.repo.ListPromotions(ctx, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}
	return items, nil
}

func (s *service) VendorProducts(ctx context.Context, ownerID uuid.UUID) ([]VendorProductDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	return items, nil
}

func (s *service) StoreProducts(ctx context.Context, storeID uuid.UUID) ([]PublicProductDTO, error) {
	items, err := s.repo.ListActiveByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store products")
	}
	return items, nil
}

func (s *service) HomeData(ctx context.Context) (*HomeDataDTO, error) {
	arrivals, err := s.repo.NewArrivals(ctx, newArrivalsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load new arrivals")
	}
	trending, err := s.repo.Trending(ctx, trendingLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trending")
	}
	topRows, err := s.repo.TopStores(ctx, topStoresLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top stores")
	}

	topStores := make([]StoreSummaryDTO, 0, len(topRows))
	for i := range topRows {
		topStores = append(topStores, StoreSummaryDTO{
			ID:      topRows[i].Store.ID,
			Name:    topRows[i].Store.Name,
			Slug:    topRows[i].Store.Slug,
			LogoURL: topRows[i].Store.LogoURL,
			Revenue: types.FormatMoney(int(topRows[i].RevenueCents)),
		})
	}

	return &HomeDataDTO{
		NewArrivals: arrivals,
		Trending:    trending,
		TopStores:   topStores,
	}, nil
}

func (s *service) ownedStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor store required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) ownedProduct(ctx context.Context, ownerID, productID uuid.UUID) (*models.Product, error) {
	owner, err := s.repo.OwnerOf(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product owner")
	}
	if owner != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
