package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db"
	"github.com/solostack/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/types"
)

const salesChartDays = 7

type storeRepository interface {
	CreateWithTx(tx *gorm.DB, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindBySlug(ctx context.Context, slug string) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]StoreListItemDTO, error)
	CountProducts(ctx context.Context, storeID uuid.UUID) (int64, error)
	SalesTotals(ctx context.Context, storeID uuid.UUID) (int64, int64, error)
	AverageRating(ctx context.Context, storeID uuid.UUID) (float64, error)
	SalesSince(ctx context.Context, storeID uuid.UUID, cutoff time.Time) ([]models.SubOrder, error)
	PromoteOwnerWithTx(tx *gorm.DB, ownerID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	MyStore(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, ownerID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Public(ctx context.Context, slug string) (*StoreDTO, error)
	List(ctx context.Context) ([]StoreListItemDTO, error)
	DashboardStats(ctx context.Context, ownerID uuid.UUID) (*DashboardStatsDTO, error)
	SalesChart(ctx context.Context, ownerID uuid.UUID) ([]SalesPointDTO, error)
}

type service struct {
	repo storeRepository
	tx   txRunner
}

// NewService builds a store service with the provided repository and tx runner.
func NewService(repo storeRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	store := input.ToModel(ownerID)
	if store.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name must contain letters or digits")
	}

	// Store creation and vendor promotion succeed or fail together.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateWithTx(tx, store); err != nil {
			return err
		}
		return s.repo.PromoteOwnerWithTx(tx, ownerID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uniq_stores_slug", "stores.slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store name already taken")
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already owns a store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}

	return FromModel(store), nil
}

func (s *service) MyStore(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, ownerID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := *input.Name
		slug := types.Slugify(name)
		if slug == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name must contain letters or digits")
		}
		store.Name = name
		store.Slug = slug
	}
	if input.Description != nil {
		store.Description = cloneStringPtr(input.Description)
	}
	if input.LogoURL != nil {
		store.LogoURL = cloneStringPtr(input.LogoURL)
	}

	if err := s.repo.Update(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "uniq_stores_slug", "stores.slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) Public(ctx context.Context, slug string) (*StoreDTO, error) {
	store, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	if err := s.repo.IncrementViews(ctx, store.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count view")
	}
	store.Views++

	return FromModel(store), nil
}

func (s *service) List(ctx context.Context) ([]StoreListItemDTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return items, nil
}

func (s *service) DashboardStats(ctx context.Context, ownerID uuid.UUID) (*DashboardStatsDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	productCount, err := s.repo.CountProducts(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	orderCount, payoutCents, err := s.repo.SalesTotals(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales")
	}
	rating, err := s.repo.AverageRating(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate rating")
	}

	return &DashboardStatsDTO{
		TotalRevenue:  types.FormatMoney(int(payoutCents)),
		TotalOrders:   orderCount,
		TotalProducts: productCount,
		AverageRating: rating,
		TotalViews:    store.Views,
	}, nil
}

func (s *service) SalesChart(ctx context.Context, ownerID uuid.UUID) ([]SalesPointDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -(salesChartDays - 1)).Truncate(24 * time.Hour)

	subOrders, err := s.repo.SalesSince(ctx, store.ID, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales")
	}

	// Bucket by calendar day in Go to stay dialect neutral.
	buckets := make(map[string]int, salesChartDays)
	for _, so := range subOrders {
		day := so.CreatedAt.UTC().Format("2006-01-02")
		buckets[day] += so.PayoutCents
	}

	points := make([]SalesPointDTO, 0, salesChartDays)
	for i := 0; i < salesChartDays; i++ {
		day := cutoff.AddDate(0, 0, i).Format("2006-01-02")
		points = append(points, SalesPointDTO{
			Date:    day,
			Revenue: types.FormatMoney(buckets[day]),
		})
	}
	return points, nil
}

func (s *service) ownedStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
