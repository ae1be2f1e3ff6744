package stats

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
)

// PlatformStatsDTO carries the marketplace-wide counters shown on the
// landing page.
type PlatformStatsDTO struct {
	TotalProducts int64 `json:"total_products"`
	TotalStores   int64 `json:"total_stores"`
	TotalSales    int64 `json:"total_sales"`
}

// Repository counts marketplace-wide rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to platform counters.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Counts returns active products, stores, and completed sales (sub-orders).
func (r *Repository) Counts(ctx context.Context) (*PlatformStatsDTO, error) {
	var stats PlatformStatsDTO
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active").Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&stats.TotalStores).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.SubOrder{}).Count(&stats.TotalSales).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

type statsRepository interface {
	Counts(ctx context.Context) (*PlatformStatsDTO, error)
}

// Service exposes the public platform counters.
type Service interface {
	Platform(ctx context.Context) (*PlatformStatsDTO, error)
}

type service struct {
	repo statsRepository
}

// NewService builds a stats service.
func NewService(repo statsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Platform(ctx context.Context) (*PlatformStatsDTO, error) {
	stats, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform stats")
	}
	return stats, nil
}
