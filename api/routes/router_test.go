package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/solostack/marketplace-backend/internal/auth"
	"github.com/solostack/marketplace-backend/internal/categories"
	"github.com/solostack/marketplace-backend/internal/orders"
	"github.com/solostack/marketplace-backend/internal/products"
	"github.com/solostack/marketplace-backend/internal/reviews"
	"github.com/solostack/marketplace-backend/internal/stats"
	"github.com/solostack/marketplace-backend/internal/stores"
	"github.com/solostack/marketplace-backend/internal/users"
	pkgAuth "github.com/solostack/marketplace-backend/pkg/auth"
	"github.com/solostack/marketplace-backend/pkg/config"
	"github.com/solostack/marketplace-backend/pkg/enums"
	"github.com/solostack/marketplace-backend/pkg/logger"
	"github.com/solostack/marketplace-backend/pkg/metrics"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, tokenID string) error {
	return nil
}

func (stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubStoreService struct{}

func (stubStoreService) Create(ctx context.Context, ownerID uuid.UUID, input stores.CreateStoreInput) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) MyStore(ctx context.Context, ownerID uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) Update(ctx context.Context, ownerID uuid.UUID, input stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) Public(ctx context.Context, slug string) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{}, nil
}

func (stubStoreService) List(ctx context.Context) ([]stores.StoreListItemDTO, error) {
	return []stores.StoreListItemDTO{}, nil
}

func (stubStoreService) DashboardStats(ctx context.Context, ownerID uuid.UUID) (*stores.DashboardStatsDTO, error) {
	return &stores.DashboardStatsDTO{}, nil
}

func (stubStoreService) SalesChart(ctx context.Context, ownerID uuid.UUID) ([]stores.SalesPointDTO, error) {
	return []stores.SalesPointDTO{}, nil
}

type stubProductService struct{}

func (stubProductService) Create(ctx context.Context, ownerID uuid.UUID, input products.CreateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) Update(ctx context.Context, ownerID, productID uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	return nil
}

func (stubProductService) GetPublic(ctx context.Context, slug string) (*products.ProductDTO, error) {
	return &products.ProductDTO{}, nil
}

func (stubProductService) ListPublic(ctx context.Context, limit, offset int) ([]products.PublicProductDTO, error) {
	return []products.PublicProductDTO{}, nil
}

func (stubProductService) ListPromotions(ctx context.Context) ([]products.PublicProductDTO, error) {
	return []products.PublicProductDTO{}, nil
}

func (stubProductService) VendorProducts(ctx context.Context, ownerID uuid.UUID) ([]products.VendorProductDTO, error) {
	return []products.VendorProductDTO{}, nil
}

func (stubProductService) StoreProducts(ctx context.Context, storeID uuid.UUID) ([]products.PublicProductDTO, error) {
	return []products.PublicProductDTO{}, nil
}

func (stubProductService) HomeData(ctx context.Context) (*products.HomeDataDTO, error) {
	return &products.HomeDataDTO{}, nil
}

type stubCategoryService struct{}

func (stubCategoryService) Create(ctx context.Context, input categories.CreateCategoryInput) (*categories.CategoryDTO, error) {
	return &categories.CategoryDTO{}, nil
}

func (stubCategoryService) List(ctx context.Context) ([]categories.CategoryDTO, error) {
	return []categories.CategoryDTO{}, nil
}

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{Total: decimal.Zero}, nil
}

func (stubOrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{}, nil
}

func (stubOrderService) VendorOrders(ctx context.Context, ownerID uuid.UUID) ([]orders.VendorSubOrderDTO, error) {
	return []orders.VendorSubOrderDTO{}, nil
}

func (stubOrderService) UpdateSubOrderStatus(ctx context.Context, ownerID, subOrderID uuid.UUID, input orders.UpdateSubOrderStatusInput) (*orders.SubOrderDTO, error) {
	return &orders.SubOrderDTO{}, nil
}

type stubReviewService struct{}

func (stubReviewService) AddProductReview(ctx context.Context, userID, productID uuid.UUID, input reviews.CreateReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{}, nil
}

func (stubReviewService) AddStoreReview(ctx context.Context, userID, storeID uuid.UUID, input reviews.CreateReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{}, nil
}

func (stubReviewService) ListProductReviews(ctx context.Context, productID uuid.UUID) ([]reviews.ReviewDTO, error) {
	return []reviews.ReviewDTO{}, nil
}

func (stubReviewService) ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]reviews.ReviewDTO, error) {
	return []reviews.ReviewDTO{}, nil
}

type stubStatsService struct{}

func (stubStatsService) Platform(ctx context.Context) (*stats.PlatformStatsDTO, error) {
	return &stats.PlatformStatsDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	registry := prometheus.NewRegistry()
	return NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logg,
		Redis:           nil,
		Sessions:        stubSessionChecker{},
		HTTPMetrics:     metrics.NewHTTPMetrics(registry),
		Gatherer:        registry,
		AuthService:     stubAuthService{},
		StoreService:    stubStoreService{},
		ProductService:  stubProductService{},
		CategoryService: stubCategoryService{},
		OrderService:    stubOrderService{},
		ReviewService:   stubReviewService{},
		StatsService:    stubStatsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicRoutesServeWithoutToken(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{
		"/health/live",
		"/health/ready",
		"/api/v1/home",
		"/api/v1/stats",
		"/api/v1/categories",
		"/api/v1/products",
		"/api/v1/products/promotions",
		"/api/v1/stores",
		"/metrics",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestOrdersRequireToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrdersSucceedWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestVendorGroupRequiresVendorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/store", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	vendor := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/store", nil)
	vendor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, vendor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vendor got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	vendor := httptest.NewRequest(http.MethodPost, "/api/v1/admin/categories", nil)
	vendor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, vendor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for vendor got %d", resp.Code)
	}
}

func TestStorePublicPageComposesCatalog(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores/some-shop", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public store page got %d", resp.Code)
	}
}
