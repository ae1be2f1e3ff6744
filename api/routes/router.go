package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solostack/marketplace-backend/api/controllers"
	"github.com/solostack/marketplace-backend/api/middleware"
	"github.com/solostack/marketplace-backend/internal/auth"
	"github.com/solostack/marketplace-backend/internal/categories"
	"github.com/solostack/marketplace-backend/internal/orders"
	"github.com/solostack/marketplace-backend/internal/products"
	"github.com/solostack/marketplace-backend/internal/reviews"
	"github.com/solostack/marketplace-backend/internal/stats"
	"github.com/solostack/marketplace-backend/internal/stores"
	"github.com/solostack/marketplace-backend/pkg/auth/session"
	"github.com/solostack/marketplace-backend/pkg/config"
	"github.com/solostack/marketplace-backend/pkg/enums"
	"github.com/solostack/marketplace-backend/pkg/logger"
	"github.com/solostack/marketplace-backend/pkg/metrics"
	"github.com/solostack/marketplace-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService     auth.Service
	StoreService    stores.Service
	ProductService  products.Service
	CategoryService categories.Service
	OrderService    orders.Service
	ReviewService   reviews.Service
	StatsService    stats.Service
}

// NewRouter assembles the full route tree.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
		middleware.Metrics(p.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		p.Config.AuthRateLimit.LoginWindow,
		p.Config.AuthRateLimit.LoginIPLimit,
		p.Config.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		p.Config.AuthRateLimit.RegisterWindow,
		p.Config.AuthRateLimit.RegisterIPLimit,
		p.Config.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(p.Config.JWT, p.Sessions, p.Logger)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, p.Logger)).
				Post("/register", controllers.AuthRegister(p.AuthService, p.Logger))
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, p.Logger)).
				Post("/login", controllers.AuthLogin(p.AuthService, p.Logger))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(p.AuthService, p.Logger))
			r.With(requireAuth).Get("/me", controllers.AuthMe(p.AuthService, p.Logger))
		})

		// Public catalog.
		r.Get("/home", controllers.Home(p.ProductService, p.Logger))
		r.Get("/stats", controllers.PlatformStats(p.StatsService, p.Logger))
		r.Get("/categories", controllers.CategoryList(p.CategoryService, p.Logger))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.ProductService, p.Logger))
			r.Get("/promotions", controllers.ProductPromotions(p.ProductService, p.Logger))
			r.Get("/{slug}", controllers.ProductBySlug(p.ProductService, p.Logger))
		})
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(p.StoreService, p.Logger))
			r.Get("/{slug}", controllers.StorePublic(p.StoreService, p.ProductService, p.Logger))
			r.With(requireAuth).Post("/", controllers.StoreCreate(p.StoreService, p.Logger))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/products/{id}", controllers.ProductReviewList(p.ReviewService, p.Logger))
			r.Get("/stores/{id}", controllers.StoreReviewList(p.ReviewService, p.Logger))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/products/{id}", controllers.ProductReviewCreate(p.ReviewService, p.Logger))
				r.Post("/stores/{id}", controllers.StoreReviewCreate(p.ReviewService, p.Logger))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.OrderPlace(p.OrderService, p.Logger))
			r.Get("/", controllers.OrdersMine(p.OrderService, p.Logger))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(enums.UserRoleVendor.String(), p.Logger))

			r.Route("/store", func(r chi.Router) {
				r.Get("/", controllers.StoreMine(p.StoreService, p.Logger))
				r.Patch("/", controllers.StoreUpdate(p.StoreService, p.Logger))
				r.Get("/dashboard", controllers.StoreDashboard(p.StoreService, p.Logger))
				r.Get("/sales-chart", controllers.StoreSalesChart(p.StoreService, p.Logger))
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.VendorProducts(p.ProductService, p.Logger))
				r.Post("/", controllers.ProductCreate(p.ProductService, p.Logger))
				r.Patch("/{id}", controllers.ProductUpdate(p.ProductService, p.Logger))
				r.Delete("/{id}", controllers.ProductDelete(p.ProductService, p.Logger))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.VendorOrders(p.OrderService, p.Logger))
				r.Patch("/{id}/status", controllers.SubOrderStatusUpdate(p.OrderService, p.Logger))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), p.Logger))
			r.Post("/categories", controllers.CategoryCreate(p.CategoryService, p.Logger))
		})
	})

	return r
}
