package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmkoster/stockroom-backend/api/controllers"
	"github.com/jmkoster/stockroom-backend/api/middleware"
	"github.com/jmkoster/stockroom-backend/internal/auth"
	"github.com/jmkoster/stockroom-backend/internal/catalog"
	order "github.com/jmkoster/stockroom-backend/internal/orders"
	permission "github.com/jmkoster/stockroom-backend/internal/permissions"
	product "github.com/jmkoster/stockroom-backend/internal/products"
	user "github.com/jmkoster/stockroom-backend/internal/users"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/logger"
	"github.com/jmkoster/stockroom-backend/pkg/metrics"
	"github.com/jmkoster/stockroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService auth.Service,
	permService permission.Service,
	userService user.Service,
	catalogService catalog.Service,
	productService product.Service,
	orderService order.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	bootstrapPolicy := middleware.NewAuthRateLimitPolicy(
		"bootstrap",
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.IPLimit,
		cfg.AuthRateLimit.UsernameLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.IPLimit,
		cfg.AuthRateLimit.UsernameLimit,
	)

	requireCap := func(cap permission.Capability) func(http.Handler) http.Handler {
		return middleware.RequireCapability(permService, cap, logg)
	}

	// a typed-nil *redis.Client would defeat the nil guards downstream
	var redisP db.Pinger
	var limiterStore middleware.RateLimiterStore
	if redisClient != nil {
		redisP = redisClient
		limiterStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// bootstrap is the only unauthenticated account surface; it shuts itself
	// off once any user exists
	r.With(middleware.AuthRateLimit(bootstrapPolicy, limiterStore, logg)).
		Post("/api/v1/bootstrap", controllers.Bootstrap(userService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authService, httpMetrics, logg))

		r.With(
			middleware.AuthRateLimit(signupPolicy, limiterStore, logg),
			requireCap(permission.CapAdmin),
		).Post("/signup", controllers.Signup(userService, logg))

		r.Get("/me", controllers.Me(userService, logg))
		r.Get("/me/permissions", controllers.MyPermissions(permService, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(userService, logg))
			r.Route("/{userRef}", func(r chi.Router) {
				r.Get("/", controllers.GetUser(userService, logg))
				r.Put("/", controllers.UpdateUser(userService, logg))
				r.Delete("/", controllers.DeleteUser(userService, logg))
				r.Get("/permissions", controllers.GetUserPermissions(permService, logg))
				r.With(requireCap(permission.CapAdmin)).
					Put("/permissions", controllers.UpdateUserPermissions(permService, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.ListProducts(productService, logg))
			r.With(requireCap(permission.CapViewProducts)).Get("/names", controllers.ProductNames(productService, logg))
			r.With(requireCap(permission.CapEditProducts)).Post("/", controllers.CreateProduct(productService, logg))

			r.Route("/{productID}", func(r chi.Router) {
				r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.GetProduct(productService, logg))
				r.With(requireCap(permission.CapEditProducts)).Put("/", controllers.UpdateProduct(productService, logg))
				r.With(requireCap(permission.CapEditProducts)).Delete("/", controllers.DeleteProduct(productService, logg))

				r.With(requireCap(permission.CapViewProducts)).Get("/brand", controllers.ProductBrand(productService, logg))
				r.With(requireCap(permission.CapViewProducts)).Get("/categories", controllers.ProductCategories(productService, logg))
				r.With(requireCap(permission.CapViewProducts)).Get("/suppliers", controllers.ProductSuppliers(productService, logg))

				r.With(requireCap(permission.CapEditProducts)).
					Put("/brand/{brandID}", controllers.AttachProductOwner(productService, catalog.KindBrand, "brandID", logg))
				r.With(requireCap(permission.CapEditProducts)).
					Delete("/brand/{brandID}", controllers.DetachProductOwner(productService, catalog.KindBrand, "brandID", logg))
				r.With(requireCap(permission.CapEditProducts)).
					Put("/categories/{categoryID}", controllers.AttachProductOwner(productService, catalog.KindCategory, "categoryID", logg))
				r.With(requireCap(permission.CapEditProducts)).
					Delete("/categories/{categoryID}", controllers.DetachProductOwner(productService, catalog.KindCategory, "categoryID", logg))
				r.With(requireCap(permission.CapEditProducts)).
					Put("/suppliers/{supplierID}", controllers.AttachProductOwner(productService, catalog.KindSupplier, "supplierID", logg))
				r.With(requireCap(permission.CapEditProducts)).
					Delete("/suppliers/{supplierID}", controllers.DetachProductOwner(productService, catalog.KindSupplier, "supplierID", logg))
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.ListBrands(catalogService, logg))
			r.With(requireCap(permission.CapViewProducts)).Get("/names", controllers.CatalogNames(catalogService, catalog.KindBrand, logg))
			r.With(requireCap(permission.CapEditProducts)).Post("/", controllers.CreateBrand(catalogService, logg))
			r.Route("/{brandID}", func(r chi.Router) {
				r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.GetBrand(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Put("/", controllers.UpdateBrand(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Delete("/", controllers.DeleteBrand(catalogService, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.ListCategories(catalogService, logg))
			r.With(requireCap(permission.CapViewProducts)).Get("/names", controllers.CatalogNames(catalogService, catalog.KindCategory, logg))
			r.With(requireCap(permission.CapEditProducts)).Post("/", controllers.CreateCategory(catalogService, logg))
			r.Route("/{categoryID}", func(r chi.Router) {
				r.With(requireCap(permission.CapViewProducts)).Get("/", controllers.GetCategory(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Put("/", controllers.UpdateCategory(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Delete("/", controllers.DeleteCategory(catalogService, logg))
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.With(requireCap(permission.CapViewSuppliers)).Get("/", controllers.ListSuppliers(catalogService, logg))
			r.With(requireCap(permission.CapViewSuppliers)).Get("/names", controllers.CatalogNames(catalogService, catalog.KindSupplier, logg))
			r.With(requireCap(permission.CapEditProducts)).Post("/", controllers.CreateSupplier(catalogService, logg))
			r.Route("/{supplierID}", func(r chi.Router) {
				r.With(requireCap(permission.CapViewSuppliers)).Get("/", controllers.GetSupplier(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Put("/", controllers.UpdateSupplier(catalogService, logg))
				r.With(requireCap(permission.CapEditProducts)).Delete("/", controllers.DeleteSupplier(catalogService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Route("/pending", func(r chi.Router) {
				r.With(requireCap(permission.CapViewPending)).Get("/", controllers.ListPendingOrders(orderService, logg))
				r.With(requireCap(permission.CapCreateOrders)).Post("/", controllers.PlaceOrder(orderService, logg))
				r.Route("/{orderID}", func(r chi.Router) {
					r.With(requireCap(permission.CapViewPending)).Get("/", controllers.GetPendingOrder(orderService, logg))
					r.With(requireCap(permission.CapEditPending)).Put("/", controllers.UpdatePendingOrder(orderService, logg))
					r.With(requireCap(permission.CapRemoveOrders)).Delete("/", controllers.DeletePendingOrder(orderService, logg))
					r.With(requireCap(permission.CapEditReceived)).Post("/receive", controllers.ReceiveOrder(orderService, logg))
				})
			})

			r.Route("/received", func(r chi.Router) {
				r.With(requireCap(permission.CapViewReceived)).Get("/", controllers.ListReceivedOrders(orderService, logg))
				r.Route("/{orderID}", func(r chi.Router) {
					r.With(requireCap(permission.CapViewReceived)).Get("/", controllers.GetReceivedOrder(orderService, logg))
					r.With(requireCap(permission.CapEditReceived)).Put("/", controllers.UpdateReceivedOrder(orderService, logg))
					r.With(requireCap(permission.CapRemoveOrders)).Delete("/", controllers.DeleteReceivedOrder(orderService, logg))
					r.With(requireCap(permission.CapEditReceived)).Post("/revert", controllers.RevertOrder(orderService, logg))
				})
			})
		})
	})

	return r
}
