package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sportshoplabs/sportshop-backend/api/controllers"
	"github.com/sportshoplabs/sportshop-backend/api/middleware"
	cartsvc "github.com/sportshoplabs/sportshop-backend/internal/cart"
	catalogsvc "github.com/sportshoplabs/sportshop-backend/internal/catalog"
	discountsvc "github.com/sportshoplabs/sportshop-backend/internal/discounts"
	invoicesvc "github.com/sportshoplabs/sportshop-backend/internal/invoices"
	ordersvc "github.com/sportshoplabs/sportshop-backend/internal/orders"
	paymentsvc "github.com/sportshoplabs/sportshop-backend/internal/payments"
	reviewsvc "github.com/sportshoplabs/sportshop-backend/internal/reviews"
	userssvc "github.com/sportshoplabs/sportshop-backend/internal/users"
	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
	"github.com/sportshoplabs/sportshop-backend/pkg/metrics"
	"github.com/sportshoplabs/sportshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	catalogService catalogsvc.Service,
	discountService discountsvc.Service,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
	paymentService paymentsvc.Service,
	reviewService reviewsvc.Service,
	userService userssvc.Service,
	invoiceRenderer *invoicesvc.Renderer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(userService, logg))
		r.Post("/login", controllers.Login(userService, logg))
	})

	// Public storefront reads.
	r.Route("/api/v1/shop", func(r chi.Router) {
		r.Get("/", controllers.Storefront(catalogService, logg))
		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{productID}", controllers.ProductGet(catalogService, logg))
		r.Get("/products/{productID}/reviews", controllers.ReviewsByProduct(reviewService, logg))
		r.Get("/categories", controllers.CategoryList(catalogService, logg))
		r.Get("/brands", controllers.BrandList(catalogService, logg))
		r.Get("/tags", controllers.TagList(catalogService, logg))
		r.Get("/discounts", controllers.DiscountList(discountService, logg))
		r.Get("/discounts/{discountID}", controllers.DiscountGet(discountService, logg))
	})

	// Authenticated surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.Profile(userService, logg))

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(userService, logg))
			r.Post("/{productID}", controllers.FavoriteAdd(userService, logg))
			r.Delete("/{productID}", controllers.FavoriteRemove(userService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartSummary(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartService, logg))
			r.Post("/items/{itemID}/quantity", controllers.CartUpdateQuantity(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderFinalize(orderService, logg))
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Get("/{orderID}", controllers.OrderGet(orderService, logg))
			r.Post("/{orderID}/payments", controllers.PaymentCreate(paymentService, orderService, logg))
			r.Get("/{orderID}/payments", controllers.PaymentList(paymentService, orderService, logg))
		})

		r.Post("/products/{productID}/reviews", controllers.ReviewCreate(reviewService, logg))
		r.Route("/reviews", func(r chi.Router) {
			r.Put("/{reviewID}", controllers.ReviewUpdate(reviewService, logg))
			r.Delete("/{reviewID}", controllers.ReviewDelete(reviewService, logg))
		})

		// Staff-only back office.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Post("/products", controllers.ProductCreate(catalogService, logg))
			r.Put("/products/{productID}", controllers.ProductUpdate(catalogService, logg))
			r.Delete("/products/{productID}", controllers.ProductDelete(catalogService, logg))
			r.Post("/orders/{orderID}/status", controllers.OrderUpdateStatus(orderService, logg))
			r.Post("/orders/{orderID}/recompute", controllers.OrderRecompute(orderService, logg))
			r.Post("/payments/{paymentID}/status", controllers.PaymentUpdateStatus(paymentService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireStaff(logg))

		r.Get("/catalog/aggregates", controllers.CatalogAggregates(catalogService, logg))
		r.Post("/orders/export", controllers.OrdersExport(orderService, invoiceRenderer, logg))
	})

	return r
}
