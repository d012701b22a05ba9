package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fruitstand-backend/api/controllers"
	"github.com/angelmondragon/fruitstand-backend/api/middleware"
	"github.com/angelmondragon/fruitstand-backend/internal/auth"
	"github.com/angelmondragon/fruitstand-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/fruitstand-backend/internal/checkout"
	"github.com/angelmondragon/fruitstand-backend/internal/orders"
	"github.com/angelmondragon/fruitstand-backend/internal/payments"
	"github.com/angelmondragon/fruitstand-backend/internal/products"
	"github.com/angelmondragon/fruitstand-backend/internal/users"
	"github.com/angelmondragon/fruitstand-backend/pkg/config"
	"github.com/angelmondragon/fruitstand-backend/pkg/db"
	"github.com/angelmondragon/fruitstand-backend/pkg/logger"
	"github.com/angelmondragon/fruitstand-backend/pkg/metrics"
	"github.com/angelmondragon/fruitstand-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisClient *redis.Client
	HTTPMetrics *metrics.HTTPMetrics

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersRepo       *users.Repository
	ProductService  products.Service
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
	PaymentsService payments.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	// avoid handing the middlewares a typed-nil interface when redis is absent
	var rateLimitStore middleware.RateLimiterStore
	var idempotencyStore redis.IdempotencyStore
	var redisPinger db.Pinger
	if p.RedisClient != nil {
		rateLimitStore = p.RedisClient
		idempotencyStore = p.RedisClient
		redisPinger = p.RedisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DBPinger, redisPinger, logg))
	})

	if p.HTTPMetrics != nil {
		r.Method(http.MethodGet, "/metrics", p.HTTPMetrics.Handler())
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(p.ProductService, logg))
		r.Get("/{productId}", controllers.GetProduct(p.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/", controllers.CreateProduct(p.ProductService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(p.ProductService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(p.ProductService, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, rateLimitStore, logg),
			middleware.Idempotency(idempotencyStore, logg),
		).Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore, logg)).Post("/login", controllers.AuthLogin(p.AuthService, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(cfg.JWT))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.AuthMe(p.AuthService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(p.CartService, logg))
			r.Post("/add", controllers.AddToCart(p.CartService, logg))
			r.Delete("/remove/{productId}", controllers.RemoveFromCart(p.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/create", controllers.CreateOrder(p.CheckoutService, logg))
			r.Get("/history", controllers.OrderHistory(p.OrdersService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/intent", controllers.CreatePaymentIntent(p.PaymentsService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminListUsers(p.UsersRepo, logg))
				r.Get("/{userId}", controllers.AdminGetUser(p.UsersRepo, logg))
				r.Delete("/{userId}", controllers.AdminDeleteUser(p.UsersRepo, logg))
			})
			r.Get("/orders", controllers.AdminListOrders(p.OrdersService, logg))
		})
	})

	return r
}
