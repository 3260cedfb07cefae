package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"tillpoint/internal/cart"
	"tillpoint/internal/config"
	custommiddleware "tillpoint/internal/middleware"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
	"tillpoint/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Redis backs the checkout rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	configRepo := repository.NewConfigRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, db)
	customerService := service.NewCustomerService(customerRepo)
	checkoutService := service.NewCheckoutService(db, productRepo, customerRepo, orderRepo, logger)

	// Session carts live in memory for the lifetime of the process
	cartManager := cart.NewManager()

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, configRepo, logger)
	customerHandler := transport.NewCustomerHandler(customerService, logger)
	cartHandler := transport.NewCartHandler(cartManager, catalogService, configRepo, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, cartManager, configRepo, logger)
	orderHandler := transport.NewOrderHandler(orderRepo, productRepo, customerRepo, configRepo, logger)
	configHandler := transport.NewConfigHandler(configRepo, logger)

	// The checkout commit path is the only rate-limited surface
	checkoutLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Checkout.RateLimitPerMinute,
		Window:            time.Minute,
		KeyPrefix:         "checkout_rate_limit",
	}, logger)

	// Register routes
	productHandler.RegisterRoutes(router)
	customerHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)
	checkoutHandler.RegisterRoutes(router, checkoutLimiter)
	orderHandler.RegisterRoutes(router)
	configHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
