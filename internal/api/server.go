package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"boxoffice/internal/cache"
	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/external"
	"boxoffice/internal/handlers"
	"boxoffice/internal/messaging"
	"boxoffice/internal/middleware"
	"boxoffice/internal/repository"
	"boxoffice/internal/search"
	"boxoffice/internal/seating"
	"boxoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthFunc reports the overall status code and per-component details
type HealthFunc func(ctx context.Context) (int, gin.H)

// RouterOptions configures the HTTP surface independently of the backing stores
type RouterOptions struct {
	ClientURL       string
	Limiter         middleware.Limiter
	RateLimit       int
	RateLimitWindow time.Duration
	Health          HealthFunc
}

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	natsClient := messaging.ConnectOptional(cfg.NATS)

	layout, err := seating.LoadLayout(cfg.Checkout.SeatLayoutFile)
	if err != nil {
		db.Close()
		natsClient.Close()
		return nil, fmt.Errorf("load seat layout: %w", err)
	}

	server := &Server{
		config: cfg,
		db:     db,
		nats:   natsClient,
	}

	repos := repository.NewRepositories(db)
	deps := service.Dependencies{
		Gateway:     external.NewPaymentClient(cfg.Payment),
		Publisher:   natsClient,
		Events:      repos.Events,
		Bookings:    repos.Bookings,
		CacheTTL:    cfg.EventsCacheTTL,
		Layout:      layout,
		ClientURL:   cfg.ClientURL,
		CallbackURL: cfg.Payment.CallbackURL,
	}

	// Valkey and Elasticsearch are optional; the API degrades to Postgres without them.
	// An unreachable NATS only stops payment events from being published.
	if cfg.Cache.Enabled {
		valkey, err := cache.NewValkeyClient(cfg.Cache)
		if err != nil {
			slog.Warn("Valkey unavailable, caching and rate limiting disabled", "error", err)
		} else {
			server.valkey = valkey
			deps.Cache = valkey
		}
	}

	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, falling back to database search", "error", err)
		} else {
			server.search = es
			deps.Searcher = es
		}
	}

	server.services = service.NewServices(deps)

	opts := RouterOptions{
		ClientURL:       cfg.ClientURL,
		RateLimit:       cfg.RateLimitRequests,
		RateLimitWindow: cfg.RateLimitWindow,
		Health:          server.health,
	}
	if server.valkey != nil {
		opts.Limiter = server.valkey
	}

	server.router = NewRouter(server.services, opts)

	slog.Info("API server initialized",
		"nats_enabled", natsClient.Enabled(),
		"cache_enabled", server.valkey != nil,
		"search_enabled", server.search != nil,
		"seats", layout.Size(),
	)

	return server, nil
}

// NewRouter builds the gin engine with middleware and all API routes
func NewRouter(services *service.Services, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(opts.ClientURL))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	h := handlers.NewHandlers(services)

	api := router.Group("/api")
	{
		payment := api.Group("/payment")
		payment.Use(middleware.RateLimit(opts.Limiter, opts.RateLimit, opts.RateLimitWindow))
		{
			payment.POST("/initiate", h.InitiatePayment)
			payment.GET("/status/:merchantTransactionId", h.PaymentStatus)
		}

		events := api.Group("/events")
		{
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.GET("/:id/seats", h.GetEventSeats)
		}

		api.GET("/bookings", h.ListBookings)
	}

	health := opts.Health
	if health == nil {
		health = func(context.Context) (int, gin.H) {
			return http.StatusOK, gin.H{"status": "ok"}
		}
	}
	router.GET("/health", func(c *gin.Context) {
		status, body := health(c.Request.Context())
		body["service"] = "boxoffice-api"
		c.JSON(status, body)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// health checks the database and reports optional components
func (s *Server) health(ctx context.Context) (int, gin.H) {
	dbHealth := s.db.HealthCheck(ctx)

	status := http.StatusOK
	overall := "ok"
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	components := gin.H{
		"database": dbHealth,
		"nats":     componentStatus(s.nats.Enabled(), nil),
	}

	if s.valkey != nil {
		components["valkey"] = componentStatus(true, s.valkey.Ping(ctx))
	} else {
		components["valkey"] = componentStatus(false, nil)
	}

	if s.search != nil {
		components["elasticsearch"] = componentStatus(true, s.search.HealthCheck(ctx))
	} else {
		components["elasticsearch"] = componentStatus(false, nil)
	}

	return status, gin.H{
		"status":     overall,
		"components": components,
	}
}

func componentStatus(enabled bool, err error) gin.H {
	switch {
	case !enabled:
		return gin.H{"status": "disabled"}
	case err != nil:
		return gin.H{"status": "unhealthy", "error": err.Error()}
	default:
		return gin.H{"status": "healthy"}
	}
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	return s.router.Run(":" + s.config.Port)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
