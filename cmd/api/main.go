package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/srgjo27/ticketflow/internal/adapter/auth"
	rediscache "github.com/srgjo27/ticketflow/internal/adapter/cache/redis"
	"github.com/srgjo27/ticketflow/internal/adapter/eventbus"
	"github.com/srgjo27/ticketflow/internal/adapter/handler"
	"github.com/srgjo27/ticketflow/internal/adapter/payment/stripe"
	"github.com/srgjo27/ticketflow/internal/adapter/repository/memory"
	"github.com/srgjo27/ticketflow/internal/adapter/repository/postgres"
	"github.com/srgjo27/ticketflow/internal/config"
	"github.com/srgjo27/ticketflow/internal/core/domain"
	"github.com/srgjo27/ticketflow/internal/core/ports"
	"github.com/srgjo27/ticketflow/internal/core/services"
	"github.com/srgjo27/ticketflow/internal/platform/database"
	"github.com/srgjo27/ticketflow/internal/platform/logger"
)

type store interface {
	ports.Store
	ports.UserRepository
	ports.ScanLogRepository
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	var cache ports.EventCache
	if cfg.RedisAddr != "" {
		log.Info().Str("addr", cfg.RedisAddr).Msg("Connecting to Redis")
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, event cache disabled")
		} else {
			cache = rediscache.NewEventCache(redisClient, cfg.EventCacheTTL)
			log.Info().Msg("Redis connected successfully")
		}
	}

	var publisher ports.EventPublisher = eventbus.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
		defer rmq.Close()
		publisher = rmq
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.DefaultTimezone).Msg("Invalid DEFAULT_TIMEZONE")
	}

	processor := stripe.NewProcessor(cfg.StripeSecretKey)
	resolver := auth.NewResolver(cfg.JWTSecret, cfg.JWTIssuer, st)
	signer := services.NewTicketSigner(cfg.TicketHashSecret)
	validator := services.NewInventoryValidator(st, cache)

	router := handler.NewRouter(handler.Services{
		Intents:   services.NewPaymentIntentService(st, st, processor, validator, cfg.Currency),
		Purchases: services.NewPurchaseService(st, processor, validator, services.NewTicketIssuer(signer), cache, publisher),
		Scans:     services.NewScanService(st, st, resolver, signer, publisher, loc),
		Tickets:   services.NewTicketService(st),
	}, handler.RouterConfig{
		Identity:          resolver,
		ScanRatePerSecond: cfg.ScanRatePerSecond,
		ScanBurst:         cfg.ScanBurst,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openStore(ctx context.Context, cfg config.Config) (store, func()) {
	if cfg.StoreDriver == "memory" {
		st := memory.NewStore(memory.WithMaxAttempts(cfg.TxMaxAttempt))
		seedDemo(st, cfg.DefaultTimezone)
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return st, func() {}
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: cfg.DBMaxOpen,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to db after retries")
	}

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return postgres.NewStore(db, cfg.TxMaxAttempt), func() { db.Close() }
}

// seedDemo gives the in-memory store one event happening today and a
// scanner bound to its venue.
func seedDemo(st *memory.Store, timezone string) {
	st.SeedEvent(domain.Event{
		ID:         "demo-event",
		Name:       "Demo Night",
		Venue:      "Demo Hall",
		VenueID:    "demo-venue",
		Price:      decimal.RequireFromString("25.00"),
		MaxTickets: 100,
		StartTime:  time.Now(),
		Timezone:   timezone,
	})
	st.SeedUser(domain.UserProfile{
		UID:     "demo-scanner",
		Email:   "scanner@demo.local",
		Role:    domain.RoleScanner,
		VenueID: "demo-venue",
		Active:  true,
	})

	if os.Getenv("DEMO_SITE_ADMIN") != "" {
		st.SeedUser(domain.UserProfile{UID: os.Getenv("DEMO_SITE_ADMIN"), Role: domain.RoleSiteAdmin, Active: true})
	}
}
