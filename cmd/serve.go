package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"recycle-backend/internal/classifier"
	"recycle-backend/internal/config"
	"recycle-backend/internal/handlers"
	"recycle-backend/internal/mail"
	"recycle-backend/internal/metrics"
	"recycle-backend/internal/middleware"
	"recycle-backend/internal/push"
	"recycle-backend/internal/repository"
	"recycle-backend/internal/services"
	"recycle-backend/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

// connectDB opens the pgx pool and checks the connection
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// imageStore returns the S3 store, or nil when no bucket is configured
func imageStore(ctx context.Context, cfg config.AWSConfig) (services.ImageStore, error) {
	if cfg.S3Bucket == "" {
		log.Warn().Msg("No S3 bucket configured, image uploads are disabled")
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}
	return store, nil
}

// pusher returns the APNs pusher, or a no-op when APNs is not configured
func pusher(cfg config.APNSConfig) (push.Pusher, error) {
	if cfg.KeyFile == "" {
		log.Warn().Msg("No APNs key configured, push notifications are disabled")
		return push.Noop{}, nil
	}
	p, err := push.NewAPNSPusher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create APNs pusher: %w", err)
	}
	return p, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := connectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	images, err := imageStore(ctx, cfg.AWS)
	if err != nil {
		return err
	}
	pushClient, err := pusher(cfg.APNS)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	reportRepo := repository.NewReportRepository(db)
	postRepo := repository.NewPostRepository(db)
	productRepo := repository.NewProductRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	wasteRepo := repository.NewWasteRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	// Services
	m := metrics.New()
	wsHub := services.NewWSHub()
	notifier := services.MultiNotifier{wsHub, services.NewPushNotifier(userRepo, pushClient)}

	authService := services.NewAuthService(userRepo, mail.NewSMTPMailer(cfg.SMTP), services.AuthSettings{
		Secret:       cfg.JWT.Secret,
		AccessTTL:    cfg.JWT.AccessTTL,
		ResetTTL:     cfg.JWT.ResetTTL,
		ResetURLBase: cfg.SMTP.ResetURLBase,
	})
	userService := services.NewUserService(userRepo, images)
	ledgerService := services.NewLedgerService(ledgerRepo, notifier, m)
	reportService := services.NewReportService(reportRepo, ledgerRepo)
	feedService := services.NewFeedService(postRepo, images)
	productService := services.NewProductService(productRepo)
	calendarService := services.NewCalendarService(calendarRepo)
	wasteService := services.NewWasteService(wasteRepo, classifier.NewHTTPClassifier(cfg.Classifier), cfg.Geo.RadiusKM)
	searchService := services.NewSearchService(searchRepo)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		User:      handlers.NewUserHandler(userService),
		Ledger:    handlers.NewLedgerHandler(ledgerService, reportService),
		Feed:      handlers.NewFeedHandler(feedService),
		Product:   handlers.NewProductHandler(productService),
		Calendar:  handlers.NewCalendarHandler(calendarService),
		Search:    handlers.NewSearchHandler(searchService),
		Waste:     handlers.NewWasteHandler(wasteService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, authService),
		Health:    handlers.NewHealthHandler(db),
	}, handlers.RouterOptions{
		Validator:   authService,
		AuthLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Metrics:     m,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	wsHub.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}
