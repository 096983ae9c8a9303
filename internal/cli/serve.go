package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/petmart/internal/config"
	"julianmorley.ca/con-plar/petmart/internal/jobs"
	"julianmorley.ca/con-plar/petmart/internal/router"
	"julianmorley.ca/con-plar/petmart/internal/service"
	"julianmorley.ca/con-plar/petmart/pkg/redis"
)

const (
	shutdownTimeout = 10 * time.Second
	tokenTTL        = 24 * time.Hour
	cookieMaxAge    = 30 * 24 * 60 * 60
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance scheduler",
		Long: `Run the storefront HTTP API.

MongoDB must run as a replica set since checkout and reservation updates use
transactions. Redis holds session carts and the product cache.

Example:
  petmart serve
  petmart serve --config ./petmart.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Security.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := connectMongo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Warn("failed to close MongoDB connection", zap.Error(err))
		}
	}()

	indexCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	err = db.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	redisClient, err := redis.NewClient(ctx, redis.Options{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	logger.Info("connected to Redis", zap.String("address", cfg.Redis.Address))

	shop := service.NewStorefront(service.Stores{
		Products:        db,
		Orders:          db,
		Reservations:    db,
		PersistentCarts: db,
		Tx:              db,
		Sessions:        redis.NewCartStore(redisClient, cfg.Cart.TTL, cfg.Cart.LastOrderTTL),
		Cache:           redis.NewProductCache(redisClient, cfg.Cart.ProductCacheTTL),
	}, logger)

	scheduler, err := jobs.NewScheduler(db, cfg.Cart.PersistentRetention, logger)
	if err != nil {
		return fmt.Errorf("failed to schedule jobs: %w", err)
	}

	engine := router.NewEngine(
		router.EngineConfig{Production: cfg.IsProduction(), CORSOrigins: cfg.CORSOrigins},
		router.NewHandler(shop, db, logger),
		router.NewAuthenticator(cfg.Security.JWTSecret, tokenTTL),
		newCookieStore(cfg),
		logger,
	)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server is running", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
