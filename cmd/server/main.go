// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kanistore/storefront/internal/cache"
	"github.com/kanistore/storefront/internal/config"
	"github.com/kanistore/storefront/internal/database"
	"github.com/kanistore/storefront/internal/i18n"
	"github.com/kanistore/storefront/internal/repository"
	"github.com/kanistore/storefront/internal/router"
	"github.com/kanistore/storefront/internal/services"
)

var (
	seed        bool
	migrateOnly bool
)

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Kani Store catalog API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&seed, "seed", false, "insert the demo catalog before serving")
	rootCmd.Flags().BoolVar(&migrateOnly, "migrate-only", false, "run migrations (and --seed) then exit")
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("Server exited with error")
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Environment != "production" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if seed {
		if err := database.SeedInitialData(db); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	if migrateOnly {
		return nil
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return fmt.Errorf("failed to initialize i18n: %w", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var catalogStore services.CatalogStore = repository.NewCatalogRepository(db, cfg.Database.Timeout())

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		// Test connection
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logrus.WithField("addr", cfg.Redis.Addr()).Info("Catalog cache enabled")

		catalogStore = cache.NewCatalogCache(
			catalogStore,
			cache.NewRedisCache(rdb),
			time.Duration(cfg.Cache.TTL)*time.Second,
			cfg.Cache.Prefix,
		)
	}

	images, err := services.NewImageService(cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to initialize image service: %w", err)
	}

	users := repository.NewUserRepository(db, cfg.Database.Timeout())

	// Initialize router
	r := router.Initialize(cfg, router.Services{
		Catalog: services.NewCatalogService(catalogStore, images, cfg.Catalog),
		Auth:    services.NewAuthService(users, cfg),
		Users:   services.NewUserService(users, images),
	})
	defer r.Close()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server...")

		// Create a deadline for shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logrus.Info("Server exited")
	return nil
}
