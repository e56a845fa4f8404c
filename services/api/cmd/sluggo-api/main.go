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

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sluggo/pkg/bus"
	"sluggo/pkg/db"
	gos3 "sluggo/pkg/s3"
	"sluggo/pkg/telemetry"
	"sluggo/services/api"
	"sluggo/services/api/internal/config"
)

const serviceName = "sluggo-api"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sluggo-api",
		Short:         "Team issue tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := db.Open(ctx, cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			return db.Migrate(ctx, pool)
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTelemetry, middleware, logger, err := telemetry.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownTelemetry != nil {
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "%s: telemetry shutdown error: %v\n", serviceName, err)
			}
		}
	}()

	pool, err := db.Open(ctx, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	orm, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open orm: %w", err)
	}

	store := &api.Store{DB: pool, ORM: orm}

	if cfg.Bus.URL != "" {
		b, err := bus.New(cfg.Bus.URL)
		if err != nil {
			return fmt.Errorf("connect bus: %w", err)
		}
		defer b.Close()
		store.Bus = b
	} else {
		logger.Printf("INFO bus disabled, activity stays in the events table")
	}

	if os.Getenv("S3_ENDPOINT") != "" {
		s3Client, err := gos3.NewClientFromEnv()
		if err != nil {
			return fmt.Errorf("init s3 client: %w", err)
		}
		store.S3 = s3Client
	} else {
		logger.Printf("INFO object storage disabled, attachments unavailable")
	}

	app, err := api.New(store, api.Config{
		TokenTTL:         cfg.Auth.TokenTTL,
		PageSize:         cfg.Paging.PageSize,
		MaxPageSize:      cfg.Paging.MaxPageSize,
		AttachmentBucket: cfg.Storage.AttachmentBucket,
	})
	if err != nil {
		return fmt.Errorf("init api: %w", err)
	}

	routes, err := app.Routes()
	if err != nil {
		return fmt.Errorf("build routes: %w", err)
	}

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: middleware(routes),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "%s: server shutdown error: %v\n", serviceName, err)
		}
	}()

	logger.Printf("INFO listening on %s", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("ERROR server failed: %v", err)
		return err
	}

	return nil
}
