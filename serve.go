package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/mkingstonsqr/tile-notes/middleware"
	"github.com/mkingstonsqr/tile-notes/routes"
	"github.com/mkingstonsqr/tile-notes/services"
	"github.com/mkingstonsqr/tile-notes/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	defer config.Logger.Sync()

	if conf.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	if err := config.InitDB(conf); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := config.MigrateDB(config.DB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.InitRedis(ctx, conf); err != nil {
		return fmt.Errorf("init redis: %w", err)
	}

	fsys, err := config.OpenStorage(conf)
	if err != nil {
		return err
	}

	ai, err := services.NewAIClient(conf)
	if err != nil {
		return err
	}

	var feed services.ChangeFeed
	var redisFeed *services.RedisChangeFeed
	if config.RedisClient != nil {
		redisFeed = services.NewRedisChangeFeed(config.RedisClient)
		feed = redisFeed
	}

	svc := services.New(conf, store.NewGormStore(config.DB), feed, ai, fsys)

	if redisFeed != nil {
		if err := redisFeed.Listen(ctx, services.InvalidateOnChange(svc.Notes, svc.Tasks)); err != nil {
			return err
		}
		config.Logger.Infow("change feed subscribed", "origin", redisFeed.Origin())
	}

	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	middleware.SetupMiddleware(r)
	routes.RegisterRoutes(r, svc)

	srv := &http.Server{
		Addr:              ":" + conf.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		config.Logger.Infow("server listening", "port", conf.ServerPort, "environment", conf.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	config.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorw("server shutdown failed", "error", err)
	}

	config.Logger.Info("waiting for background enrichment")
	svc.Shutdown()
	if redisFeed != nil {
		stop()
		redisFeed.Wait()
		config.RedisClient.Close()
	}

	config.Logger.Info("server stopped")
	return nil
}
