package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "patitas-a-casa/internal/adapters/storage/postgres"
	"patitas-a-casa/internal/config"
	"patitas-a-casa/internal/platform/logger"
	"patitas-a-casa/internal/platform/media"
	"patitas-a-casa/internal/router"

	"github.com/joho/godotenv"
)

// @title Patitas a Casa API
// @version 1.0
// @description Avistamientos de perros, registros de perros perdidos y albergues.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env es opcional (dev); en producción las variables vienen del entorno.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"error": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	store, err := media.NewDiskStorage(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		log.Error("media storage error", map[string]any{"error": err})
		os.Exit(1)
	}

	opts := router.Options{Config: cfg, Logger: log, Media: store}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres open error", map[string]any{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = pg.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Error("postgres migrate error", map[string]any{"error": err})
			os.Exit(1)
		}
		opts.DB = db
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DB_DSN empty, using in-memory storage", nil)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server error", map[string]any{"error": err})
		os.Exit(1)
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err})
	}
}
