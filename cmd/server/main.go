package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intervals/backend/internal/config"
	"intervals/backend/internal/db"
	"intervals/backend/internal/handler"
	"intervals/backend/internal/logger"
	"intervals/backend/internal/repository"
	"intervals/backend/internal/router"
	"intervals/backend/internal/service"
	"intervals/backend/internal/validation"
	"intervals/backend/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(logger.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kv service.KeyValueStore
	switch cfg.Storage {
	case config.StorageMemory:
		kv = repository.NewMemoryKV()
	default:
		database, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer database.Close()

		applied, err := db.RunMigrations(ctx, database, migrations.Source(cfg.MigrationsDir))
		if err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		if len(applied) > 0 {
			logg.Info("migrations applied", "names", applied)
		}
		kv = repository.NewKVRepository(database)
	}

	persister := service.NewPersister(kv, cfg.SaveTimeout, logg)
	defer persister.Close()

	engine := service.NewTimerEngine()
	defer engine.Close()
	themes := service.NewThemeCatalog(kv, persister)
	presets := service.NewPresetStore(kv, persister, engine, themes)

	if err := themes.Load(ctx); err != nil {
		log.Fatalf("load theme: %v", err)
	}
	if err := presets.Load(ctx); err != nil {
		log.Fatalf("load presets: %v", err)
	}
	logg.Info("state restored", "presets", len(presets.List()), "theme", themes.Current().ID)

	authService := service.NewAuthService(cfg.APISecret, cfg.TokenTTL)
	if !authService.Enabled() {
		logg.Warn("API_SECRET not set; API is open to local clients")
	}
	validator := validation.New()

	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Preset: handler.NewPresetHandler(presets, engine, themes, validator),
		Timer:  handler.NewTimerHandler(engine, presets),
		Theme:  handler.NewThemeHandler(themes, validator),
	}

	clock := service.NewClock(engine, cfg.TickInterval, logg)
	clockDone := make(chan struct{})
	go func() {
		defer close(clockDone)
		clock.Run(ctx)
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(authService, handlers, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		engine.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error("shutdown server", "error", err)
		}
	}()

	logg.Info("backend listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("run server: %v", err)
	}
	<-clockDone
}
