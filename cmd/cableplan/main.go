package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/bom"
	catalogplugin "github.com/felixroth/cableplan/internal/catalog"
	"github.com/felixroth/cableplan/internal/config"
	"github.com/felixroth/cableplan/internal/diagram"
	"github.com/felixroth/cableplan/internal/event"
	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/report"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/internal/services"
	"github.com/felixroth/cableplan/internal/store"
	"github.com/felixroth/cableplan/internal/survey"
	"github.com/felixroth/cableplan/internal/version"
	"github.com/felixroth/cableplan/pkg/catalog"
	"github.com/felixroth/cableplan/pkg/models"
)

func main() {
	// Maintenance subcommands run without the server.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("CablePlan server starting", zap.String("version", version.Short()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := store.Open(cfg.GetString("store.path"))
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	bus := event.NewBus(logger.Named("bus"))
	repo := services.NewSQLiteSurveyRepository(db.DB())
	cat := catalog.NewCatalog()

	registry := plugin.NewRegistry(logger)

	// Compile-time plugin composition.
	plugins := []plugin.Plugin{
		survey.New(repo, bus),
		bom.New(repo, cat, bus).WithResolver(func(s *models.Survey, addr models.Address) error {
			_, err := survey.Resolve(s, addr)
			return err
		}),
		catalogplugin.New(cat),
		diagram.New(repo),
		report.New(repo),
	}
	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			logger.Fatal("failed to register plugin", zap.Error(err))
		}
	}

	if err := registry.InitAll(cfg.Viper()); err != nil {
		logger.Fatal("failed to initialize plugins", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.MigrateAll(ctx, db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	srv := server.New(addr, registry, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("CablePlan server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("CablePlan server stopped")
}
