package main

import (
	"log"

	"github.com/geopulse/geopulse/internal/clock"
	"github.com/geopulse/geopulse/internal/config"
	"github.com/geopulse/geopulse/internal/country"
	"github.com/geopulse/geopulse/internal/metadata"
	"github.com/geopulse/geopulse/internal/migration"
	"github.com/geopulse/geopulse/internal/observability"
	"github.com/geopulse/geopulse/internal/refresh"
	"github.com/geopulse/geopulse/internal/server"
	"github.com/geopulse/geopulse/internal/source"
	"github.com/geopulse/geopulse/internal/summary"
	"github.com/geopulse/geopulse/pkg/db"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	app := fx.New(
		config.Module,
		clock.Module,
		observability.Module,
		db.Module,
		source.Module,
		metadata.Module,
		country.Module,
		summary.Module,
		refresh.Module,
		server.Module,
		fx.Invoke(runMigrations),
	)
	app.Run()
}

func runMigrations(conn *gorm.DB, logger *zap.Logger, shutdowner fx.Shutdowner) {
	sqlDB, err := conn.DB()
	if err == nil {
		err = migration.RunMigrations(sqlDB)
	}
	if err != nil {
		logger.Error("migrations failed", zap.Error(err))
		_ = shutdowner.Shutdown(fx.ExitCode(1))
		return
	}
	logger.Info("migrations applied")
}
