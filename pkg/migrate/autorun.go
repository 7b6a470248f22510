package migrate

import (
	"context"
	"fmt"

	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/db"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode and the feature flag is enabled. Postgres goes through goose;
// sqlite dev databases use GORM AutoMigrate since the SQL files are
// Postgres-flavored.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.FeatureFlags.UseSQLite || cfg.DB.Driver == "sqlite" {
		logg.Info(ctx, "running GORM AutoMigrate (sqlite dev)")
		return AutoMigrateModels(client)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateModels creates/updates the schema straight from the GORM models.
func AutoMigrateModels(client *db.Client) error {
	return client.DB().AutoMigrate(
		&models.Party{},
		&models.Order{},
		&models.OrderLine{},
		&models.PriceOverride{},
		&models.Setting{},
	)
}
