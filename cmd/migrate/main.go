// Command migrate creates or updates the database schema and exits.
// The server only migrates on startup when RUN_MIGRATIONS=true; this command
// is for running the same step as a one-off job before a deploy.
package main

import (
	"user_backend/internal/feature/user/adapters"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/db"
	"user_backend/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppName+"-migrate", cfg.Env)

	dbCfg := cfg.DB
	dbCfg.RunMigrations = true

	gdb, err := db.OpenDB(dbCfg, log, adapters.Models()...)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Error("failed to close database")
	}
	log.WithField("driver", dbCfg.Driver).Info("migration completed")
}
