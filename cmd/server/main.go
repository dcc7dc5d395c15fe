package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user_backend/internal/app/di"
	"user_backend/internal/app/router"
	"user_backend/internal/feature/user/adapters"
	"user_backend/internal/platform/config"
	"user_backend/internal/platform/db"
	"user_backend/internal/platform/http/handler"
	"user_backend/internal/platform/logger"
	"user_backend/internal/platform/validation"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	// db
	gdb, err := db.OpenDB(cfg.DB, log, adapters.Models()...)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get sql.DB")
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	// Handler
	usersH := di.NewUserHandler(gdb, cfg.BcryptCost, log)
	ready := handler.NewReadiness(sqlDB, log)

	// ルータ生成
	r := router.NewRouter(usersH, ready, log, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "driver": cfg.DB.Driver}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	// SIGINT / SIGTERM でグレースフルシャットダウン
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
