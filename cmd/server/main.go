package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"purchase-desk/internal/config"
	"purchase-desk/internal/database"
	"purchase-desk/internal/handler"
	"purchase-desk/internal/queue"
	"purchase-desk/internal/repository"
	"purchase-desk/internal/router"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connect failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable; cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	apps := repository.NewApplicationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	appHandler := handler.NewApplicationHandler(cfg, apps)
	adminHandler := handler.NewAdminHandler(cfg, apps, users)

	// Audit trail consumer; reconnects on its own.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			logrus.WithError(err).Error("status consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, authHandler, appHandler, adminHandler)

	addr := ":" + cfg.Port
	logrus.Infof("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
