package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"authgate/internal/cache"
	"authgate/internal/config"
	"authgate/internal/db"
	"authgate/internal/handler"
	"authgate/internal/mailer"
	"authgate/internal/model"
	"authgate/internal/repository"
	"authgate/internal/router"
	"authgate/internal/service"
	"authgate/internal/session"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	sessionStore := session.NewRedisStore(cacheClient)
	sessions := session.NewManager(sessionStore)

	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	dispatcher, err := mailer.NewDispatcher(cfg.RedisURI(), sender, logger)
	if err != nil {
		log.Fatalf("mail dispatcher init: %v", err)
	}
	dispatcher.StartWorker()
	defer dispatcher.Shutdown()

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, dispatcher, cfg.BaseURL, cfg.MailFrom, logger)

	homeHandler := handler.NewHomeHandler(sessions)
	authHandler := handler.NewAuthHandler(authService, sessions)

	router.Register(e, sessions, homeHandler, authHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
