package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/edu-leads/internal/config"
	"github.com/iliyamo/edu-leads/internal/database"
	"github.com/iliyamo/edu-leads/internal/handler"
	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/middleware"
	"github.com/iliyamo/edu-leads/internal/repository"
	"github.com/iliyamo/edu-leads/internal/router"
	"github.com/iliyamo/edu-leads/internal/service"
)

func main() {
	logger.Init("edu-leads")
	log := logger.Log
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	var revocations service.RevocationStore
	if rdb != nil {
		defer rdb.Close()
		revocations = repository.NewRevocationRepo(rdb, "revoked")
	}

	var events service.EventPublisher
	if cfg.LeadEventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitURL)
	}

	auth, err := service.NewAuthService(service.AuthConfig{
		SigningSecret: cfg.JWTSecret,
		TokenTTL:      cfg.SessionTTL,
		BcryptCost:    cfg.BcryptCost,
		StoreTimeout:  cfg.StoreTimeout,
	}, repository.NewAdminRepo(db), revocations)
	if err != nil {
		log.WithError(err).Fatal("auth service init failed")
	}
	leads := service.NewLeadService(repository.NewLeadRepo(db), events, cfg.Location, cfg.StoreTimeout)

	if cfg.DefaultAdmin.Enabled() {
		err := auth.EnsureAdmin(context.Background(), service.ProvisionInput{
			Username: cfg.DefaultAdmin.Username,
			Email:    cfg.DefaultAdmin.Email,
			Password: cfg.DefaultAdmin.Password,
		})
		if err != nil {
			log.WithError(err).Fatal("default admin provisioning failed")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
				"ip":      v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Deps{
		Leads:        handler.NewLeadHandler(leads),
		Auth:         handler.NewAuthHandler(auth, cfg.CookieSecure),
		Session:      auth,
		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Health:       handler.Health(db),
		Provisioning: cfg.AdminProvisioning,
	})
	if cfg.AdminProvisioning {
		log.Warn("admin provisioning endpoint is enabled")
	}

	if len(cfg.CORSOrigins) == 0 {
		logger.Log.Info("CORS_ALLOWED_ORIGINS not set; cross-origin requests are not allowed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.WithCORS(e, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("env", cfg.Env).Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
