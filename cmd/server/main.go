package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eskro/backend/internal/config"
	"github.com/eskro/backend/internal/es"
	"github.com/eskro/backend/internal/handlers"
	"github.com/eskro/backend/internal/logging"
	"github.com/eskro/backend/internal/mail"
	mwauth "github.com/eskro/backend/internal/middleware/auth"
	"github.com/eskro/backend/internal/mykafka"
	"github.com/eskro/backend/internal/reaper"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/service"
	"github.com/eskro/backend/internal/token"
	apphttp "github.com/eskro/backend/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	db, err := cfg.OpenDB()
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	privPEM, err := os.ReadFile(cfg.Auth.PrivateKeyPath)
	if err != nil {
		log.Error("read private key failed", "error", err)
		os.Exit(1)
	}
	pubPEM, err := os.ReadFile(cfg.Auth.PublicKeyPath)
	if err != nil {
		log.Error("read public key failed", "error", err)
		os.Exit(1)
	}
	codec, err := token.NewCodec(cfg.Auth.Algorithm, privPEM, pubPEM)
	if err != nil {
		log.Error("token codec init failed", "error", err)
		os.Exit(1)
	}
	issuer := token.NewIssuer(codec, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	mailer := mail.NewMailer(cfg)

	var producer *mykafka.Producer
	if cfg.KafkaAddress != "" {
		producer = mykafka.NewProducer([]string{cfg.KafkaAddress})
		defer producer.Close()
	} else {
		log.Warn("KAFKA_ADDRESS not set, domain events disabled")
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("ES_URL not set, search disabled")
	}

	r := repo.NewGormRepo(db)
	authService := &service.AuthService{
		Repo:              r,
		Codec:             codec,
		Issuer:            issuer,
		Mailer:            mailer,
		Producer:          producer,
		RegistrationTTL:   cfg.Auth.RegistrationTTL,
		PasswordChangeTTL: cfg.Auth.PasswordChangeTTL,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
		if created {
			log.Info("admin user created", "email", cfg.AdminEmail)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLog := log.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), reqLog)))
			return next(c)
		}
	})

	apphttp.Register(e, apphttp.Deps{
		Guard: &mwauth.Guard{Codec: codec, Repo: r},
		Auth: &handlers.AuthHandler{
			Service:       authService,
			RefreshHeader: cfg.Auth.RefreshTokenHeader,
			PublicKeyPEM:  pubPEM,
		},
		Users:       &handlers.UserHandler{Repo: r, Service: authService},
		News:        &handlers.NewsHandler{DB: db, ES: esClient, Index: cfg.NewsIndex, Producer: producer},
		Events:      &handlers.EventHandler{DB: db},
		Projects:    &handlers.ProjectHandler{DB: db},
		Polls:       &handlers.PollHandler{DB: db},
		Banners:     &handlers.BannerHandler{DB: db},
		Partners:    &handlers.PartnerHandler{DB: db},
		Documents:   &handlers.DocumentHandler{DB: db},
		Feedback:    &handlers.FeedbackHandler{DB: db, Mailer: mailer, Producer: producer},
		Subscribers: &handlers.SubscriberHandler{DB: db, Issuer: issuer, Codec: codec, Mailer: mailer},
		Contacts:    &handlers.ContactsHandler{Path: cfg.ContactsPath},
		Search:      &handlers.SearchHandler{ES: esClient, Index: cfg.NewsIndex},
	})

	rp := &reaper.Reaper{Repo: r, Log: log, Hour: cfg.ReaperHour}
	go func() {
		if err := rp.Run(ctx); err != nil {
			log.Error("reaper stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
