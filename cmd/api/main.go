// Command api serves the order tracking REST API.
//
//	@title						Order Tracking API
//	@version					1.0.0
//	@description				API documentation for the order tracking backend.
//	@contact.name				API Support
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api"
	"github.com/99minutos/order-tracking/internal/api/handler"
	"github.com/99minutos/order-tracking/internal/core/auth"
	"github.com/99minutos/order-tracking/internal/core/ports"
	"github.com/99minutos/order-tracking/internal/core/service"
	"github.com/99minutos/order-tracking/internal/infrastructure/config"
	"github.com/99minutos/order-tracking/internal/infrastructure/db/postgres"
	"github.com/99minutos/order-tracking/internal/infrastructure/jobs"
	"github.com/99minutos/order-tracking/internal/infrastructure/notify"
	"github.com/99minutos/order-tracking/internal/infrastructure/queue"
	"github.com/99minutos/order-tracking/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Bootstrap(os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))

	// --- Relational store (required) ---
	db, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
		ConnMaxLife:  cfg.Postgres.ConnMaxLife,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.AutoMigrate {
		if err := postgres.AutoMigrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate postgres")
		}
	}
	readiness := []handler.Dependency{
		{Name: "postgres", Ping: postgres.Pinger(db)},
	}

	users := postgres.NewUserRepository(db)
	orders := postgres.NewOrderRepository(db)

	// --- Audit trail and rate limiting (optional, always checked) ---
	mongoClient, eventRepo, mongoDep := openAuditStore(ctx, cfg.Mongo, log)
	redisClient, redisLimiter, redisDep := openRateLimiter(ctx, cfg.Redis, log)
	readiness = append(readiness, mongoDep, redisDep)

	var events ports.OrderEventLog
	var auditWriter *queue.AuditWriter
	if eventRepo != nil {
		auditWriter = queue.NewAuditWriter(eventRepo, queue.Options{
			Buffer:      cfg.Notify.Buffer,
			SendTimeout: cfg.Notify.SendTimeout,
		}, log.With().Str("component", "audit").Logger())
		auditWriter.Start(context.Background())
		events = auditWriter
	}

	// --- Notifications ---
	sender, closeSender := newSender(cfg.Notify, log)
	dispatcher := queue.NewDispatcher(queue.Options{
		Workers:     cfg.Notify.Workers,
		Buffer:      cfg.Notify.Buffer,
		SendTimeout: cfg.Notify.SendTimeout,
		Recipients:  users,
	}, sender, log.With().Str("component", "notifications").Logger())
	dispatcher.Start(context.Background())

	// --- Core services ---
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
	}
	authService := service.NewAuthService(users, tokens, log)
	orderService := service.NewOrderService(orders, users, events, dispatcher, log)
	userService := service.NewUserService(users, log)

	// --- Background jobs ---
	statsJob := jobs.NewOrderStatsJob(orders, cfg.Jobs.OrderStatsSchedule, log)
	if err := statsJob.Start(); err != nil {
		log.Error().Err(err).Msg("order stats job start failed")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Logger:       log,
		Production:   cfg.IsProduction(),
		Tokens:       tokens,
		AuthService:  authService,
		OrderService: orderService,
		UserService:  userService,
		Limiter:      redisLimiter,
		RateLimit:    cfg.RateLimit,
		Readiness:    readiness,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	statsJob.Stop(shutdownCtx)
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notification queue not fully drained")
	}
	if auditWriter != nil {
		if err := auditWriter.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("audit queue not fully drained")
		}
	}
	closeSender()
	closeStores(log, db, mongoClient, redisClient)

	log.Info().Msg("shutdown complete")
}

// newSender picks the notification channel named by cfg.Driver. The returned
// func releases any connection the sender holds.
func newSender(cfg config.NotifyConfig, log zerolog.Logger) (ports.NotificationSender, func()) {
	switch cfg.Driver {
	case "smtp":
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}), func() {}
	case "amqp":
		p := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("amqp close failed")
			}
		}
	default:
		if cfg.Driver != "log" {
			log.Warn().Str("driver", cfg.Driver).Msg("unknown notification driver, falling back to log")
		}
		return notify.NewLogSender(log), func() {}
	}
}
