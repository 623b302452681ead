package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/config"
	"github.com/chefhut/storefront/internal/eventlog"
	"github.com/chefhut/storefront/internal/handler"
	"github.com/chefhut/storefront/internal/identity"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/session"
	"github.com/chefhut/storefront/internal/telemetry"
	"github.com/chefhut/storefront/internal/view"
	"github.com/chefhut/storefront/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownMetrics, err := telemetry.InitMetrics(ctx, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Error("init metrics", "error", err)
		os.Exit(1)
	}
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Error("init tracing", "error", err)
		os.Exit(1)
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Error("create instruments", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// Sessions
	store := session.NewStore(session.NewRedisBackend(redisClient), cfg.Session.TTL, log)
	defer store.Close()
	codec := session.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL)

	// RabbitMQ carries session events between replicas when configured.
	var (
		amqpConn    *amqp.Connection
		eventWorker *worker.SessionEventWorker
	)
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		queue, err := worker.SetupRabbitMQ(amqpCh, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		store.SetPublisher(worker.NewPublisher(amqpCh, cfg.RabbitMQ.Exchange))
		eventWorker = worker.NewSessionEventWorker(amqpCh, queue, store, worker.NewRedisDedup(redisClient), log)
		log.Info("connected to RabbitMQ", "queue", queue)
	}

	// Kafka event log, nil when no brokers are configured
	events := eventlog.New(cfg.Kafka.Brokers, cfg.Kafka.LogTopic, cfg.App.Env)
	defer events.Close()

	// Identity provider
	provider, err := identity.NewFirebase(ctx, identity.Options{
		ProjectID:       cfg.Firebase.ProjectID,
		CredentialsFile: cfg.Firebase.CredentialsFile,
		APIKey:          cfg.Firebase.APIKey,
	})
	if err != nil {
		log.Error("init identity provider", "error", err)
		os.Exit(1)
	}

	// Backend API
	public := apiclient.New(apiclient.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		MaxIdleConns:    cfg.API.MaxIdleConns,
		IdleConnTimeout: cfg.API.IdleConnTimeout,
		ReadRetries:     cfg.API.ReadRetries,
		RetryWait:       cfg.API.RetryWait,
	})
	secure := public.Secure(session.Token)

	// Repositories
	userRepo := repository.NewUserRepository(secure)
	mealRepo := repository.NewMealRepository(public, secure)
	reviewRepo := repository.NewReviewRepository(public, secure)
	favoriteRepo := repository.NewFavoriteRepository(secure)
	orderRepo := repository.NewOrderRepository(secure)
	paymentRepo := repository.NewPaymentRepository(secure)
	requestRepo := repository.NewRoleRequestRepository(secure)
	statsRepo := repository.NewStatsRepository(secure)

	// Services
	queryCache := cache.NewRedis(redisClient)
	ttl := cfg.Cache.QueryTTL
	resolver := service.NewRoleResolver(userRepo, queryCache, cfg.Cache.RoleTTL)
	unsubscribe := store.Subscribe(resolver.OnSessionEvent)
	defer unsubscribe()

	authSvc := service.NewAuthService(provider, userRepo, store, log)
	mealSvc := service.NewMealService(mealRepo, reviewRepo, queryCache, ttl)
	reviewSvc := service.NewReviewService(reviewRepo, queryCache, ttl)
	favoriteSvc := service.NewFavoriteService(favoriteRepo, queryCache, ttl, metrics)
	orderSvc := service.NewOrderService(orderRepo, paymentRepo, queryCache, ttl, metrics)
	profileSvc := service.NewProfileService(userRepo, requestRepo, queryCache, ttl)
	adminSvc := service.NewAdminService(userRepo, requestRepo, statsRepo, resolver, queryCache, ttl)

	// Views
	templates, err := view.Templates()
	if err != nil {
		log.Error("load templates", "error", err)
		os.Exit(1)
	}
	menu, err := view.LoadMenu()
	if err != nil {
		log.Error("load menu", "error", err)
		os.Exit(1)
	}

	// Middleware and handlers
	sessions := middleware.NewSessions(store, codec, authSvc, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	}, log)
	roles := middleware.NewRoles(resolver, log)
	render := handler.NewRenderer(menu, store, roles, cfg.App.DefaultTheme, log)

	router := handler.NewRouter(handler.RouterDeps{
		Handlers: handler.Handlers{
			Auth:    handler.NewAuthHandler(authSvc, sessions, render, log),
			Meals:   handler.NewMealHandler(mealSvc, reviewSvc, favoriteSvc, render, log),
			Orders:  handler.NewOrderHandler(orderSvc, mealSvc, roles, render, log),
			Account: handler.NewAccountHandler(authSvc, profileSvc, favoriteSvc, reviewSvc, render, log),
			Chef:    handler.NewChefHandler(mealSvc, orderSvc, render, log),
			Admin:   handler.NewAdminHandler(adminSvc, store, render, log),
			Theme:   handler.NewThemeHandler(render),
			Session: handler.NewSessionHandler(roles),
			Health:  handler.NewHealthHandler(public, redisClient, amqpConn),
		},
		Render:         render,
		Sessions:       sessions,
		Roles:          roles,
		Templates:      templates,
		Middleware:     []gin.HandlerFunc{middleware.RequestLog(log, events), middleware.Metrics(metrics)},
		AllowedOrigins: cfg.App.AllowedOrigins,
		Metrics:        promhttp.Handler(),
	})

	if eventWorker != nil {
		if err := eventWorker.Start(ctx); err != nil {
			log.Error("start session event worker", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if eventWorker != nil {
		eventWorker.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", "error", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		log.Warn("metrics shutdown", "error", err)
	}
	cancel()
	log.Info("server stopped")
}
