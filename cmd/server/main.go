package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/game_store/internal/cart"
	appcfg "github.com/Skotchmaster/game_store/internal/config"
	"github.com/Skotchmaster/game_store/internal/events"
	"github.com/Skotchmaster/game_store/internal/httpserver"
	"github.com/Skotchmaster/game_store/internal/media"
	"github.com/Skotchmaster/game_store/internal/models"
	"github.com/Skotchmaster/game_store/internal/queue"
	"github.com/Skotchmaster/game_store/internal/repo"
	"github.com/Skotchmaster/game_store/internal/search"
	"github.com/Skotchmaster/game_store/internal/service"
	pkgdb "github.com/Skotchmaster/game_store/pkg/db"
	"github.com/Skotchmaster/game_store/pkg/httperror"
	"github.com/Skotchmaster/game_store/pkg/logging"
	middleware "github.com/Skotchmaster/game_store/pkg/middleware/auth"
	"github.com/Skotchmaster/game_store/pkg/middleware/cache"
	"github.com/Skotchmaster/game_store/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/game_store/pkg/middleware/logging"
	"github.com/Skotchmaster/game_store/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/game_store/pkg/redisclient"
	"github.com/Skotchmaster/game_store/pkg/tokens"
)

func main() {
	if err := appcfg.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := appcfg.LoadServer()

	logger := logging.New(cfg.LogLevel).With("service", "game_store")
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	gormRepo := &repo.GormRepo{DB: db}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var searcher service.Searcher
	if cfg.ESURL != "" {
		esCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if client, err := search.NewClient(esCtx, search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}); err != nil {
			logger.Warn("search_disabled", "reason", "cannot reach elasticsearch", "error", err)
		} else {
			engine := search.New(client, cfg.ESIndex)
			if err := engine.EnsureIndex(esCtx); err != nil {
				logger.Warn("search_index_create_failed", "index", cfg.ESIndex, "error", err)
			}
			searcher = engine
		}
		cancel()
	}

	var receipts queue.Publisher = queue.Nop{}
	var amqpPub *queue.AMQPPublisher
	if cfg.RabbitMQURL != "" {
		if amqpPub, err = queue.NewAMQPPublisher(cfg.RabbitMQURL); err != nil {
			logger.Warn("receipts_disabled", "reason", "cannot reach rabbitmq", "error", err)
		} else {
			receipts = amqpPub
		}
	}

	rdb, err := redisclient.New(ctx, redisclient.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis_disabled", "error", err)
		rdb = nil
	}
	var cartStore cart.Store = cart.NewMemoryStore()
	if rdb != nil {
		cartStore = cart.NewRedisStore(rdb, cart.DefaultTTL)
	}
	responseCache := cache.New(rdb, cfg.CacheTTL, "games")
	limiter := ratelimit.New(rdb, cfg.RateLimitPerMinute, time.Minute)

	var uploader media.Uploader
	if cld, err := media.NewCloudinary(cfg.CloudinaryURL); err != nil {
		logger.Warn("upload_disabled", "error", err)
	} else if cld != nil {
		uploader = cld
	}

	catalogSvc := &service.CatalogService{Repo: gormRepo, Events: publisher, Search: searcher, Cache: responseCache}
	authSvc := &service.AuthService{Repo: gormRepo, JWTSecret: cfg.JWTSecret, Events: publisher}
	purchaseSvc := &service.PurchaseService{Repo: gormRepo, Events: publisher, Receipts: receipts}
	cartSvc := &service.CartService{Store: cartStore, Catalog: catalogSvc, Purchases: purchaseSvc}

	if cfg.AdminBootstrap() {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
	}

	secure := cfg.IsProduction()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperror.Handler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(httpserver.CORS(cfg.CORSOrigins))
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    secure,
			SkipPaths: []string{"/health/live", "/health/ready"},
			Skipper: func(c echo.Context) bool {
				// requests authenticated only by a bearer header
				_, err := c.Cookie(tokens.CookieName)
				return err != nil && c.Request().Header.Get(echo.HeaderAuthorization) != ""
			},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:        db,
		Catalog:   &httpserver.CatalogHTTP{Svc: catalogSvc},
		Auth:      &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: secure},
		Purchases: &httpserver.PurchaseHTTP{Svc: purchaseSvc},
		Cart:      &httpserver.CartHTTP{Svc: cartSvc, SecureCookies: secure},
		Upload:    &httpserver.UploadHTTP{Uploader: uploader},
		Guard:     middleware.NewGuard(cfg.JWTSecret, secure),
		Cache:     responseCache,
		RateLimit: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if amqpPub != nil {
		_ = amqpPub.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("shutdown_complete")
}
