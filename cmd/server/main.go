package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/cache"
	"github.com/fathimasithara01/caseflow/internal/config"
	"github.com/fathimasithara01/caseflow/internal/database"
	"github.com/fathimasithara01/caseflow/internal/documents"
	"github.com/fathimasithara01/caseflow/internal/google"
	"github.com/fathimasithara01/caseflow/internal/handlers"
	"github.com/fathimasithara01/caseflow/internal/logger"
	"github.com/fathimasithara01/caseflow/internal/middleware"
	"github.com/fathimasithara01/caseflow/internal/repository"
	"github.com/fathimasithara01/caseflow/internal/routes"
	"github.com/fathimasithara01/caseflow/internal/services"
	"github.com/fathimasithara01/caseflow/internal/storage"
	"github.com/fathimasithara01/caseflow/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Development: cfg.App.Env == "development"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Mongo
	db, mc, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}

	// Redis
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}

	// blob store
	store, err := storage.NewBlobStore(context.Background(), storage.Config{
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Timeout:   cfg.UploadTimeout,
	}, log)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	// repositories
	userRepo := repository.NewUserRepo(db.Collection("users"))
	clientRepo := repository.NewClientRepo(db.Collection("clients"))
	caseRepo := repository.NewCaseRepo(db.Collection("cases"))
	eventRepo := repository.NewEventRepo(db.Collection("events"))
	contactRepo := repository.NewContactRepo(db.Collection("contacts"))

	// services
	cacheStore := cache.NewStore(rdb, log)
	authSvc := services.NewAuthService(userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHour)*time.Hour)
	dashSvc := services.NewDashboardService(caseRepo, eventRepo, cacheStore,
		time.Duration(cfg.Redis.DashboardTTL)*time.Second, log)
	googleSvc := google.NewService(cfg.Google.ClientID, cfg.Google.ClientSecret,
		cfg.Google.RedirectURL, db.Collection("google_tokens"), log)

	// middleware & handlers
	uploads := upload.New(store, log, upload.Config{
		MaxSize: int64(cfg.Storage.MaxFileSizeMiB) << 20,
	})
	limiter := middleware.NewRateLimiter(rdb, "ratelimit:uploads", cfg.RateLimit.Limit, cfg.RateWindow)

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // uploads can be slow
		BodyLimit:    (cfg.Storage.MaxFileSizeMiB + 2) << 20,
		ErrorHandler: apperr.ErrorHandler,
	})
	app.Use(middleware.RequestLogger(log))

	routes.Register(app, routes.Deps{
		JWTSecret:  cfg.JWT.Secret,
		Auth:       handlers.NewAuthHandler(authSvc),
		Users:      handlers.NewUserHandler(userRepo, log),
		Clients:    handlers.NewClientHandler(clientRepo),
		Cases:      handlers.NewCaseHandler(caseRepo),
		Events:     handlers.NewEventHandler(eventRepo),
		Contacts:   handlers.NewContactHandler(contactRepo),
		Dashboard:  handlers.NewDashboardHandler(dashSvc),
		Photos:     handlers.NewPhotoHandler(userRepo, store, log),
		Firms:      handlers.NewFirmHandler(store, log),
		CaseDocs:   documents.New(caseRepo.Collection(), store, log),
		Uploads:    uploads,
		Google:     googleSvc,
		CacheStore: cacheStore,
		Limiter:    limiter,
		MaxBatch:   cfg.Storage.MaxBatchFiles,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		log.Infof("starting caseflow api on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = app.Shutdown()
	_ = mc.Disconnect(timeoutCtx)
	_ = rdb.Close()
	log.Info("shutdown completed")
}
