package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
	"github.com/gearsphere/motorclub-backend/internal/chat"
	"github.com/gearsphere/motorclub-backend/internal/config"
	"github.com/gearsphere/motorclub-backend/internal/es"
	"github.com/gearsphere/motorclub-backend/internal/events"
	"github.com/gearsphere/motorclub-backend/internal/handlers"
	"github.com/gearsphere/motorclub-backend/internal/logging"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	loggingmw "github.com/gearsphere/motorclub-backend/internal/middleware/logging"
	httpserver "github.com/gearsphere/motorclub-backend/internal/transport/http"
	"github.com/gearsphere/motorclub-backend/internal/upload"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	config.MustNonEmpty(cfg.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	var brokers []string
	if cfg.KAFKA_ADDRESS != "" {
		brokers = []string{cfg.KAFKA_ADDRESS}
	}
	producer := events.NewProducer(brokers)

	auth := &authsvc.Service{
		DB:         db,
		JWTSecret:  []byte(cfg.JWT_SECRET),
		AccessTTL:  time.Duration(cfg.JWT_EXPIRATION_MS) * time.Millisecond,
		RefreshTTL: time.Duration(cfg.REFRESH_EXPIRATION_MS) * time.Millisecond,
	}

	hub := chat.NewHub(logger)
	go hub.Run()

	uploads := &upload.Store{BaseDir: cfg.UPLOAD_DIR}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthMW:          authmw.New(auth),
		AuthHandler:     &handlers.AuthHandler{DB: db, Auth: auth, Producer: producer, ES: esClient},
		UserHandler:     &handlers.UserHandler{DB: db, Auth: auth, Producer: producer, ES: esClient},
		CarHandler:      &handlers.CarHandler{DB: db},
		CarPhotoHandler: &handlers.CarPhotoHandler{DB: db, Uploads: uploads},
		ForumHandler:    &handlers.ForumHandler{DB: db, ES: esClient, Producer: producer, Uploads: uploads},
		ChatHandler:     handlers.NewChatHandler(db, hub, auth, producer),
		AudioHandler:    &handlers.AudioHandler{DB: db, Uploads: uploads},
		TuningHandler:   &handlers.TuningHandler{DB: db},
		UploadDir:       cfg.UPLOAD_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.SERVER_PORT),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
