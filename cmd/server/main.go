package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kgichohi/social_posts/internal/config"
	"github.com/kgichohi/social_posts/internal/database"
	"github.com/kgichohi/social_posts/internal/es"
	"github.com/kgichohi/social_posts/internal/events"
	"github.com/kgichohi/social_posts/internal/handlers"
	"github.com/kgichohi/social_posts/internal/logging"
	loggingmw "github.com/kgichohi/social_posts/internal/middleware/logging"
	"github.com/kgichohi/social_posts/internal/token"
	httpserver "github.com/kgichohi/social_posts/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	tokens, err := token.NewService(
		[]byte(configuration.JWT_SECRET),
		configuration.JWT_ALGORITHM,
		time.Duration(configuration.ACCESS_TOKEN_EXPIRE_MINUTES)*time.Minute,
	)
	if err != nil {
		log.Fatal(err)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var postIndex *es.PostIndex
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init failed: %v", err)
		}
		postIndex = &es.PostIndex{Client: esClient, Name: "posts"}
	} else {
		logger.Warn("ES_URL not set, post search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(database.Transaction(db))

	deps := httpserver.Deps{
		DB:            db,
		Tokens:        tokens,
		UserHandler:   &handlers.UserHandler{DB: db, Producer: producer},
		AuthHandler:   &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: producer},
		PostHandler:   &handlers.PostHandler{DB: db, Producer: producer, Index: postIndex},
		VoteHandler:   &handlers.VoteHandler{DB: db, Producer: producer},
		SearchHandler: &handlers.SearchHandler{Index: postIndex},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
