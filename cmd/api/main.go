package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labresults-api/internal/config"
	"github.com/labresults-api/internal/infrastructure/dynamo"
	s3infra "github.com/labresults-api/internal/infrastructure/s3"
	"github.com/labresults-api/internal/infrastructure/sns"
	"github.com/labresults-api/internal/infrastructure/telegram"
	transporthttp "github.com/labresults-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// S3 store for raw report attachments.
	s3Client := s3infra.NewClient(cfg)
	attachments := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Telegram bot (optional — the webhook endpoint fails without it,
	// results lookup and code verification still work).
	var chat telegram.Sender
	if c, err := telegram.NewClient(cfg.TelegramBotToken); err == nil {
		chat = c
	} else {
		log.Printf("WARN: telegram bot not available: %v", err)
	}

	// SNS SMS mirror, opt-in via SNS_ENABLED. Left nil when disabled so
	// issued codes go out over Telegram only.
	var smsSender sns.SMSSender
	if cfg.SNSEnabled {
		if sender, err := sns.NewSender(cfg); err == nil {
			smsSender = sender
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		ResultRepo:       dynamo.NewResultRepo(dynamoClient, cfg.DynamoTables.AnalysisResults),
		AttachmentStore:  attachments,
		Chat:             chat,
		SMSSender:        smsSender,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
