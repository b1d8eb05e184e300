package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ideagauge/internal/cache"
	"ideagauge/internal/config"
	"ideagauge/internal/repository"
	"ideagauge/internal/service"
	"ideagauge/internal/transport/rest"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	cfg := config.Load()
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Extract: %s", aiConfig.Models.Extract)
	log.Printf("  Respond: %s", aiConfig.Models.Respond)
	log.Printf("  Report:  %s", aiConfig.Models.Report)
	if aiConfig.IsEnabled() {
		log.Println("  API Key: configured")
	} else {
		log.Println("  API Key: NOT SET (extraction degrades, reports are mocked)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Repositories and caches
	convRepo := repository.NewConversationRepo(db)
	msgRepo := repository.NewMessageRepo(db)
	reportRepo := repository.NewReportRepo(db)
	schemaCache := cache.NewSchemaCache(rdb)

	// Services
	gemini := service.NewGeminiClient(aiConfig)
	extractor := service.NewExtractionService(gemini, aiConfig)
	responder := service.NewResponderService(gemini, aiConfig)
	turns := service.NewTurnService(extractor, responder)
	authSvc := service.NewAuthService(cfg.JWTSecret)
	convSvc := service.NewConversationService(convRepo, msgRepo, schemaCache, turns)
	reportSvc := service.NewReportService(gemini, aiConfig, reportRepo)

	router := rest.NewRouter(&rest.Container{
		AuthService:         authSvc,
		ConversationService: convSvc,
		ReportService:       reportSvc,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/sessions")
		log.Println("  POST /v1/conversations")
		log.Println("  POST /v1/conversations/{id}/messages")
		log.Println("  GET  /v1/conversations/{id}/progress")
		log.Println("  POST /v1/conversations/{id}/report")
		log.Println("  WS   /v1/ws/conversations/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
