// File: movebot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movebot/config"
	"movebot/database/records"
	sheetsRepo "movebot/database/sheets"
	"movebot/handlers"
	"movebot/routes"
	"movebot/services/availability"
	"movebot/services/conversation"
	"movebot/services/dialogue"
	"movebot/services/distance"
	"movebot/services/extraction"
	ai "movebot/services/intelligence"
	"movebot/services/notify"
	"movebot/services/pricing"
	"movebot/services/speech"
	"movebot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	ctx := context.Background()

	// Language backend.
	llm, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize gemini client: %v", err)
	}
	defer llm.Close()

	chatModels := ai.DefaultChatModels
	if config.AppConfig.GeminiModel != "" {
		chatModels = append([]string{config.AppConfig.GeminiModel}, chatModels...)
	}
	retryPolicy := ai.NewRetryPolicy(chatModels)
	cooldown := ai.NewCooldown()

	// Booking records (Google Sheets).
	var recordsRepo records.Repository
	recordsRepo, err = sheetsRepo.NewRepository(ctx,
		config.AppConfig.GoogleServiceAccountFile, config.AppConfig.BookingSheetID)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize sheets repository: %v", err)
	}

	// Domain services.
	distanceSvc := distance.NewGoogleMatrixService(config.AppConfig.GoogleMapsAPIKey)
	availTracker := availability.NewTracker(recordsRepo, config.AppConfig.DailyCapacity)
	pricingEngine := &pricing.Engine{
		Distance:      distanceSvc,
		Availability:  availTracker,
		OfficeAddress: config.AppConfig.OfficeAddress,
		PeakDates:     config.PeakDateSet(),
	}

	// Session store.
	var store conversation.Store
	if config.AppConfig.SessionStore == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisSessionDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Sugar().Fatalf("main: failed to connect to redis: %v", err)
		}
		ttl := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
		store = conversation.NewRedisStore(rdb, ttl)
		logger.Info("using redis session store")
	} else {
		store = conversation.NewMemoryStore()
	}

	// Mail.
	var notifier notify.Notifier = notify.Noop{}
	if config.AppConfig.SMTPHost != "" && config.AppConfig.ManagerEmail != "" {
		notifier = notify.NewMailer(
			config.AppConfig.SMTPHost,
			config.AppConfig.SMTPPort,
			config.AppConfig.EmailAddress,
			config.AppConfig.EmailPassword,
			config.AppConfig.ManagerEmail,
		)
	} else {
		logger.Warn("SMTP not configured, notifications disabled")
	}

	extractor := extraction.NewAIExtractor(llm, config.AppConfig.ExtractorModel, distanceSvc)

	orchestrator := &dialogue.Orchestrator{
		Store:             store,
		Extractor:         extractor,
		LLM:               llm,
		Retry:             retryPolicy,
		Cooldown:          cooldown,
		Pricing:           pricingEngine,
		Availability:      availTracker,
		Records:           recordsRepo,
		Notifier:          notifier,
		OfficeAddress:     config.AppConfig.OfficeAddress,
		CompanyPhone:      config.AppConfig.CompanyPhone,
		SendCustomerEmail: config.AppConfig.SendCustomerEmail,
	}

	// Speech (optional: requires Google credentials).
	var transcriber speech.Transcriber
	gt, err := speech.NewGoogleTranscriber(ctx, config.AppConfig.GoogleServiceAccountFile)
	if err != nil {
		logger.Sugar().Warnf("main: speech transcriber unavailable: %v", err)
	} else {
		transcriber = gt
		defer gt.Close()
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &handlers.HandlerBundle{
		Orchestrator:  orchestrator,
		Pricing:       pricingEngine,
		Availability:  availTracker,
		Records:       recordsRepo,
		Transcriber:   transcriber,
		Streams:       speech.NewStreamBuffer(),
		CompanyPhone:  config.AppConfig.CompanyPhone,
		OfficeAddress: config.AppConfig.OfficeAddress,
	}

	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: forced shutdown: %v", err)
	}
	logger.Info("Server exited")
}
