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

	"ledgerlens/internal/config"
	"ledgerlens/internal/handler"
	"ledgerlens/internal/metrics"
	"ledgerlens/internal/pricing"
	"ledgerlens/internal/port"
	"ledgerlens/internal/repository/postgres"
	"ledgerlens/internal/reprocess"
	"ledgerlens/internal/router"
	"ledgerlens/internal/service"
	s3storage "ledgerlens/internal/storage/s3"
	"ledgerlens/internal/validator"
	"ledgerlens/internal/vision"
	"ledgerlens/internal/vision/openrouter"
	"ledgerlens/internal/vision/vllm"

	"ledgerlens/internal/email/noop"
	"ledgerlens/internal/email/ses"

	_ "ledgerlens/docs"
)

// @title LedgerLens API
// @version 1.0
// @description Extraction validation and adaptive reprocessing service for financial documents.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	usageRepo := postgres.NewUsageRepo(db)

	prompts, err := config.NewPromptStore(cfg.Prompts.File)
	if err != nil {
		return fmt.Errorf("failed to load prompt templates: %w", err)
	}

	invoker, err := buildInvoker(&cfg.Vision)
	if err != nil {
		return fmt.Errorf("failed to initialize vision provider: %w", err)
	}

	// Pricing is refreshed in the background only when OpenRouter is in
	// play; self-hosted vLLM usage always costs zero.
	pricingSource := pricing.NewOpenRouterSource(openrouterBaseURL(&cfg.Vision), cfg.Pricing.CacheTTL)
	if usesOpenRouter(&cfg.Vision) {
		refresher := service.NewPricingRefresher(pricingSource, time.Duration(cfg.Pricing.RefreshIntervalSecs)*time.Second)
		go refresher.Start(ctx)
	}

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	emailSender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	fieldValidator := validator.NewFieldValidator()
	engine := reprocess.NewEngine(invoker, fieldValidator)
	m := metrics.New()

	extractionSvc := service.NewExtractionService(
		invoker, prompts, fieldValidator, engine,
		usageRepo, pricingSource, storage, emailSender, m,
		service.ExtractionOptions{
			Provider:          cfg.Vision.Provider,
			Model:             cfg.Vision.Model,
			MaxFileSizeBytes:  cfg.Upload.MaxFileSizeMB * 1024 * 1024,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			ReviewBucket:      cfg.S3.Bucket,
			PresignExpirySecs: cfg.S3.PresignExpiry,
		},
	)
	usageSvc := service.NewUsageService(usageRepo)

	documentH := handler.NewDocumentHandler(extractionSvc)
	templateH := handler.NewTemplateHandler(prompts)
	usageH := handler.NewUsageHandler(usageSvc)
	healthH := handler.NewHealthHandler(db, prompts, cfg.Vision.Provider, cfg.Vision.Model)

	r := router.Setup(documentH, templateH, usageH, healthH, m, router.Options{
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

// buildInvoker creates the primary vision invoker and, when a fallback
// provider is configured, wraps both in a circuit-breaking fallback chain.
func buildInvoker(cfg *config.VisionConfig) (port.VisionInvoker, error) {
	vision.RegisterProvider("vllm", vllm.New)
	vision.RegisterProvider("openrouter", openrouter.New)

	primary, err := vision.NewInvoker(cfg.PrimaryConfig())
	if err != nil {
		return nil, err
	}

	fallbackCfg := cfg.FallbackConfig()
	if fallbackCfg == nil {
		return primary, nil
	}

	fallback, err := vision.NewInvoker(fallbackCfg)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return vision.NewFallbackInvoker(
		[]port.VisionInvoker{primary, fallback},
		[]string{cfg.Provider, fallbackCfg.Provider},
	), nil
}

func usesOpenRouter(cfg *config.VisionConfig) bool {
	return cfg.Provider == "openrouter" || cfg.Fallback.Provider == "openrouter"
}

// openrouterBaseURL picks the base URL of whichever configured provider is
// OpenRouter, so pricing lookups hit the same deployment as inference.
func openrouterBaseURL(cfg *config.VisionConfig) string {
	if cfg.Provider == "openrouter" {
		return cfg.BaseURL
	}
	if cfg.Fallback.Provider == "openrouter" {
		return cfg.Fallback.BaseURL
	}
	return ""
}

func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ReviewAddress)
	default:
		return noop.NewNoopSender(), nil
	}
}
