package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"blockverify/credential-verifier/internal/config"
	"blockverify/credential-verifier/internal/handlers"
	"blockverify/credential-verifier/internal/repositories"
	"blockverify/credential-verifier/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	fileRepo := repositories.NewCertificateFileRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize the verification pipeline
	verifier := services.NewVerifierService(
		services.NewPDFConverterService(cfg.Verifier.PdftoppmPath),
		services.NewVisionExtractorService(geminiService),
		services.NewNameMatcherService(),
		services.NewLivenessCheckerService(cfg.Verifier.LivenessTimeout, cfg.Verifier.UserAgent),
		services.NewPlatformDetectorService(),
		services.NewDecisionEngine(),
	)
	log.Println("✅ Verification pipeline initialized")

	duplicateDetector := services.NewDuplicateDetectorService(geminiService, qdrantService)
	credStore := services.NewMemoryCredentialStore()

	processor := services.NewProcessorService(
		verificationRepo,
		fileRepo,
		storageService,
		verifier,
		duplicateDetector,
		credStore,
	)

	// Initialize worker
	worker := services.NewWorker(
		verificationRepo,
		processor,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// OTP side-channel for the student detail edit flow
	otpService := services.NewOTPService(services.LogCodeSender{}, cfg.OTP.TTL, nil)

	// Initialize Handlers
	verifyHandler := handlers.NewVerifyHandler(
		fileRepo,
		verificationRepo,
		storageService,
		verifier,
		processor,
		cfg.Storage.MaxFileSize,
	)
	verificationHandler := handlers.NewVerificationHandler(
		fileRepo,
		verificationRepo,
		storageService,
		worker,
		cfg.Storage.MaxFileSize,
	)
	otpHandler := handlers.NewOTPHandler(otpService, cfg.OTP.DevExpose)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BlockVerify Credential Verification API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "OK",
			"message":    "AI-powered certificate verification service is running",
			"aiProvider": "Google Gemini",
			"features":   []string{"Vision Analysis", "Smart Name Matching", "URL Detection"},
		})
	})

	// API endpoints
	api.Post("/verify-certificate", verifyHandler.HandleVerify)
	api.Post("/verifications", verificationHandler.HandleSubmit)
	api.Get("/verifications/:id", verificationHandler.HandleGetResult)
	api.Post("/otp/send", otpHandler.HandleSend)
	api.Post("/otp/verify", otpHandler.HandleVerify)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "BlockVerify Credential Verification API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/verify-certificate",
				"POST /api/v1/verifications",
				"GET /api/v1/verifications/:id",
				"POST /api/v1/otp/send",
				"POST /api/v1/otp/verify",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("🤖 Using Google Gemini Vision API\n")

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
