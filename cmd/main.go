package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"upload-service/internal/api/handlers"
	"upload-service/internal/config"
	"upload-service/internal/events"
	"upload-service/internal/media"
	"upload-service/internal/repository"
	"upload-service/internal/scanner"
	"upload-service/internal/service"
	"upload-service/internal/storage"
	"upload-service/pkg/discovery"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/var", "log", "upload_service")
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	logFile, err := setupLogging()
	if err != nil {
		log.Printf("Warning: Failed to set up logging: %v", err)
	} else {
		defer logFile.Close()
	}

	// Initialize the object store client
	store, err := storage.New(context.Background(), &cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to initialize object store client: %v", err)
	}

	// Initialize the content scanner; fatal only when configured to fail hard
	contentScanner := scanner.New(&cfg.ClamAV)
	if err := contentScanner.Initialize(); err != nil {
		log.Fatalf("Failed to initialize content scanner: %v", err)
	}

	// Initialize the media processor
	mediaProcessor := media.NewProcessor(&cfg.Media)

	// Initialize the outcome cache (disabled without a Redis address)
	outcomeCache := repository.NewOutcomeCache(&cfg.Redis)
	defer outcomeCache.Close()

	// Initialize the event publisher (disabled without a RabbitMQ URI)
	var eventBus events.Publisher
	eventPublisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
		eventPublisher, _ = events.NewEventPublisher("", "")
	}
	eventBus = eventPublisher
	defer eventBus.Close()

	// Compose the upload orchestrator; the event bus doubles as the profile
	// updater by announcing avatar.updated.
	uploadService := service.NewUploadService(
		store,
		contentScanner,
		mediaProcessor,
		eventBus,
		outcomeCache,
		eventBus,
	)

	// Initialize service discovery
	var serviceRegistry *discovery.ServiceRegistry
	if cfg.Consul.Address != "" {
		serviceRegistry, err = discovery.NewServiceRegistry(
			cfg.Consul.Address,
			cfg.Server.ServiceName,
			cfg.Server.ServiceID,
			cfg.Server.Port,
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize service discovery: %v", err)
		} else if err := serviceRegistry.Register(); err != nil {
			log.Printf("Warning: Failed to register with Consul: %v", err)
			serviceRegistry = nil
		} else {
			log.Println("Successfully registered with Consul")
			defer serviceRegistry.Deregister()
		}
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Upload Service is healthy")
	})

	// Register routes
	uploadHandler := handlers.NewUploadHandler(uploadService)
	uploadHandler.RegisterRoutes(app)

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	<-doneChan
	log.Println("Server exited, goodbye!")
}
