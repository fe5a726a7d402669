package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lumenacademy/progress-api/internal/config"
	"github.com/lumenacademy/progress-api/internal/database"
	"github.com/lumenacademy/progress-api/internal/handler"
	"github.com/lumenacademy/progress-api/internal/middleware"
	"github.com/lumenacademy/progress-api/internal/models"
	"github.com/lumenacademy/progress-api/internal/repository"
	"github.com/lumenacademy/progress-api/internal/router"
	"github.com/lumenacademy/progress-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assessment{},
		&models.AssessmentResult{},
		&models.Certificate{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// The event brokers are optional collaborators; the engine runs without
	// them when their URLs are not configured.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, validate, logger)
	eventPublisher := service.NewEventPublisher(redisClient, natsConn, cfg.EventChannelBase, logger)
	calculator := service.NewProgressCalculator(enrollmentRepo, assessmentRepo, activityService, eventPublisher, logger)
	progressService := service.NewProgressService(enrollmentRepo, calculator, logger)
	certificateService := service.NewCertificateService(assessmentRepo, validate, logger)
	issuanceService := service.NewCertificateIssuanceService(certificateService, certificateRepo, activityService, eventPublisher, logger)

	progressHandler := handler.NewProgressHandler(progressService, calculator, logger)
	certificateHandler := handler.NewCertificateHandler(certificateService, issuanceService, cfg.DefaultMinScore, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProgressHandler:    progressHandler,
		CertificateHandler: certificateHandler,
		ActivityHandler:    activityHandler,
		Brokers:            handler.BrokerStatus{Redis: redisClient != nil, NATS: natsConn != nil},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
