package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskhub/config"
	"taskhub/metrics"
	"taskhub/middleware"
	"taskhub/repository"
	"taskhub/routes"
	"taskhub/services"
	"taskhub/utils"
	"taskhub/worker"
)

func main() {
	log := utils.Logger("main")

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.AppConfig
	utils.InitLogger(cfg.Environment)
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		log.WithError(err).Warn("Sentry disabled")
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	metrics.Init()

	repos := repository.New(config.DB)
	hub := services.NewHub(utils.Logger("hub"))
	sinks := []services.Sink{hub}
	var mailSink *services.MailSink
	if cfg.SMTP.Enabled() {
		mailSink = services.NewMailSink(utils.NewMailer(cfg.SMTP), repos.Users, utils.Logger("mail"))
		sinks = append(sinks, mailSink)
	}

	opts := services.Options{
		MaxUploadBytes: int64(cfg.MaxUploadBytes),
		Sinks:          sinks,
	}
	if cfg.Google.ClientID != "" {
		opts.Google = utils.NewGoogleProvider(cfg.Google)
	}
	svc := services.New(services.Stores{
		Users:         repos.Users,
		Teams:         repos.Teams,
		Memberships:   repos.Memberships,
		Projects:      repos.Projects,
		Tasks:         repos.Tasks,
		Comments:      repos.Comments,
		Notifications: repos.Notifications,
		Files:         repos.Files,
	}, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Deadline scanner
	scanner := worker.NewDeadlineWorker(repos.Tasks, svc.Notifications, utils.Logger("deadline_worker"))
	scanner.Interval = cfg.Deadline.Interval
	scanner.InitialDelay = cfg.Deadline.InitialDelay
	scanner.LookaheadDays = cfg.Deadline.LookaheadDays
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		scanner.Start(ctx)
	}()

	app := fiber.New(fiber.Config{
		AppName:   "taskhub",
		BodyLimit: cfg.MaxUploadBytes + 1024*1024,
	})
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   middleware.DefaultCORSConfig().AllowedMethods,
		AllowedHeaders:   middleware.DefaultCORSConfig().AllowedHeaders,
		ExposedHeaders:   middleware.DefaultCORSConfig().ExposedHeaders,
		MaxAge:           3600,
	}))

	routes.SetupRoutes(app, routes.Deps{
		Services:      svc,
		Hub:           hub,
		Users:         repos.Users,
		Scanner:       scanner,
		AuthRateLimit: cfg.AuthRateLimit,
		RateStorage:   middleware.RateLimitStorage(cfg.Redis),
		AccessLog:     true,
	})

	go func() {
		log.WithField("port", cfg.ServerPort).Info("Server starting")
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Warn("Server shutdown incomplete")
	}
	<-workerDone
	if mailSink != nil {
		mailSink.Wait()
	}
	if sqlDB, err := config.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.FlushSentry(2 * time.Second)
	log.Info("Shutdown complete")
}
