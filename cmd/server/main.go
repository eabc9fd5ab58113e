package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"tidalpower/fitness-studio/internal/api"
	"tidalpower/fitness-studio/internal/config"
	"tidalpower/fitness-studio/internal/logging"
	"tidalpower/fitness-studio/internal/metrics"
	"tidalpower/fitness-studio/internal/repository/mongo"
	"tidalpower/fitness-studio/internal/service"
	"tidalpower/fitness-studio/internal/storage"
)

// @title Fitness Studio API
// @version 1.0
// @description Classes, bookings, workout logging and training programs for a fitness studio.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infoln("starting fitness studio server ...")

	loc, err := cfg.Studio.Location()
	if err != nil {
		log.Fatalf("invalid studio timezone: %s", err)
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("could not connect to mongodb: %s", err)
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("failed to disconnect mongodb: %s", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.WithField("database", cfg.Database.Name).Info("database connection established")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		log.Debug("index creation completed")
	}()

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize s3 storage: %s", err)
		}
	} else {
		log.Warn("s3 bucket not configured, exercise videos disabled")
	}

	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	classRepo := mongo.NewMongoClassRepository(appDB)
	bookingRepo := mongo.NewMongoBookingRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)

	services := api.Services{
		Auth:     service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Roster:   service.NewRosterService(userRepo),
		Exercise: service.NewExerciseService(exerciseRepo, fileStorage),
		Class:    service.NewClassService(classRepo, sessionRepo, loc),
		Booking:  service.NewBookingService(bookingRepo, classRepo, userRepo, loc),
		Template: service.NewTemplateService(templateRepo, exerciseRepo),
		Session:  service.NewSessionService(sessionRepo, classRepo, templateRepo, userRepo, loc),
		Program:  service.NewProgramService(programRepo, templateRepo, userRepo),
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager("studio", "api", promRegistry)

	gin.SetMode(gin.ReleaseMode)
	opts := api.RouterOptions{
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        metricsManager,
	}
	if cfg.Metrics.Enabled {
		opts.Gatherer = promRegistry
		opts.MetricsPath = cfg.Metrics.Path
	}
	router := api.NewRouter(opts, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server ...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Info("server exiting")
}
