package main

import (
	"alcyxob/coach-plans/internal/api"
	"alcyxob/coach-plans/internal/config"
	"alcyxob/coach-plans/internal/logging"
	"alcyxob/coach-plans/internal/repository/mongo"
	"alcyxob/coach-plans/internal/service"
	"alcyxob/coach-plans/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Coach Plans API
// @version 1.0
// @description Coaches build multi-week training plans for their clients.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// No configured logger yet.
		bootLogger := logging.New(config.LogConfig{})
		bootLogger.Fatal().Err(err).Msg("could not load config")
	}
	logger := logging.New(cfg.Log)
	logger.Info().Msg("starting coach plans server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	defer func() {
		logger.Info().Msg("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info().Str("database", cfg.Database.Name).Msg("database connection established")

	// --- Ensure Indexes ---
	// Plan numbering depends on the unique indexes, so this runs before serving.
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), time.Minute)
	err = mongo.EnsureIndexes(indexCtx, appDB, logger)
	cancelIndexes()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not ensure indexes")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	coachRepo := mongo.NewMongoCoachRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	sectionRepo := mongo.NewMongoSectionRepository(appDB)
	ptRepo := mongo.NewMongoProgressionTypeRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	templateRepo := mongo.NewMongoPlanTemplateRepository(appDB)

	if cfg.Seed.Catalog {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
		err = service.SeedCatalog(seedCtx, service.CatalogSeedDeps{Exercises: exerciseRepo, Sections: sectionRepo, Logger: logger})
		cancelSeed()
		if err != nil {
			logger.Fatal().Err(err).Msg("could not seed catalog")
		}
	}

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize S3 storage")
		}
	} else {
		logger.Warn().Msg("no S3 bucket configured, plan export disabled")
	}

	// --- Initialize Services ---
	planService := service.NewPlanService(service.PlanServiceDeps{
		Plans:            planRepo,
		Templates:        templateRepo,
		Clients:          clientRepo,
		Exercises:        exerciseRepo,
		Sections:         sectionRepo,
		ProgressionTypes: ptRepo,
		Files:            fileStorage,
		PresignExpiry:    cfg.Export.PresignExpiry,
		Logger:           logger,
	})
	services := api.Services{
		Auth:      service.NewAuthService(userRepo, coachRepo, clientRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger),
		Identity:  service.NewIdentityResolver(coachRepo, clientRepo),
		Clients:   service.NewClientService(userRepo, coachRepo, clientRepo, planRepo, logger),
		Plans:     planService,
		Templates: service.NewPlanTemplateService(templateRepo, exerciseRepo, sectionRepo, ptRepo, logger),
		Exercises: service.NewExerciseService(exerciseRepo),
		Catalog:   service.NewCatalogService(ptRepo, sectionRepo),
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, logger, cfg.Metrics.Enabled)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exiting")
}
