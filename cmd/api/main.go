package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aeternum/journeys-backend/internal/config"
	"github.com/aeternum/journeys-backend/internal/geocode"
	"github.com/aeternum/journeys-backend/internal/logging"
	"github.com/aeternum/journeys-backend/internal/media"
	miniorepo "github.com/aeternum/journeys-backend/internal/repository/minio"
	"github.com/aeternum/journeys-backend/internal/repository/postgres"
	"github.com/aeternum/journeys-backend/internal/service"
	transport "github.com/aeternum/journeys-backend/internal/transport/http"
	"github.com/aeternum/journeys-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("prepare schema: %v", err)
	}
	cancel()

	minioClient, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	storage := miniorepo.NewStorage(minioClient)

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	if err := storage.EnsureBucket(ctx, cfg.MinIOBucketMedia); err != nil {
		cancel()
		log.Fatalf("prepare media bucket: %v", err)
	}
	cancel()

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("parse SESSION_TTL: %v", err)
	}
	tokens := util.NewJWTManager(cfg.JWTSecret, sessionTTL)

	journeyRepo := postgres.NewJourneyRepo(db)
	mediaRepo := postgres.NewJourneyMediaRepo(db)
	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)

	authService := service.NewAuthService(userRepo, sessionRepo, tokens, cfg.GoogleAudience)
	placeService := service.NewPlaceService(geocode.NewClient(cfg.MapboxBaseURL, cfg.MapboxToken))
	journeyService := service.NewJourneyService(journeyRepo, mediaRepo, storage, service.JourneyServiceConfig{
		Bucket:            cfg.MinIOBucketMedia,
		PublicBaseURL:     cfg.MinIOPublicURL,
		MaxMediaFiles:     cfg.MediaMaxFiles,
		MaxMediaBytes:     cfg.MediaMaxBytes,
		ImageProcessor:    media.NewFFMPEGProcessor(cfg.FFmpegPath, cfg.MediaMaxDimension),
		ImageMaxDimension: cfg.MediaMaxDimension,
	})

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterPages(e, cfg.HomeURL)
	transport.RegisterSwagger(e)
	transport.RegisterAuth(e, authService)
	transport.RegisterPlaces(e, authService, placeService)
	transport.RegisterJourneys(e, authService, journeyService, cfg.MediaMaxBytes)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
