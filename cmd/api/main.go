package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vishalvikash93/imagevault/internal/config"
	"github.com/vishalvikash93/imagevault/internal/image"
	"github.com/vishalvikash93/imagevault/internal/server"
	"github.com/vishalvikash93/imagevault/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		log.Fatalf("ensure bucket: %v", err)
	}

	objectStore := image.NewMinIOStore(minioClient)

	var (
		imageService *image.Service
		pinger       server.MetadataPinger
	)

	switch cfg.Metadata.Backend {
	case "postgres":
		pool, err := storage.NewPostgresPool(ctx, cfg.Metadata.Postgres)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		repo := image.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		imageService = image.NewService(repo, objectStore, cfg.MinIO.Bucket, cfg.Images.PresignedURLExpiry, cfg.Images.DefaultListLimit)
		pinger = repo
	default:
		db, err := storage.OpenBadger(cfg.Metadata)
		if err != nil {
			log.Fatalf("open metadata database: %v", err)
		}
		defer db.Close()

		repo := image.NewRepository(db)
		imageService = image.NewService(repo, objectStore, cfg.MinIO.Bucket, cfg.Images.PresignedURLExpiry, cfg.Images.DefaultListLimit)
		pinger = repo
	}

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		Metadata:     pinger,
		ObjectStore:  minioClient,
		ImageService: imageService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("ImageVault API listening on %s", cfg.Server.Address())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("shutting down gracefully...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
