package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/giftlist-api/internal/auth"
	"github.com/gravadigital/giftlist-api/internal/blob"
	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/notify"
	gateway "github.com/gravadigital/giftlist-api/internal/payment"
	"github.com/gravadigital/giftlist-api/internal/server"
	"github.com/gravadigital/giftlist-api/internal/services"
	"github.com/gravadigital/giftlist-api/internal/storage"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Server.LogLevel)
	log := logger.Get()

	log.Info("Starting Giftlist API", "environment", cfg.Server.Environment, "storage", cfg.Storage.Type, "blob", cfg.Blob.Provider)

	if cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
		log.Fatal("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if cfg.IsProduction() && cfg.Auth.AllowDevLogin {
		log.Fatal("AUTH_ALLOW_DEV_LOGIN must not be enabled in production")
	}

	storageType, err := storage.ValidateStorageType(cfg.Storage.Type)
	if err != nil {
		log.Fatal("Invalid storage type", "error", err)
	}
	store, err := storage.NewFactory(storageType).CreateContainer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	ctx := context.Background()
	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store", "error", err)
	}

	publisher, err := notify.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize event publisher", "error", err)
	}
	defer publisher.Close()

	svc := services.New(services.Dependencies{
		Store:     store,
		Blobs:     blobs,
		Gateway:   gateway.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret),
		Verifier:  gateway.NewVerifier(cfg.Payment.KeySecret),
		Publisher: publisher,
		Uploads: services.UploadPolicy{
			MaxFileSize:  cfg.Upload.MaxFileSize,
			AllowedTypes: cfg.Upload.AllowedTypes,
		},
		Checkout: services.CheckoutOptions{
			KeyID:      cfg.Payment.KeyID,
			Currency:   cfg.Payment.Currency,
			Name:       cfg.Payment.CheckoutName,
			ThemeColor: cfg.Payment.ThemeColor,
		},
	})

	srv := server.New(cfg, svc, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), store)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server stopped", "error", err)
		}
	case sig := <-quit:
		log.Info("Received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
