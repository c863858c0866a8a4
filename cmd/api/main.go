package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"reelbase/internal/app"
	"reelbase/internal/config"
	"reelbase/internal/identity"
	"reelbase/internal/server"
	"reelbase/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}
	resetTTL, err := config.ParseResetTokenTTL(cfg.ResetTokenTTL)
	if err != nil {
		log.Fatalf("failed to parse reset token TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	identitySvc, err := identity.NewFromPEMFile(cfg.IdentityKeyPath, cfg.IdentityKeyID, identity.Options{
		Issuer:   cfg.IdentityIssuer,
		Audience: cfg.IdentityAudience,
		TokenTTL: tokenTTL,
	})
	if err != nil {
		log.Fatalf("failed to init identity service: %v", err)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		OMDBAPIKey:     cfg.OMDBAPIKey,
		OMDBBaseURL:    cfg.OMDBBaseURL,
		AMQPURL:        cfg.AMQPURL,
		PushQueue:      cfg.PushQueue,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
		MLServiceURL:   cfg.MLServiceURL,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		ResetTokenTTL:  resetTTL,
		Identity:       identitySvc,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:  cfg.LoginRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("api server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
