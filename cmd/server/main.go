// Copyright 2025 NiveshPath Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command server runs the NiveshPath backend API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/niveshpath/backend/internal/auth"
	"github.com/niveshpath/backend/internal/chatbot"
	"github.com/niveshpath/backend/internal/config"
	"github.com/niveshpath/backend/internal/external"
	"github.com/niveshpath/backend/internal/mailer"
	"github.com/niveshpath/backend/internal/mistral"
	"github.com/niveshpath/backend/internal/otp"
	"github.com/niveshpath/backend/internal/server"
	"github.com/niveshpath/backend/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "NiveshPath personal finance education backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("mistral_api_url", cfg.Mistral.APIURL),
		zap.String("database_path", cfg.Database.Path),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// Hot reload is a development aid; changes to wired components still
	// need a restart.
	if cfg.Server.Mode == "debug" {
		err := config.WatchConfig(configPath, func(updated *config.Config) {
			logger.Info("Configuration reloaded",
				zap.String("mistral_api_url", updated.Mistral.APIURL),
				zap.Int("rate_limit_requests", updated.RateLimit.Requests),
			)
		})
		if err != nil {
			logger.Warn("Config watching unavailable", zap.Error(err))
		}
	}

	db, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	var otpStore otp.Store
	if cfg.Redis.Enabled {
		redisStore, err := otp.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisStore.Close()
		otpStore = redisStore
	} else {
		otpStore = otp.NewMemoryStore()
	}
	otpService := otp.NewService(otpStore, cfg.OTP.TTL, logger)

	var sender mailer.Sender
	if cfg.Mail.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort,
			cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, logger)
	} else {
		sender = mailer.NewLogSender(logger)
	}

	modelClient, err := mistral.NewClient(cfg.Mistral.APIKey, cfg.Mistral.APIURL, logger)
	if err != nil {
		return fmt.Errorf("failed to build mistral client: %w", err)
	}

	engine := chatbot.NewEngine(db, modelClient, logger)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	externalClient := external.NewClient(cfg.External.NewsURL, cfg.External.MarketURL,
		cfg.External.CurrencyURL, logger)

	_, router := server.New(server.Options{
		Store:     db,
		Engine:    engine,
		Issuer:    issuer,
		OTP:       otpService,
		Mailer:    sender,
		External:  externalClient,
		Logger:    logger,
		RateLimit: cfg.RateLimit.Requests,
		RateWin:   cfg.RateLimit.Window,
		Mode:      cfg.Server.Mode,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
