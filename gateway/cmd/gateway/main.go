package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rent_system/gateway/internal/config"
	"github.com/Skotchmaster/rent_system/gateway/internal/httpserver"
	"github.com/Skotchmaster/rent_system/gateway/internal/middleware"
	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	for _, m := range middleware.Common(logger) {
		e.Use(m)
	}

	deps := &httpserver.Deps{
		AuthURL:   cfg.AuthURL,
		RentalURL: cfg.RentalURL,
	}
	if cfg.Precheck {
		deps.Verifier = &tokens.Issuer{
			Secret:   cfg.JWT.SecretBytes(),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}
	}
	if err := httpserver.Register(e, deps); err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("gateway listening", "addr", srv.Addr, "auth", cfg.AuthURL, "rental", cfg.RentalURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
