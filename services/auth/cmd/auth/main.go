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
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/Skotchmaster/rent_system/pkg/db"
	"github.com/Skotchmaster/rent_system/pkg/events"
	"github.com/Skotchmaster/rent_system/pkg/logging"
	loggingmw "github.com/Skotchmaster/rent_system/pkg/middleware/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/pkg/validate"

	authcfg "github.com/Skotchmaster/rent_system/services/auth/internal/config"
	"github.com/Skotchmaster/rent_system/services/auth/internal/httpserver"
	"github.com/Skotchmaster/rent_system/services/auth/internal/models"
	"github.com/Skotchmaster/rent_system/services/auth/internal/repo"
	"github.com/Skotchmaster/rent_system/services/auth/internal/service"
)

func main() {
	cfg := authcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	if cfg.DatabaseDriver == pkgdb.DriverSQLite {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
	}

	publisher := events.New(cfg.KafkaBrokers)

	issuer := &tokens.Issuer{
		Secret:   cfg.JWT.SecretBytes(),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.AccessTTL,
	}

	svc := &service.AuthService{
		Repo:         &repo.GormRepo{DB: db, RefreshTTL: cfg.JWT.RefreshTTL},
		Tokens:       issuer,
		Events:       publisher,
		AllowedRoles: cfg.AllowedRoles,
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc, CookiePath: cfg.CookiePath},
		Verifier:    issuer,
		DB:          db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("auth listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("close_publisher", "error", err)
	}
	_ = pkgdb.Close(db)

	logger.Info("auth stopped")
}
