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
	"github.com/Skotchmaster/rent_system/pkg/es"
	"github.com/Skotchmaster/rent_system/pkg/events"
	"github.com/Skotchmaster/rent_system/pkg/logging"
	loggingmw "github.com/Skotchmaster/rent_system/pkg/middleware/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/pkg/validate"

	rentalcfg "github.com/Skotchmaster/rent_system/services/rental/internal/config"
	"github.com/Skotchmaster/rent_system/services/rental/internal/httpserver"
	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
	"github.com/Skotchmaster/rent_system/services/rental/internal/repo"
	"github.com/Skotchmaster/rent_system/services/rental/internal/search"
	"github.com/Skotchmaster/rent_system/services/rental/internal/service"
)

func main() {
	cfg := rentalcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	// postgres schema is owned by cmd/migrate; sqlite is for local runs only.
	if cfg.DatabaseDriver == pkgdb.DriverSQLite {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
	}

	publisher := events.New(cfg.KafkaBrokers)

	rp := &repo.GormRepo{DB: db}
	props := &service.PropertyService{Repo: rp}
	if cfg.SearchEnabled && cfg.Elastic.URL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(esCtx, cfg.Elastic)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "reason", "using sql search", "error", err)
		} else {
			props.Search = &search.ESIndex{ES: client, Index: cfg.Elastic.Index}
		}
	}

	issuer := &tokens.Issuer{
		Secret:   cfg.JWT.SecretBytes(),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.ContextTimeout(cfg.RequestTimeout))

	httpserver.Register(e, &httpserver.Deps{
		Bookings:   &httpserver.BookingHTTP{Svc: service.NewBookingService(rp, publisher)},
		Properties: &httpserver.PropertyHTTP{Svc: props},
		Reviews:    &httpserver.ReviewHTTP{Svc: &service.ReviewService{Repo: rp}},
		Verifier:   issuer,
		DB:         db,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("rental listening", "addr", srv.Addr)
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

	logger.Info("rental stopped")
}
