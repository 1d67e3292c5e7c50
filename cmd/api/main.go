package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/harentsoaR/doctors-portal-api/internal/auth"
	"github.com/harentsoaR/doctors-portal-api/internal/cache"
	"github.com/harentsoaR/doctors-portal-api/internal/config"
	"github.com/harentsoaR/doctors-portal-api/internal/db"
	"github.com/harentsoaR/doctors-portal-api/internal/handlers"
	"github.com/harentsoaR/doctors-portal-api/internal/observability"
	"github.com/harentsoaR/doctors-portal-api/internal/services"
	"github.com/harentsoaR/doctors-portal-api/internal/storage"
	"github.com/harentsoaR/doctors-portal-api/internal/store"
)

const serviceName = "doctors-portal-api"

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// The store must be reachable before we listen.
	client, err := db.Connect(ctx, log, db.ConnectOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := client.Close(cctx); err != nil {
			log.Warn("closing mongo", "err", err)
		}
	}()

	users := store.NewUsersStore(client, prom)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	appointments := store.NewAppointmentsStore(client, prom)

	var doctors handlers.DoctorStore = store.NewDoctorsStore(client, prom)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		doctors = cache.NewCachedDoctors(doctors, rdb, cfg.DoctorsCacheTTL, log)
		log.Info("doctors cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.DoctorsCacheTTL)
	}

	var images storage.ImageStore
	if cfg.MinioEndpoint != "" {
		m, err := storage.NewMinioImages(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		}, log)
		if err != nil {
			return err
		}
		images = m
		log.Info("doctor image mirror enabled", "endpoint", cfg.MinioEndpoint, "bucket", cfg.MinioBucket)
	}

	tokens, err := auth.NewTokenVerifier(cfg, log)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}

	if cfg.StripeSecret == "" {
		log.Warn("STRIPE_SECRET is not set, payment intents will be refused")
	}
	payments := services.NewPaymentService(cfg.StripeSecret, cfg.StripeCurrency, log, prom).WithBaseURL(cfg.StripeAPIBase)

	notifier := services.NewNotificationService(cfg.TextbeltAPIKey, log)
	defer notifier.Wait()

	h := handlers.NewHandler(handlers.Deps{
		Users:        users,
		Appointments: appointments,
		Doctors:      doctors,
		Gate:         services.NewRoleGate(users, log),
		Payments:     payments,
		Notifier:     notifier,
		Images:       images,
		Prom:         prom,
		Log:          log,
	})

	router := handlers.NewRouter(h, handlers.RouterOptions{
		Env:         cfg.Env,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Verifier:    auth.NewCredentialVerifier(tokens),
		Ping:        client.Ping,
		Prom:        prom,
		Gatherer:    reg,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
