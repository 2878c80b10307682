// Command event-portal serves the campus event registration API.
//
//	event-portal                       run the server
//	event-portal hash-password <pw>    print a bcrypt hash for admin_password_hash
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/auth"
	"github.com/Shivanand-hulikatti/event-portal/internal/config"
	"github.com/Shivanand-hulikatti/event-portal/internal/handler"
	"github.com/Shivanand-hulikatti/event-portal/internal/logger"
	"github.com/Shivanand-hulikatti/event-portal/internal/notifier"
	"github.com/Shivanand-hulikatti/event-portal/internal/service"
	"github.com/Shivanand-hulikatti/event-portal/internal/storage"
	"github.com/Shivanand-hulikatti/event-portal/internal/telemetry"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName       = "event-portal"
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := hashPassword(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("event-portal stopped", "error", err)
		os.Exit(1)
	}
}

func hashPassword(args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: event-portal hash-password <password>")
	}
	hash, err := auth.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func run(ctx context.Context) error {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log, err := logger.Init(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTelEndpoint, serviceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info("store ready", "driver", cfg.DatabaseDriver)

	images, err := storage.NewFileStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = rand.Text()
		log.Warn("jwt_secret not set; using a random secret, admin sessions end on restart")
	}
	authn, err := auth.New(cfg.AdminEmail, cfg.AdminPasswordHash, secret, cfg.SessionTTL())
	if err != nil {
		return fmt.Errorf("configure admin auth: %w", err)
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		log.Warn("admin credentials not configured; admin routes are unreachable")
	}

	metrics := telemetry.NewMetrics()
	opts := []service.RegistrationOption{
		service.WithTokenSequencer(st.sequencer),
		service.WithMetrics(metrics),
		service.WithLogger(log),
		service.WithDefaultTeamSize(cfg.DefaultTeamSize),
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		discord, err := notifier.NewDiscordBot(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			return fmt.Errorf("configure discord notifier: %w", err)
		}
		opts = append(opts, service.WithNotifier(discord))
		log.Info("discord notifications enabled", "channel_id", cfg.DiscordChannelID)
	}

	registrations := service.NewRegistrationService(st.events, st.students, st.regs, opts...)
	router := handler.NewRouter(handler.Deps{
		Registrations: registrations,
		Students:      service.NewStudentService(st.students),
		Events:        service.NewEventService(st.events, st.regs, images, cfg.DefaultTeamSize),
		Status:        service.NewStatusService(st.status, cfg.StatusCacheTTL()),
		Auth:          authn,
		Metrics:       metrics,
		Log:           log,
		UploadDir:     images.Root(),
		CORSOrigin:    cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	serveErr := g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := registrations.Wait(drainCtx); err != nil {
		log.Warn("pending notifications abandoned", "error", err)
	}
	if serveErr != nil {
		return serveErr
	}
	log.Info("server stopped")
	return nil
}
