package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"avviso/internal/activation"
	"avviso/internal/dispatch"
	dispatchmetrics "avviso/internal/dispatch/metrics"
	"avviso/internal/emailnotify"
	jwttoken "avviso/internal/jwt_token"
	"avviso/internal/message"
	"avviso/internal/permission"
	permissionmetrics "avviso/internal/permission/metrics"
	"avviso/internal/platform/config"
	"avviso/internal/platform/httpserver"
	"avviso/internal/platform/kafka"
	"avviso/internal/platform/logger"
	platformmetrics "avviso/internal/platform/metrics"
	"avviso/internal/platform/middleware"
	"avviso/internal/platform/redis"
	"avviso/internal/preference"
	"avviso/internal/profile"
	"avviso/internal/services"
	"avviso/pkg/platform/httputil"
)

const dedupTTL = 48 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "avviso: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	if cfg.Kafka.BootstrapTopics {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka, cfg.Kafka.CreatedTopic, cfg.Kafka.EmailTopic); err != nil {
			return err
		}
	}

	profiles := profile.NewPostgresStore(db)
	preferences := preference.NewPostgresStore(db)
	activations := activation.NewPostgresStore(db)
	messages := message.NewPostgresStore(db)

	contents, err := message.NewS3ContentStore(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("init content store: %w", err)
	}

	engine := permission.NewEngine(
		profiles, preferences, activations,
		cfg.OptOutEmailCutover, cfg.OptInEmailEnabled,
		permissionmetrics.New(),
	)
	activity := dispatch.NewActivity(engine, contents, messages, log)

	dispatchClient, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.DispatchGroup, cfg.Kafka.CreatedTopic)
	if err != nil {
		return err
	}
	defer dispatchClient.Close()

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return err
	}
	defer producer.Close()

	dispatcher := dispatch.NewConsumer(
		dispatchClient, producer, activity,
		dispatch.NewRedisDeduper(redisClient, dedupTTL),
		cfg.Kafka.EmailTopic, log, dispatchmetrics.New(),
	)

	emailClient, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.EmailGroup, cfg.Kafka.EmailTopic)
	if err != nil {
		return err
	}
	defer emailClient.Close()

	emailConsumer := emailnotify.NewConsumer(
		emailClient,
		emailnotify.NewActivity(emailnotify.NewSMTPMailer(cfg.Email), cfg.Email.From, log),
		log,
	)

	router := newRouter(cfg, db, redisClient, log)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting avviso", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error { return dispatcher.Run(ctx) })
	g.Go(func() error { return emailConsumer.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newRouter(cfg config.Config, db *sql.DB, redisClient *redis.Client, log *slog.Logger) *chi.Mux {
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "avviso", "avviso-api")
	handler := services.NewHandler(services.NewClient(cfg.AdminAPI), log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(platformmetrics.New()))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := redisClient.Health(req.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/services", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log))
		r.With(middleware.RequireGroup(middleware.GroupServiceRead, log)).
			Get("/{serviceID}", handler.GetService)
		r.With(middleware.RequireGroup(middleware.GroupServiceWrite, log)).
			Put("/{serviceID}/logo", handler.UploadLogo)
	})

	return r
}
