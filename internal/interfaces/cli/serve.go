package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	appPrediction "github.com/Allllisha/AI-Tender-Prediction/internal/application/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres/repositories"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/redis"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/messaging/kafka"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	"github.com/Allllisha/AI-Tender-Prediction/internal/intelligence/annotator"
	httpserver "github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/handlers"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/middleware"
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close()

	tenderRepo := repositories.NewPostgresTenderRepo(conn, log)
	awardRepo := repositories.NewPostgresAwardRepo(conn, log)
	accountRepo := repositories.NewPostgresAccountRepo(conn, log)

	checks := map[string]handlers.DependencyCheck{
		"postgres": conn.HealthCheck,
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "bidintel",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return fmt.Errorf("building metrics collector: %w", err)
	}
	appMetrics := prometheus.NewAppMetrics(collector)
	conn.AttachMetrics(appMetrics)

	// Redis is optional; without it company profiles are recomputed per
	// request.
	var cache redis.Cache
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()
		opts := []redis.CacheOption{redis.WithMetrics(appMetrics)}
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Redis.DefaultTTL > 0 {
			opts = append(opts, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		}
		cache = redis.NewRedisCache(client, log, opts...)
		checks["redis"] = client.Ping
	}

	// Kafka is optional; without it prediction events are not published.
	var events appPrediction.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka, appMetrics, log)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer producer.Close()
		events = producer
	}

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return fmt.Errorf("building token manager: %w", err)
	}

	ann := annotator.NewDisabled()
	if cfg.Annotator.Enabled() {
		ann = annotator.New(cfg.Annotator, log)
		log.Info("LLM annotator enabled", logging.String("deployment", cfg.Annotator.Deployment))
	}

	profiles := appCompany.NewProfileService(awardRepo, cache, cfg.Prediction, log)
	authService := appCompany.NewAuthService(accountRepo, tokens, log)
	retriever := appPrediction.NewRetriever(awardRepo, log)
	predictions := appPrediction.NewService(tenderRepo, retriever, profiles, ann, events, appMetrics, log, cfg.Prediction)

	server := httpserver.NewServer(cfg.Server, httpserver.RouterConfig{
		AuthHandler:       handlers.NewAuthHandler(authService, appMetrics, log),
		TenderHandler:     handlers.NewTenderHandler(tenderRepo, log),
		PredictionHandler: handlers.NewPredictionHandler(predictions, log),
		CompanyHandler:    handlers.NewCompanyHandler(profiles, log),
		HealthHandler:     handlers.NewHealthHandler(checks, appMetrics, log),
		AuthMiddleware:    middleware.NewAuthMiddleware(tokens, log),
		Logger:            log,
		Metrics:           appMetrics,
		MetricsHandler:    collector.Handler(),
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("Signal received, shutting down", logging.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}

	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return <-errCh
}
