package main

import (
	"context"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/infrastructure/metrics"
	"github.com/kotche/notekeeper/infrastructure/tracing"
	"github.com/kotche/notekeeper/internal/app/api"
	"github.com/kotche/notekeeper/internal/auth"
	"github.com/kotche/notekeeper/internal/config"
	"github.com/kotche/notekeeper/internal/database"
	noteMetrics "github.com/kotche/notekeeper/internal/metrics"
	notes_repo "github.com/kotche/notekeeper/internal/repository/notes"
	users_repo "github.com/kotche/notekeeper/internal/repository/users"
	"github.com/kotche/notekeeper/internal/service/events"
	"github.com/kotche/notekeeper/internal/service/kafka"
	notes_serv "github.com/kotche/notekeeper/internal/service/notes"
	users_serv "github.com/kotche/notekeeper/internal/service/users"
	"os/signal"
	"syscall"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}
	if err = cfg.RequireAPI(); err != nil {
		logger.Log.Fatal(err)
	}
	if err = logger.Init(cfg.LogConfig.Level, cfg.LogConfig.Format); err != nil {
		logger.Log.Fatalf("failed to init logger: %v", err)
	}

	metrics.Init()
	noteMetrics.Init()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr)

	if cfg.TracingConfig.Endpoint != "" {
		cleanup, err := tracing.Setup(cfg.TracingConfig.Endpoint, "notekeeper-api")
		if err != nil {
			logger.Log.Fatal(err)
		}
		defer cleanup()
	}

	dsn := cfg.PostgresConfig.DSN()
	if err = database.Migrate(cfg.PostgresConfig.MigrationsPath, dsn); err != nil {
		logger.Log.Fatalf("migration error: %v", err)
	}
	db, err := database.Open(dsn)
	if err != nil {
		logger.Log.Fatal(err)
	}
	defer db.Close()

	hasher, err := auth.NewHasher(cfg.AuthConfig.BcryptCost)
	if err != nil {
		logger.Log.Fatal(err)
	}
	issuer := auth.NewIssuer(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenTTL)
	usersServ := users_serv.NewDefaultService(users_repo.NewDefaultRepository(db), hasher, issuer)

	var opts []notes_serv.Option
	if cfg.KafkaConfig.Enabled {
		producer, err := kafka.NewProducer(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic, 1, 1)
		if err != nil {
			logger.Log.Fatalf("failed to initialize kafka: %v", err)
		}
		defer producer.Close()
		opts = append(opts, notes_serv.WithEventPublisher(events.NewPublisher(producer)))
	}
	notesServ := notes_serv.NewDefaultService(notes_repo.NewDefaultRepository(db), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := api.New(notesServ, usersServ, api.Options{
		RateLimitRPS:   cfg.HTTPConfig.RateLimitRPS,
		RateLimitBurst: cfg.HTTPConfig.RateLimitBurst,
		TrustedProxies: cfg.HTTPConfig.TrustedProxies,
	})
	if err != nil {
		logger.Log.Fatal(err)
	}
	if err = server.Run(ctx, cfg.HTTPConfig.Addr); err != nil {
		logger.Log.Error(err)
	}
}
