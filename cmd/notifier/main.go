package main

import (
	"context"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/infrastructure/metrics"
	"github.com/kotche/notekeeper/internal/app/notifier"
	"github.com/kotche/notekeeper/internal/config"
	noteMetrics "github.com/kotche/notekeeper/internal/metrics"
	"github.com/kotche/notekeeper/internal/service/kafka"
	"gopkg.in/telebot.v3"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("failed to load configuration: %v", err)
	}
	if err = cfg.RequireNotifier(); err != nil {
		logger.Log.Fatal(err)
	}
	if err = logger.Init(cfg.LogConfig.Level, cfg.LogConfig.Format); err != nil {
		logger.Log.Fatalf("failed to init logger: %v", err)
	}

	noteMetrics.Init()
	metrics.StartMetricsServer(cfg.MetricsConfig.Addr)

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramConfig.TokenNotifyBot,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Log.Fatal(err)
	}

	consumer := kafka.NewConsumer(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.Topic, cfg.KafkaConfig.GroupID)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifierImpl := notifier.New(bot, consumer, cfg.TelegramConfig.AdminChatID)
	if err = notifierImpl.Run(ctx); err != nil {
		logger.Log.Error(err)
	}
}
