package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/expense-tracker/internal/app"
	"max.ks1230/expense-tracker/internal/clients/kafka"
	"max.ks1230/expense-tracker/internal/clients/tg"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/export"
	"max.ks1230/expense-tracker/internal/tracing"
)

func main() {
	envErr := godotenv.Load()
	if err := logger.Configure(os.Getenv("LOG_ENV")); err != nil {
		logger.Fatal("failed to init logger:", zap.Error(err))
	}
	defer logger.Sync()
	if envErr != nil {
		logger.Debug("no .env loaded", zap.Error(envErr))
	}

	logger.Info("Exporter init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}
	if !conf.Kafka().Enabled() {
		logger.Fatal("exporter needs kafka brokers to consume from")
	}

	tracer, err := tracing.Init(conf.Jaeger())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer tracer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, storeCloser, err := app.NewStorage(conf)
	if err != nil {
		logger.Fatal("failed to init storage:", zap.Error(err))
	}
	defer storeCloser.Close()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	exporter, err := app.NewExporter(ctx, conf, store)
	if err != nil {
		logger.Fatal("failed to init exporter:", zap.Error(err))
	}

	consumer, err := kafka.NewConsumer(conf.Kafka(), export.NewDispatcher(exporter, client))
	if err != nil {
		logger.Fatal("failed to init kafka consumer:", zap.Error(err))
	}
	defer consumer.Close()

	logger.Info("Exporter init - end")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.StartConsuming(ctx)
	})
	g.Go(func() error {
		return app.ServeMetrics(ctx, conf.Metrics().Addr())
	})

	if err = g.Wait(); err != nil {
		logger.Error("exporter stopped with error", zap.Error(err))
	}
}
