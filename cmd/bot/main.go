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
	"max.ks1230/expense-tracker/internal/model/dashboard"
	"max.ks1230/expense-tracker/internal/model/expenses"
	"max.ks1230/expense-tracker/internal/model/export"
	"max.ks1230/expense-tracker/internal/model/messages"
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

	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
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

	viewCache, janitor, err := app.NewCache(conf)
	if err != nil {
		logger.Fatal("failed to init cache:", zap.Error(err))
	}

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	var exportService interface {
		RequestExport(ctx context.Context, userID int64) (string, error)
	}
	if conf.Kafka().Enabled() {
		producer, err := kafka.NewProducer(conf.Kafka())
		if err != nil {
			logger.Fatal("failed to init kafka producer:", zap.Error(err))
		}
		defer producer.Close()
		exportService = producer
	} else {
		exporter, err := app.NewExporter(ctx, conf, store)
		if err != nil {
			logger.Fatal("failed to init exporter:", zap.Error(err))
		}
		exportService = export.NewDispatcher(exporter, client)
	}

	msgService := messages.NewService(
		client,
		expenses.NewService(store, viewCache),
		dashboard.NewAggregator(store, viewCache, conf.App()),
		exportService,
	)

	logger.Info("Bot init - end")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		client.ListenUpdates(ctx, msgService)
		return nil
	})
	g.Go(func() error {
		return app.ServeMetrics(ctx, conf.Metrics().Addr())
	})
	if janitor != nil {
		g.Go(func() error {
			janitor(ctx)
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
	}
}
