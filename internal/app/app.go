package app

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/clients/gsheets"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/export"
	"max.ks1230/expense-tracker/internal/model/storage"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 5 * time.Second
)

type Storage interface {
	CreateExpense(ctx context.Context, owner int64, f expense.Fields) (expense.Record, error)
	ListExpenses(ctx context.Context, owner int64) ([]expense.Record, error)
	UpdateExpense(ctx context.Context, owner, id int64, f expense.Fields) (expense.Record, error)
	DeleteExpense(ctx context.Context, owner, id int64) error
}

type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Generation(ctx context.Context, namespace string) (string, error)
	SetIfGeneration(ctx context.Context, key, generation string, value []byte, ttl time.Duration) (bool, error)
	InvalidateByPrefix(ctx context.Context, namespace string) error
}

// NewStorage opens the configured backend. The returned closer is never nil.
func NewStorage(conf *config.Service) (Storage, io.Closer, error) {
	switch conf.App().Storage() {
	case config.StoragePostgres:
		s, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			return nil, nil, errors.Wrap(err, "init postgres")
		}
		return s, s, nil
	case config.StorageSQLite:
		s, err := storage.NewSQLiteStorage(conf.SQLite())
		if err != nil {
			return nil, nil, errors.Wrap(err, "init sqlite")
		}
		return s, s, nil
	default:
		return storage.NewInMemStorage(), nopCloser{}, nil
	}
}

// NewCache returns the configured cache and, for the in-process one, its janitor.
func NewCache(conf *config.Service) (ViewCache, func(ctx context.Context), error) {
	switch conf.App().Cache() {
	case config.CacheMemcached:
		mc, err := cache.NewMemcache(conf.Memcached())
		if err != nil {
			return nil, nil, errors.Wrap(err, "init memcached")
		}
		return mc, nil, nil
	default:
		m := cache.NewMemory()
		return m, func(ctx context.Context) { m.Run(ctx, janitorInterval) }, nil
	}
}

func NewExporter(ctx context.Context, conf *config.Service, store Storage) (*export.Exporter, error) {
	encoder, err := export.NewEncoder(conf.App().ExportFormat())
	if err != nil {
		return nil, err
	}

	sinks := []export.Sink{export.NewFileSink(conf.App().ExportDir())}
	if conf.GoogleSheets().Enabled() {
		sheets, err := gsheets.New(ctx, conf.GoogleSheets())
		if err != nil {
			return nil, errors.Wrap(err, "init google sheets")
		}
		sinks = append(sinks, sheets)
	}
	return export.NewExporter(store, encoder, sinks...), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ServeMetrics exposes prometheus metrics until ctx is done.
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown", zap.Error(err))
		}
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve metrics")
	}
	return nil
}
