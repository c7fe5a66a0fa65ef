package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
)

// Namespace groups every cached dashboard view. Mutations invalidate it as a whole.
const Namespace = "dashboard"

type expenseLister interface {
	ListExpenses(ctx context.Context, owner int64) ([]expense.Record, error)
}

type viewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Generation(ctx context.Context, namespace string) (string, error)
	SetIfGeneration(ctx context.Context, key, generation string, value []byte, ttl time.Duration) (bool, error)
}

type config interface {
	DashboardTTL() time.Duration
	RecentExpenses() int
}

type Aggregator struct {
	lister expenseLister
	cache  viewCache
	ttl    time.Duration
	recent int
	now    func() time.Time
}

func NewAggregator(lister expenseLister, cache viewCache, config config) *Aggregator {
	return &Aggregator{
		lister: lister,
		cache:  cache,
		ttl:    config.DashboardTTL(),
		recent: config.RecentExpenses(),
		now:    time.Now,
	}
}

func SummaryKey(owner int64) string {
	return cache.Key(Namespace, strconv.FormatInt(owner, 10), "summary")
}

// Summary serves the owner's dashboard from cache, computing and storing it on a miss.
// Cache failures degrade to a recomputation. A summary is stored only if no
// invalidation happened since its records were read.
func (a *Aggregator) Summary(ctx context.Context, owner int64) (*Summary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "dashboardSummary")
	defer span.Finish()

	key := SummaryKey(owner)
	if res, ok := a.cached(ctx, key); ok {
		countLookup(true)
		return res, nil
	}
	countLookup(false)

	generation, genErr := a.cache.Generation(ctx, Namespace)
	if genErr != nil {
		logger.Warn("cannot read dashboard generation", zap.Error(genErr))
	}

	records, err := a.lister.ListExpenses(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "dashboard summary")
	}
	res := Build(records, a.now(), a.recent)

	data, err := json.Marshal(res)
	if err != nil {
		logger.Warn("cannot encode dashboard", zap.Int64("userID", owner), zap.Error(err))
		return res, nil
	}
	if genErr != nil {
		return res, nil
	}
	stored, err := a.cache.SetIfGeneration(ctx, key, generation, data, a.ttl)
	if err != nil {
		logger.Warn("cannot cache dashboard", zap.Int64("userID", owner), zap.Error(err))
	} else if !stored {
		logger.Debug("dashboard invalidated while computing, not cached", zap.Int64("userID", owner))
	}
	return res, nil
}

func (a *Aggregator) cached(ctx context.Context, key string) (*Summary, bool) {
	data, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("dashboard cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Summary
	if err = json.Unmarshal(data, &res); err != nil {
		logger.Warn("dropping undecodable dashboard entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}
