package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/clients/cache"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

type countingLister struct {
	records []expense.Record
	calls   int
	err     error
}

func (l *countingLister) ListExpenses(_ context.Context, _ int64) ([]expense.Record, error) {
	l.calls++
	return l.records, l.err
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Generation(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func (brokenCache) SetIfGeneration(context.Context, string, string, []byte, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

// gatedLister signals listed after reading and then waits for release.
type gatedLister struct {
	mu      sync.Mutex
	records []expense.Record
	gate    bool
	listed  chan struct{}
	release chan struct{}
}

func (l *gatedLister) ListExpenses(_ context.Context, _ int64) ([]expense.Record, error) {
	l.mu.Lock()
	records := append([]expense.Record(nil), l.records...)
	gate := l.gate
	l.gate = false
	l.mu.Unlock()

	if gate {
		l.listed <- struct{}{}
		<-l.release
	}
	return records, nil
}

func (l *gatedLister) add(r expense.Record) {
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
}

type testConfig struct{}

func (testConfig) DashboardTTL() time.Duration { return time.Minute }
func (testConfig) RecentExpenses() int          { return 3 }

func newTestAggregator(lister expenseLister, c viewCache) *Aggregator {
	a := NewAggregator(lister, c, testConfig{})
	a.now = func() time.Time { return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC) }
	return a
}

func Test_OnRepeatedSummary_ShouldServeFromCache(t *testing.T) {
	lister := &countingLister{records: []expense.Record{record(1, "food", "10", "2024-01-15")}}
	a := newTestAggregator(lister, cache.NewMemory())
	ctx := context.Background()

	first, err := a.Summary(ctx, 1)
	require.NoError(t, err)
	second, err := a.Summary(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.Count, second.Count)
	require.Len(t, second.Recent, 1)
	assert.Equal(t, "2024-01-15", second.Recent[0].Date)
}

func Test_OnNamespaceInvalidated_ShouldRecompute(t *testing.T) {
	lister := &countingLister{records: []expense.Record{record(1, "food", "10", "2024-01-15")}}
	c := cache.NewMemory()
	a := newTestAggregator(lister, c)
	ctx := context.Background()

	_, err := a.Summary(ctx, 1)
	require.NoError(t, err)

	lister.records = append(lister.records, record(2, "taxi", "5", "2024-01-16"))
	require.NoError(t, c.InvalidateByPrefix(ctx, Namespace))

	res, err := a.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, "15", res.Total.String())
}

func Test_OnCacheFailure_ShouldComputeAnyway(t *testing.T) {
	lister := &countingLister{records: []expense.Record{record(1, "food", "10", "2024-01-15")}}
	a := newTestAggregator(lister, brokenCache{})

	res, err := a.Summary(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "10", res.Total.String())
}

func Test_OnCorruptEntry_ShouldTreatAsMiss(t *testing.T) {
	lister := &countingLister{records: []expense.Record{record(1, "food", "10", "2024-01-15")}}
	c := cache.NewMemory()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, SummaryKey(1), []byte("{not json"), time.Minute))
	a := newTestAggregator(lister, c)

	res, err := a.Summary(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, 1, res.Count)
}

func Test_OnListFailure_ShouldReturnError(t *testing.T) {
	lister := &countingLister{err: errors.New("db is down")}
	a := newTestAggregator(lister, cache.NewMemory())

	_, err := a.Summary(context.Background(), 1)

	assert.Error(t, err)
}

func Test_SummaryKey_ShouldBelongToNamespace(t *testing.T) {
	assert.Equal(t, "dashboard:42:summary", SummaryKey(42))
	assert.True(t, cache.InNamespace(SummaryKey(42), Namespace))
}

func Test_OnInvalidationDuringCompute_ShouldNotCacheStaleSummary(t *testing.T) {
	lister := &gatedLister{
		records: []expense.Record{record(1, "food", "10", "2024-01-15")},
		gate:    true,
		listed:  make(chan struct{}),
		release: make(chan struct{}),
	}
	c := cache.NewMemory()
	a := newTestAggregator(lister, c)
	ctx := context.Background()

	done := make(chan *Summary)
	go func() {
		res, err := a.Summary(ctx, 1)
		assert.NoError(t, err)
		done <- res
	}()

	<-lister.listed
	lister.add(record(2, "taxi", "20", "2024-01-16"))
	require.NoError(t, c.InvalidateByPrefix(ctx, Namespace))
	close(lister.release)

	stale := <-done
	assert.Equal(t, "10", stale.Total.String())

	res, err := a.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "30", res.Total.String())
	assert.Equal(t, 2, res.Count)
}
