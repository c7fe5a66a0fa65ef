package expenses

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/dashboard"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

type expenseStorage interface {
	CreateExpense(ctx context.Context, owner int64, f expense.Fields) (expense.Record, error)
	ListExpenses(ctx context.Context, owner int64) ([]expense.Record, error)
	UpdateExpense(ctx context.Context, owner, id int64, f expense.Fields) (expense.Record, error)
	DeleteExpense(ctx context.Context, owner, id int64) error
}

type cacheInvalidator interface {
	InvalidateByPrefix(ctx context.Context, namespace string) error
}

// Service applies expense mutations and keeps the cached views coherent:
// every successful write is followed by invalidation of the dashboard namespace
// before the result is returned.
type Service struct {
	storage expenseStorage
	cache   cacheInvalidator
}

func NewService(storage expenseStorage, cache cacheInvalidator) *Service {
	return &Service{
		storage: storage,
		cache:   cache,
	}
}

func (s *Service) Create(ctx context.Context, owner int64, p expense.Payload) (expense.Record, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "createExpense")
	defer span.Finish()

	f, err := p.Parse()
	if err != nil {
		return expense.Record{}, s.fail(span, opCreate, err)
	}
	rec, err := s.storage.CreateExpense(ctx, owner, f)
	if err != nil {
		return expense.Record{}, s.fail(span, opCreate, errors.Wrap(err, "create expense"))
	}

	s.invalidate(ctx, opCreate, owner)
	countMutation(opCreate, nil)
	return rec, nil
}

func (s *Service) List(ctx context.Context, owner int64) ([]expense.Record, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "listExpenses")
	defer span.Finish()

	res, err := s.storage.ListExpenses(ctx, owner)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, errors.Wrap(err, "list expenses")
	}
	return res, nil
}

func (s *Service) Update(ctx context.Context, owner, id int64, p expense.Payload) (expense.Record, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateExpense")
	defer span.Finish()

	f, err := p.Parse()
	if err != nil {
		return expense.Record{}, s.fail(span, opUpdate, err)
	}
	rec, err := s.storage.UpdateExpense(ctx, owner, id, f)
	if err != nil {
		return expense.Record{}, s.fail(span, opUpdate, storeError(err, "update expense"))
	}

	s.invalidate(ctx, opUpdate, owner)
	countMutation(opUpdate, nil)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, owner, id int64) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteExpense")
	defer span.Finish()

	if err := s.storage.DeleteExpense(ctx, owner, id); err != nil {
		return s.fail(span, opDelete, storeError(err, "delete expense"))
	}

	s.invalidate(ctx, opDelete, owner)
	countMutation(opDelete, nil)
	return nil
}

// invalidate never fails the mutation: the write is already committed.
// Failures are logged and counted once, without retry.
func (s *Service) invalidate(ctx context.Context, op string, owner int64) {
	err := s.cache.InvalidateByPrefix(ctx, dashboard.Namespace)
	if err == nil {
		return
	}
	countInvalidationFailure(dashboard.Namespace)
	logger.Error("cache invalidation failed",
		zap.String("operation", op),
		zap.String("namespace", dashboard.Namespace),
		zap.Int64("userID", owner),
		zap.Error(err))
}

// storeError passes not-found errors through as is and wraps the rest.
func storeError(err error, msg string) error {
	if customerr.IsNotFound(err) {
		return err
	}
	return errors.Wrap(err, msg)
}

func (s *Service) fail(span opentracing.Span, op string, err error) error {
	ext.Error.Set(span, true)
	countMutation(op, err)
	return err
}
