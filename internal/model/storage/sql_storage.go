package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

const expensesTable = "expenses"

var expenseColumns = []string{
	"id", "user_id", "icon", "amount", "category", "date", "note", "created_at", "updated_at",
}

var returningExpense = "RETURNING " + strings.Join(expenseColumns, ", ")

// sqlStorage holds the queries shared by the postgres and sqlite stores.
type sqlStorage struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}

func (s *sqlStorage) CreateExpense(ctx context.Context, owner int64, f expense.Fields) (expense.Record, error) {
	if err := f.Validate(); err != nil {
		return expense.Record{}, err
	}
	now := s.timestamp()

	query := s.builder.Insert(expensesTable).
		Columns("user_id", "icon", "amount", "category", "date", "note", "created_at", "updated_at").
		Values(owner, f.Icon, f.Amount, f.Category, expense.FormatDate(f.Date), f.Note, now, now).
		Suffix(returningExpense)

	rec, err := scanRecord(query.RunWith(s.db).QueryRowContext(ctx))
	if err != nil {
		return expense.Record{}, unavailable("create expense", err)
	}
	return rec, nil
}

func (s *sqlStorage) ListExpenses(ctx context.Context, owner int64) ([]expense.Record, error) {
	query := s.builder.Select(expenseColumns...).
		From(expensesTable).
		Where(sq.Eq{"user_id": owner}).
		OrderBy("date DESC", "id ASC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, unavailable("list expenses", err)
	}
	defer func() {
		rowErr := rows.Close()
		if rowErr != nil {
			logger.Error("error closing rows", zap.Error(rowErr))
		}
	}()

	res := make([]expense.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("list expenses", err)
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, unavailable("list expenses", err)
	}
	return res, nil
}

func (s *sqlStorage) UpdateExpense(ctx context.Context, owner, id int64, f expense.Fields) (expense.Record, error) {
	if err := f.Validate(); err != nil {
		return expense.Record{}, err
	}

	query := s.builder.Update(expensesTable).
		SetMap(map[string]interface{}{
			"icon":       f.Icon,
			"amount":     f.Amount,
			"category":   f.Category,
			"date":       expense.FormatDate(f.Date),
			"note":       f.Note,
			"updated_at": s.timestamp(),
		}).
		Where(sq.Eq{"id": id, "user_id": owner}).
		Suffix(returningExpense)

	rec, err := scanRecord(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return expense.Record{}, &customerr.NotFoundError{ID: id}
	}
	if err != nil {
		return expense.Record{}, unavailable("update expense", err)
	}
	return rec, nil
}

func (s *sqlStorage) DeleteExpense(ctx context.Context, owner, id int64) error {
	query := s.builder.Delete(expensesTable).
		Where(sq.Eq{"id": id, "user_id": owner})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return unavailable("delete expense", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete expense", err)
	}
	if affected == 0 {
		return &customerr.NotFoundError{ID: id}
	}
	return nil
}

func (s *sqlStorage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func scanRecord(row sq.RowScanner) (expense.Record, error) {
	var rec expense.Record
	err := row.Scan(
		&rec.ID,
		&rec.Owner,
		&rec.Icon,
		&rec.Amount,
		&rec.Category,
		dateScanner{&rec.Date},
		&rec.Note,
		timeScanner{&rec.CreatedAt},
		timeScanner{&rec.UpdatedAt},
	)
	return rec, err
}

func unavailable(op string, err error) error {
	return &customerr.StoreUnavailableError{Op: op, Err: err}
}
