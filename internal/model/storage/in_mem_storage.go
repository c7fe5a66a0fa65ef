package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

type InMemStorage struct {
	mu      sync.RWMutex
	lastID  int64
	records map[int64]expense.Record
	now     func() time.Time
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		records: make(map[int64]expense.Record),
		now:     time.Now,
	}
}

func (s *InMemStorage) CreateExpense(_ context.Context, owner int64, f expense.Fields) (expense.Record, error) {
	if err := f.Validate(); err != nil {
		return expense.Record{}, err
	}
	f.Date = expense.Day(f.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	now := s.now().UTC()
	rec := f.Apply(expense.Record{
		ID:        s.lastID,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *InMemStorage) ListExpenses(_ context.Context, owner int64) ([]expense.Record, error) {
	s.mu.RLock()
	res := make([]expense.Record, 0)
	for _, rec := range s.records {
		if rec.Owner == owner {
			res = append(res, rec)
		}
	}
	s.mu.RUnlock()

	sortByDateDesc(res)
	return res, nil
}

func (s *InMemStorage) UpdateExpense(_ context.Context, owner, id int64, f expense.Fields) (expense.Record, error) {
	if err := f.Validate(); err != nil {
		return expense.Record{}, err
	}
	f.Date = expense.Day(f.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Owner != owner {
		return expense.Record{}, &customerr.NotFoundError{ID: id}
	}
	rec = f.Apply(rec)
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	return rec, nil
}

func (s *InMemStorage) DeleteExpense(_ context.Context, owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.Owner != owner {
		return &customerr.NotFoundError{ID: id}
	}
	delete(s.records, id)
	return nil
}

// sortByDateDesc orders by date, newest first; equal dates keep insertion (id) order.
func sortByDateDesc(records []expense.Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].ID < records[j].ID
	})
}
