package storage

import (
	"fmt"
	"time"

	"max.ks1230/expense-tracker/internal/entity/expense"
)

// Drivers disagree on how DATE and timestamp columns come back:
// lib/pq returns time.Time, sqlite returns text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	expense.DateLayout,
}

type dateScanner struct {
	dst *time.Time
}

func (s dateScanner) Scan(src interface{}) error {
	var t time.Time
	if err := (timeScanner{&t}).Scan(src); err != nil {
		return err
	}
	*s.dst = expense.Day(t)
	return nil
}

type timeScanner struct {
	dst *time.Time
}

func (s timeScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.dst = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into time", src)
	}
}

func (s timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", v)
}
