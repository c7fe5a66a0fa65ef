package expense

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

const DateLayout = "2006-01-02"

// Record is a persisted expense. ID, Owner and the timestamps are managed by the store.
type Record struct {
	ID        int64
	Owner     int64
	Icon      string
	Amount    decimal.Decimal
	Category  string
	Date      time.Time
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields are the mutable part of a Record. Updates replace all of them.
type Fields struct {
	Icon     string
	Amount   decimal.Decimal
	Category string
	Date     time.Time
	Note     string
}

// Payload is an unparsed create/update request as it comes from a transport.
type Payload struct {
	Icon     string
	Amount   string
	Category string
	Date     string
	Note     string
}

func (r Record) Fields() Fields {
	return Fields{
		Icon:     r.Icon,
		Amount:   r.Amount,
		Category: r.Category,
		Date:     r.Date,
		Note:     r.Note,
	}
}

// Apply replaces the mutable fields of r; id and owner are untouched.
func (f Fields) Apply(r Record) Record {
	r.Icon = f.Icon
	r.Amount = f.Amount
	r.Category = f.Category
	r.Date = f.Date
	r.Note = f.Note
	return r
}

func (f Fields) Validate() error {
	if !f.Amount.IsPositive() {
		return &customerr.ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &customerr.ValidationError{Field: "category", Reason: "is required"}
	}
	if f.Date.IsZero() {
		return &customerr.ValidationError{Field: "date", Reason: "is required"}
	}
	return nil
}

// Parse validates the payload and converts it to Fields.
func (p Payload) Parse() (Fields, error) {
	rawAmount := strings.TrimSpace(p.Amount)
	if rawAmount == "" {
		return Fields{}, &customerr.ValidationError{Field: "amount", Reason: "is required"}
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", "."))
	if err != nil {
		return Fields{}, &customerr.ValidationError{Field: "amount", Reason: "is not a number"}
	}

	rawDate := strings.TrimSpace(p.Date)
	if rawDate == "" {
		return Fields{}, &customerr.ValidationError{Field: "date", Reason: "is required"}
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return Fields{}, &customerr.ValidationError{Field: "date", Reason: "should be YYYY-MM-DD"}
	}

	f := Fields{
		Icon:     strings.TrimSpace(p.Icon),
		Amount:   amount,
		Category: strings.TrimSpace(p.Category),
		Date:     date,
		Note:     strings.TrimSpace(p.Note),
	}
	if err = f.Validate(); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return Day(t), nil
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
