package dashboard

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

const windowDays = 30

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type DayTotal struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type RecentExpense struct {
	ID       int64           `json:"id"`
	Icon     string          `json:"icon,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note,omitempty"`
}

type Summary struct {
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	ByCategory   []CategoryTotal `json:"byCategory"`
	LastDays     decimal.Decimal `json:"lastDays"`
	Daily        []DayTotal      `json:"daily"`
	CurrentMonth decimal.Decimal `json:"currentMonth"`
	Recent       []RecentExpense `json:"recent"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Build aggregates records sorted newest first, as the store lists them.
// The daily window covers today and the previous 29 days.
func Build(records []expense.Record, at time.Time, recent int) *Summary {
	today := expense.Day(at)
	windowStart := today.AddDate(0, 0, -(windowDays - 1))
	month := now.With(today)
	monthStart, monthEnd := month.BeginningOfMonth(), month.EndOfMonth()

	res := &Summary{
		Total:        decimal.Zero,
		Count:        len(records),
		ByCategory:   make([]CategoryTotal, 0),
		LastDays:     decimal.Zero,
		Daily:        make([]DayTotal, 0),
		CurrentMonth: decimal.Zero,
		Recent:       make([]RecentExpense, 0),
		GeneratedAt:  at.UTC(),
	}

	byCategory := make(map[string]decimal.Decimal)
	daily := make(map[string]decimal.Decimal)
	for _, rec := range records {
		res.Total = res.Total.Add(rec.Amount)
		byCategory[rec.Category] = byCategory[rec.Category].Add(rec.Amount)

		date := expense.Day(rec.Date)
		if !date.Before(windowStart) && !date.After(today) {
			res.LastDays = res.LastDays.Add(rec.Amount)
			day := expense.FormatDate(date)
			daily[day] = daily[day].Add(rec.Amount)
		}
		if !date.Before(monthStart) && !date.After(monthEnd) {
			res.CurrentMonth = res.CurrentMonth.Add(rec.Amount)
		}
	}

	for category, amount := range byCategory {
		res.ByCategory = append(res.ByCategory, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(res.ByCategory, func(i, j int) bool {
		a, b := res.ByCategory[i], res.ByCategory[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})

	for day, amount := range daily {
		res.Daily = append(res.Daily, DayTotal{Date: day, Amount: amount})
	}
	sort.Slice(res.Daily, func(i, j int) bool {
		return res.Daily[i].Date < res.Daily[j].Date
	})

	for i := 0; i < len(records) && i < recent; i++ {
		rec := records[i]
		res.Recent = append(res.Recent, RecentExpense{
			ID:       rec.ID,
			Icon:     rec.Icon,
			Amount:   rec.Amount,
			Category: rec.Category,
			Date:     expense.FormatDate(rec.Date),
			Note:     rec.Note,
		})
	}
	return res
}
