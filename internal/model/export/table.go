package export

import (
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

// Columns is the exported schema. Ids, owner and store timestamps never leave the store.
var Columns = []string{"icon", "amount", "category", "date", "note"}

const amountColumn = 1

type Table struct {
	Header []string
	Rows   [][]string
}

// Len counts the header row too.
func (t *Table) Len() int {
	return len(t.Rows) + 1
}

// BuildTable renders records in the given order, one row each.
func BuildTable(records []expense.Record) (*Table, error) {
	if len(records) == 0 {
		return nil, &customerr.NoDataError{}
	}

	header := make([]string, len(Columns))
	copy(header, Columns)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Icon,
			rec.Amount.String(),
			rec.Category,
			expense.FormatDate(rec.Date),
			rec.Note,
		})
	}
	return &Table{Header: header, Rows: rows}, nil
}
