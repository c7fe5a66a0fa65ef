package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	SheetName = "Expenses"

	defaultSheet = "Sheet1"
	creator      = "expense-tracker"
)

type Encoder interface {
	Encode(table *Table, generatedAt time.Time) ([]byte, error)
	Extension() string
	ContentType() string
}

func NewEncoder(format string) (Encoder, error) {
	switch format {
	case FormatXLSX, "":
		return XLSXEncoder{}, nil
	case FormatCSV:
		return CSVEncoder{}, nil
	default:
		return nil, errors.Errorf("unknown export format %q", format)
	}
}

// XLSXEncoder writes a single "Expenses" sheet. The generation time goes to the
// document properties only, rows depend on the table alone.
type XLSXEncoder struct{}

func (XLSXEncoder) Extension() string {
	return FormatXLSX
}

func (XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXEncoder) Encode(table *Table, generatedAt time.Time) (data []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close workbook")
		}
	}()

	if err = f.SetSheetName(defaultSheet, SheetName); err != nil {
		return nil, errors.Wrap(err, "name sheet")
	}
	if err = f.SetSheetRow(SheetName, "A1", &table.Header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, errors.Wrap(err, "write row")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[amountColumn] = amountCell(row[amountColumn])
		if err = f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, errors.Wrap(err, "write row")
		}
	}

	err = f.SetDocProps(&excelize.DocProperties{
		Created:  generatedAt.UTC().Format(time.RFC3339),
		Creator:  creator,
		Title:    SheetName,
		Language: "en-US",
	})
	if err != nil {
		return nil, errors.Wrap(err, "write properties")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}

// amountCell keeps amounts numeric when a float64 holds them exactly, text otherwise.
func amountCell(raw string) interface{} {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	f := amount.InexactFloat64()
	if !decimal.NewFromFloat(f).Equal(amount) {
		return raw
	}
	return f
}

// CSVEncoder output is byte-for-byte reproducible for the same table.
type CSVEncoder struct{}

func (CSVEncoder) Extension() string {
	return FormatCSV
}

func (CSVEncoder) ContentType() string {
	return "text/csv"
}

func (CSVEncoder) Encode(table *Table, _ time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, errors.Wrap(err, "write rows")
	}
	return buf.Bytes(), nil
}
