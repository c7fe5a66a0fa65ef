package gsheets

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/export"
)

// Cells are written verbatim so dates, amounts and notes keep their exported text.
const valueInputOption = "RAW"

type config interface {
	SpreadsheetID() string
	CredentialsFile() string
}

// Sink mirrors every export into a per-owner tab of one spreadsheet.
type Sink struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func New(ctx context.Context, cfg config) (*Sink, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile())
	if err != nil {
		return nil, errors.Wrap(err, "read google credentials")
	}
	return newSink(ctx, cfg.SpreadsheetID(),
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newSink(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Sink, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create sheets service")
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func TabName(owner int64) string {
	return fmt.Sprintf("expenses_%d", owner)
}

func (s *Sink) Save(ctx context.Context, owner int64, _ *export.Document, table *export.Table) (string, error) {
	tab := TabName(owner)
	if err := s.ensureTab(ctx, tab); err != nil {
		return "", err
	}

	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, tab, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "clear sheet")
	}

	values := make([][]interface{}, 0, table.Len())
	values = append(values, toRow(table.Header))
	for _, row := range table.Rows {
		values = append(values, toRow(row))
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, tab+"!A1", &gsheet.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).
		Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "write sheet")
	}

	logger.Debug("export mirrored to sheets", zap.String("tab", tab), zap.Int("rows", len(values)))
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", s.spreadsheetID), nil
}

func (s *Sink) ensureTab(ctx context.Context, tab string) error {
	sp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "get spreadsheet")
	}
	for _, sheet := range sp.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return nil
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	return errors.Wrap(err, "add sheet")
}

func toRow(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
