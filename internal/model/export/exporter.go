package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
)

type Document struct {
	Name        string
	ContentType string
	Data        []byte
	GeneratedAt time.Time
	Location    string
}

type expenseLister interface {
	ListExpenses(ctx context.Context, owner int64) ([]expense.Record, error)
}

// Sink persists a finished document and reports where it went.
type Sink interface {
	Save(ctx context.Context, owner int64, doc *Document, table *Table) (string, error)
}

type Exporter struct {
	lister  expenseLister
	encoder Encoder
	sinks   []Sink
	now     func() time.Time
}

func NewExporter(lister expenseLister, encoder Encoder, sinks ...Sink) *Exporter {
	return &Exporter{
		lister:  lister,
		encoder: encoder,
		sinks:   sinks,
		now:     time.Now,
	}
}

func FileName(owner int64, ext string) string {
	return fmt.Sprintf("expenses_%d.%s", owner, ext)
}

// Export reads the owner's records once and encodes them. A sink failure fails the export.
func (e *Exporter) Export(ctx context.Context, owner int64) (doc *Document, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "exportExpenses")
	defer span.Finish()

	start := time.Now()
	defer func() {
		observeExport(time.Since(start), err)
		if err != nil {
			ext.Error.Set(span, true)
		}
	}()

	records, err := e.lister.ListExpenses(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "export expenses")
	}
	table, err := BuildTable(records)
	if err != nil {
		return nil, err
	}

	generatedAt := e.now().UTC()
	data, err := e.encoder.Encode(table, generatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "encode export")
	}
	doc = &Document{
		Name:        FileName(owner, e.encoder.Extension()),
		ContentType: e.encoder.ContentType(),
		Data:        data,
		GeneratedAt: generatedAt,
	}

	locations := make([]string, 0, len(e.sinks))
	for _, sink := range e.sinks {
		loc, err := sink.Save(ctx, owner, doc, table)
		if err != nil {
			return nil, errors.Wrap(err, "save export")
		}
		locations = append(locations, loc)
	}
	doc.Location = strings.Join(locations, ", ")

	logger.Info("expenses exported",
		zap.Int64("userID", owner),
		zap.Int("rows", len(table.Rows)),
		zap.String("location", doc.Location))
	return doc, nil
}
