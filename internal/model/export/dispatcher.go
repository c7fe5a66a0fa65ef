package export

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

const (
	NoExpensesMessage   = "You have no expenses to export yet"
	ExportFailedMessage = "Can't export your expenses atm. Try later"
)

type exporter interface {
	Export(ctx context.Context, owner int64) (*Document, error)
}

type documentSender interface {
	SendMessage(text string, userID int64) error
	SendDocument(name string, data []byte, userID int64) error
}

// Dispatcher delivers an export to its owner, used by both the bot and the queue worker.
type Dispatcher struct {
	exporter exporter
	sender   documentSender
}

func NewDispatcher(exporter exporter, sender documentSender) *Dispatcher {
	return &Dispatcher{
		exporter: exporter,
		sender:   sender,
	}
}

func (d *Dispatcher) HandleExportRequest(ctx context.Context, owner int64) error {
	doc, err := d.exporter.Export(ctx, owner)
	if customerr.IsNoData(err) {
		return d.sender.SendMessage(NoExpensesMessage, owner)
	}
	if err != nil {
		return d.fail(owner, err)
	}

	if err = d.sender.SendDocument(doc.Name, doc.Data, owner); err != nil {
		return d.fail(owner, errors.Wrap(err, "send export"))
	}
	return nil
}

// RequestExport delivers the export right away. Failures are logged and the user
// is apologised to by HandleExportRequest, so the caller has nothing left to reply.
func (d *Dispatcher) RequestExport(ctx context.Context, owner int64) (string, error) {
	if err := d.HandleExportRequest(ctx, owner); err != nil {
		logger.Warn("synchronous export not delivered", zap.Int64("userID", owner), zap.Error(err))
	}
	return "", nil
}

func (d *Dispatcher) fail(owner int64, err error) error {
	logger.Error("export failed", zap.Int64("userID", owner), zap.Error(err))
	if sendErr := d.sender.SendMessage(ExportFailedMessage, owner); sendErr != nil {
		logger.Error("cannot notify user", zap.Int64("userID", owner), zap.Error(sendErr))
	}
	return err
}
