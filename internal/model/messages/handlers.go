package messages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/customerr"
	"max.ks1230/expense-tracker/internal/model/dashboard"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am your expense tracker bot 🤖"
	loveToTalkMessage     = "I would love to talk about it more!"
	okMessage             = "Gotcha!"
	deletedMessage        = "Deleted"
	noExpensesMessage     = "You have no expenses yet"
	notFoundMessage       = "There is no such expense"
	exportQueuedMessage   = "Your export is being prepared, I will send the file shortly"

	incorrectUsageMessage = "That is an incorrect command usage"
	incorrectIDMessage    = "The expense id is incorrect"

	cannotGetExpensesMessage  = "Can't get your expenses atm. Try later"
	cannotSaveExpenseMessage  = "Can't save your expense atm. Try later"
	cannotExportMessage       = "Can't export your expenses atm. Try later"
	cannotGetDashboardMessage = "Can't build your dashboard atm. Try later"
)

const helpMessage = `Commands:
/add &lt;category&gt; &lt;amount&gt; [YYYY-MM-DD] [icon:&lt;icon&gt;] [note]
/list - all your expenses
/update &lt;id&gt; &lt;category&gt; &lt;amount&gt; &lt;YYYY-MM-DD&gt; [icon:&lt;icon&gt;] [note]
/delete &lt;id&gt;
/dashboard - totals and recent expenses
/export - spreadsheet with all your expenses`

const (
	startCommand     = "/start"
	helpCommand      = "/help"
	addCommand       = "/add"
	listCommand      = "/list"
	updateCommand    = "/update"
	deleteCommand    = "/delete"
	dashboardCommand = "/dashboard"
	exportCommand    = "/export"
)

type expenseService interface {
	Create(ctx context.Context, owner int64, p expense.Payload) (expense.Record, error)
	List(ctx context.Context, owner int64) ([]expense.Record, error)
	Update(ctx context.Context, owner, id int64, p expense.Payload) (expense.Record, error)
	Delete(ctx context.Context, owner, id int64) error
}

type dashboardService interface {
	Summary(ctx context.Context, owner int64) (*dashboard.Summary, error)
}

// exportService either delivers the export itself and returns an empty request id,
// or queues it and returns the id of the queued request.
type exportService interface {
	RequestExport(ctx context.Context, userID int64) (string, error)
}

type handler func(ctx context.Context, arg string, userID int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	expenses    expenseService
	dashboard   dashboardService
	exporter    exportService
	now         func() time.Time
}

func newHandler(expenses expenseService, dashboard dashboardService, exporter exportService) *HandlerService {
	res := &HandlerService{
		expenses:  expenses,
		dashboard: dashboard,
		exporter:  exporter,
		now:       time.Now,
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, userID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg, userID)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[addCommand] = s.handleAdd
	m[listCommand] = s.handleList
	m[updateCommand] = s.handleUpdate
	m[deleteCommand] = s.handleDelete
	m[dashboardCommand] = s.handleDashboard
	m[exportCommand] = s.handleExport

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage + "\n\n" + helpMessage, nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string, _ int64) (string, error) {
	return helpMessage, nil
}

func (s *HandlerService) handleAdd(ctx context.Context, arg string, userID int64) (string, error) {
	payload, ok := parsePayload(strings.Fields(arg))
	if !ok {
		return incorrectUsageMessage, nil
	}
	if payload.Date == "" {
		payload.Date = expense.FormatDate(expense.Day(s.now()))
	}

	rec, err := s.expenses.Create(ctx, userID, payload)
	if err != nil {
		return replyForError(err, cannotSaveExpenseMessage, "handle add")
	}
	return fmt.Sprintf("%s #%d", okMessage, rec.ID), nil
}

func (s *HandlerService) handleList(ctx context.Context, _ string, userID int64) (string, error) {
	records, err := s.expenses.List(ctx, userID)
	if err != nil {
		return replyForError(err, cannotGetExpensesMessage, "handle list")
	}
	if len(records) == 0 {
		return noExpensesMessage, nil
	}
	return formatExpenses(records), nil
}

func (s *HandlerService) handleUpdate(ctx context.Context, arg string, userID int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 1 {
		return incorrectUsageMessage, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return incorrectIDMessage, nil
	}
	payload, ok := parsePayload(args[1:])
	if !ok {
		return incorrectUsageMessage, nil
	}

	rec, err := s.expenses.Update(ctx, userID, id, payload)
	if err != nil {
		return replyForError(err, cannotSaveExpenseMessage, "handle update")
	}
	return fmt.Sprintf("%s #%d", okMessage, rec.ID), nil
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string, userID int64) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return incorrectIDMessage, nil
	}
	if err = s.expenses.Delete(ctx, userID, id); err != nil {
		return replyForError(err, cannotSaveExpenseMessage, "handle delete")
	}
	return deletedMessage, nil
}

func (s *HandlerService) handleDashboard(ctx context.Context, _ string, userID int64) (string, error) {
	summary, err := s.dashboard.Summary(ctx, userID)
	if err != nil {
		return replyForError(err, cannotGetDashboardMessage, "handle dashboard")
	}
	if summary.Count == 0 {
		return noExpensesMessage, nil
	}
	return formatSummary(summary), nil
}

func (s *HandlerService) handleExport(ctx context.Context, _ string, userID int64) (string, error) {
	requestID, err := s.exporter.RequestExport(ctx, userID)
	if err != nil {
		return replyForError(err, cannotExportMessage, "handle export")
	}
	if requestID == "" {
		return "", nil
	}
	return exportQueuedMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}

// replyForError turns user mistakes into replies and passes everything else up.
func replyForError(err error, fallback, op string) (string, error) {
	var validationErr *customerr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return escape(validationErr.Error()), nil
	case customerr.IsNotFound(err):
		return notFoundMessage, nil
	case customerr.IsNoData(err):
		return noExpensesMessage, nil
	default:
		return fallback, errors.Wrap(err, op)
	}
}
