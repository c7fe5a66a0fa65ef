package messages

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/olekukonko/tablewriter"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/dashboard"
)

const (
	commandParts = 2
	iconPrefix   = "icon:"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

// parsePayload reads "<category> <amount> [date] [icon:<icon>] [note...]".
// The date is left empty when absent.
func parsePayload(args []string) (expense.Payload, bool) {
	if len(args) < 2 {
		return expense.Payload{}, false
	}
	p := expense.Payload{
		Category: args[0],
		Amount:   args[1],
	}
	rest := args[2:]
	if len(rest) > 0 && datePattern.MatchString(rest[0]) {
		p.Date = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.HasPrefix(rest[0], iconPrefix) {
		p.Icon = strings.TrimPrefix(rest[0], iconPrefix)
		rest = rest[1:]
	}
	p.Note = strings.Join(rest, " ")
	return p, true
}

func escape(s string) string {
	return html.EscapeString(s)
}

func pre(s string) string {
	return "<pre>" + escape(s) + "</pre>"
}

func formatExpenses(records []expense.Record) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"ID", "Date", "Category", "Amount", "Note"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, rec := range records {
		note := rec.Note
		if rec.Icon != "" {
			note = strings.TrimSpace(rec.Icon + " " + note)
		}
		table.Append([]string{
			fmt.Sprint(rec.ID),
			expense.FormatDate(rec.Date),
			rec.Category,
			rec.Amount.StringFixed(2),
			note,
		})
	}
	table.Render()
	return pre(buf.String())
}

func formatSummary(s *dashboard.Summary) string {
	lines := []string{
		fmt.Sprintf("<b>Total:</b> %s (%d expenses)", s.Total.StringFixed(2), s.Count),
		fmt.Sprintf("<b>This month:</b> %s", s.CurrentMonth.StringFixed(2)),
		fmt.Sprintf("<b>Last 30 days:</b> %s", s.LastDays.StringFixed(2)),
		"",
		"<b>By category:</b>",
	}
	for _, c := range s.ByCategory {
		lines = append(lines, fmt.Sprintf("%s: %s", escape(c.Category), c.Amount.StringFixed(2)))
	}
	if len(s.Recent) > 0 {
		lines = append(lines, "", "<b>Recent:</b>")
		for _, r := range s.Recent {
			lines = append(lines, escape(strings.Join(strings.Fields(
				fmt.Sprintf("%s %s %s %s", r.Date, r.Icon, r.Category, r.Amount.StringFixed(2))), " ")))
		}
	}
	return strings.Join(lines, "\n")
}
