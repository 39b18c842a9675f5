// Package export pushes monthly reports to Google Sheets.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetly/internal/core"
	applog "budgetly/internal/log"
	"budgetly/internal/services"
)

// SheetsExporter appends one row per ledger entry of a month, followed by a
// metrics summary row, to a per-year report sheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *applog.Logger
}

// NewSheetsExporter creates a Sheets client from service account credentials.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetBase string, logger *applog.Logger) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Reports"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		logger:        logger.WithComponent(applog.ComponentExport),
	}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// ExportMonthlyReport appends the month's entries and metrics to the report
// sheet and returns the written range plus the number of data rows.
func (e *SheetsExporter) ExportMonthlyReport(ctx context.Context, uid string, d services.Dashboard) (string, int, error) {
	if e.svc == nil {
		return "", 0, errors.New("sheets service not initialized")
	}

	sheetName := e.sheetName(d.Month)
	rows := buildReportRows(uid, d)

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:G%d", sheetName, nextRow, nextRow+len(rows)-1)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("update %s: %w", dataRange, err)
	}

	e.logger.InfoContext(ctx, "Monthly report exported",
		"uid", uid, "month", string(d.Month), "sheet", sheetName, "rows", len(rows))
	return dataRange, len(rows), nil
}

// sheetName prefixes the base name with the report year, one sheet per year.
func (e *SheetsExporter) sheetName(month core.MonthKey) string {
	year := time.Now().Year()
	if s := string(month); len(s) >= 4 {
		if y, err := time.Parse("2006", s[:4]); err == nil {
			year = y.Year()
		}
	}
	return fmt.Sprintf("%d %s", year, e.sheetBase)
}

func buildReportRows(uid string, d services.Dashboard) [][]any {
	month := string(d.Month)
	rows := make([][]any, 0, len(d.Slice.Incomes)+len(d.Slice.Expenses)+1)
	for _, in := range d.Slice.Incomes {
		rows = append(rows, []any{
			month, uid, "income", in.Label, in.Source,
			float64(in.Amount.Cents) / 100.0, "",
		})
	}
	for _, ex := range d.Slice.Expenses {
		rows = append(rows, []any{
			month, uid, "expense", ex.Label, ex.Category,
			float64(ex.Amount.Cents) / 100.0, string(ex.Type),
		})
	}
	rows = append(rows, []any{
		month, uid, "metrics",
		fmt.Sprintf("health %d", d.Metrics.HealthScore),
		fmt.Sprintf("savings rate %.1f%%", d.Metrics.SavingsRate),
		float64(d.Metrics.TotalIncome.Cents-d.Metrics.TotalExpenses.Cents) / 100.0,
		"",
	})
	return rows
}
