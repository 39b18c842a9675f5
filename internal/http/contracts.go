// Package http provides the JSON API server.
//
// This file defines the typed request and response contracts. Handlers decode
// into these structs, convert to core types at the boundary, and encode the
// typed responses back; no map-shaped payloads.
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"budgetly/internal/core"
	"budgetly/internal/services"
)

const dateLayout = "2006-01-02"

// --- requests ---

type syncUserRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type updateProfileRequest struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Savings    string `json:"savings"` // decimal, e.g. "1234.56"
}

type incomeRequest struct {
	Date   string `json:"date"` // "2006-01-02"
	Label  string `json:"label"`
	Source string `json:"source"`
	Amount string `json:"amount"` // decimal
}

type expenseRequest struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type emiPurchaseRequest struct {
	ProductName    string `json:"product_name"`
	TotalAmount    string `json:"total_amount"`
	DurationMonths int    `json:"duration_months"`
	StartMonth     string `json:"start_month"` // "YYYY-MM", defaults to current month
}

type payInstallmentRequest struct {
	GroupID string `json:"group_id"`
}

type adviceRequest struct {
	ProductName    string `json:"product_name"`
	Price          string `json:"price"`
	MonthlyEMI     string `json:"monthly_emi"`
	DurationMonths int    `json:"duration_months"`
}

type exportReportRequest struct {
	Month string `json:"month"`
}

// --- responses ---

type userResponse struct {
	UID        string `json:"uid"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url"`
	Location   string `json:"location"`
	Occupation string `json:"occupation"`
	Savings    string `json:"savings"`
}

type incomeResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Month  string `json:"month"`
	Label  string `json:"label"`
	Source string `json:"source"`
	Amount string `json:"amount"`
}

type emiDetailsResponse struct {
	GroupID         string `json:"group_id"`
	Sequence        int    `json:"sequence"`
	TotalMonths     int    `json:"total_months"`
	RemainingMonths int    `json:"remaining_months"`
	MonthlyAmount   string `json:"monthly_amount"`
	StartDate       string `json:"start_date"`
	Paid            bool   `json:"paid"`
}

type expenseResponse struct {
	ID       string              `json:"id"`
	Date     string              `json:"date"`
	Month    string              `json:"month"`
	Label    string              `json:"label"`
	Category string              `json:"category"`
	Amount   string              `json:"amount"`
	Type     string              `json:"type"`
	EMI      *emiDetailsResponse `json:"emi,omitempty"`
}

type monthSliceResponse struct {
	Month    string            `json:"month"`
	Incomes  []incomeResponse  `json:"incomes"`
	Expenses []expenseResponse `json:"expenses"`
}

type ledgerResponse struct {
	Months []monthSliceResponse `json:"months"`
}

type monthsResponse struct {
	Months []string `json:"months"`
}

type emiGroupResponse struct {
	GroupID       string `json:"group_id"`
	ProductName   string `json:"product_name"`
	TotalAmount   string `json:"total_amount"`
	MonthlyAmount string `json:"monthly_amount"`
	TotalMonths   int    `json:"total_months"`
	PaidMonths    int    `json:"paid_months"`
	ElapsedMonths int    `json:"elapsed_months"`
	Active        bool   `json:"active"`
	StartDate     string `json:"start_date"`
}

type emiGroupsResponse struct {
	Groups []emiGroupResponse `json:"groups"`
}

type metricsResponse struct {
	TotalIncome    string  `json:"total_income"`
	TotalExpenses  string  `json:"total_expenses"`
	EMIBurden      string  `json:"emi_burden"`
	CurrentSavings string  `json:"current_savings"`
	ExpenseRatio   float64 `json:"expense_ratio"`
	EMIRatio       float64 `json:"emi_ratio"`
	SavingsRate    float64 `json:"savings_rate"`
	HealthScore    int     `json:"health_score"`
}

type dashboardResponse struct {
	Month    string            `json:"month"`
	Incomes  []incomeResponse  `json:"incomes"`
	Expenses []expenseResponse `json:"expenses"`
	Metrics  metricsResponse   `json:"metrics"`
}

type suggestionResponse struct {
	ID             string `json:"id"`
	ProductName    string `json:"product_name"`
	Price          string `json:"price"`
	MonthlyEMI     string `json:"monthly_emi"`
	DurationMonths int    `json:"duration_months"`
	Classification string `json:"classification"`
	Reason         string `json:"reason"`
	CreatedAt      string `json:"created_at"`
}

type suggestionsResponse struct {
	Suggestions []suggestionResponse `json:"suggestions"`
}

type exportReportResponse struct {
	Month       string `json:"month"`
	Destination string `json:"destination"`
	Rows        int    `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- conversions ---

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return core.Date{Time: t}, nil
}

// parseOptionalAmount accepts the amount grammar of ParseDecimalToCents but
// additionally allows zero, for fields like accumulated savings.
func parseOptionalAmount(s string) (int64, error) {
	norm := strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if norm == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(norm, 64); err == nil && f == 0 {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		UID:        u.UID,
		Name:       u.Name,
		Email:      u.Email,
		AvatarURL:  u.AvatarURL,
		Location:   u.Location,
		Occupation: u.Occupation,
		Savings:    u.Savings.String(),
	}
}

func toIncomeResponse(e core.IncomeEntry) incomeResponse {
	return incomeResponse{
		ID:     e.ID,
		Date:   e.Date.Format(dateLayout),
		Month:  string(e.Date.Key()),
		Label:  e.Label,
		Source: e.Source,
		Amount: e.Amount.String(),
	}
}

func toExpenseResponse(e core.ExpenseEntry) expenseResponse {
	resp := expenseResponse{
		ID:       e.ID,
		Date:     e.Date.Format(dateLayout),
		Month:    string(e.Date.Key()),
		Label:    e.Label,
		Category: e.Category,
		Amount:   e.Amount.String(),
		Type:     string(e.Type),
	}
	if e.EMI != nil {
		resp.EMI = &emiDetailsResponse{
			GroupID:         e.EMI.GroupID,
			Sequence:        e.EMI.Sequence,
			TotalMonths:     e.EMI.TotalMonths,
			RemainingMonths: e.EMI.RemainingMonths,
			MonthlyAmount:   e.EMI.MonthlyAmount.String(),
			StartDate:       e.EMI.StartDate.Format(dateLayout),
			Paid:            e.EMI.Paid,
		}
	}
	return resp
}

func toMonthSliceResponse(month core.MonthKey, s core.MonthSlice) monthSliceResponse {
	resp := monthSliceResponse{
		Month:    string(month),
		Incomes:  make([]incomeResponse, 0, len(s.Incomes)),
		Expenses: make([]expenseResponse, 0, len(s.Expenses)),
	}
	for _, e := range s.Incomes {
		resp.Incomes = append(resp.Incomes, toIncomeResponse(e))
	}
	for _, e := range s.Expenses {
		resp.Expenses = append(resp.Expenses, toExpenseResponse(e))
	}
	return resp
}

func toLedgerResponse(l core.Ledger) ledgerResponse {
	resp := ledgerResponse{Months: make([]monthSliceResponse, 0, len(l))}
	for _, k := range l.AvailableMonths() {
		resp.Months = append(resp.Months, toMonthSliceResponse(k, l.Slice(k)))
	}
	return resp
}

func toEMIGroupResponse(g core.EMIGroup, now time.Time) emiGroupResponse {
	return emiGroupResponse{
		GroupID:       g.GroupID,
		ProductName:   g.ProductName,
		TotalAmount:   g.TotalAmount.String(),
		MonthlyAmount: g.MonthlyAmount.String(),
		TotalMonths:   g.TotalMonths,
		PaidMonths:    g.PaidMonths,
		ElapsedMonths: g.ElapsedInstallments(now),
		Active:        g.Active,
		StartDate:     g.StartDate.Format(dateLayout),
	}
}

func toMetricsResponse(m core.MonthMetrics) metricsResponse {
	return metricsResponse{
		TotalIncome:    m.TotalIncome.String(),
		TotalExpenses:  m.TotalExpenses.String(),
		EMIBurden:      m.EMIBurden.String(),
		CurrentSavings: m.CurrentSavings.String(),
		ExpenseRatio:   m.ExpenseRatio,
		EMIRatio:       m.EMIRatio,
		SavingsRate:    m.SavingsRate,
		HealthScore:    m.HealthScore,
	}
}

func toDashboardResponse(d services.Dashboard) dashboardResponse {
	slice := toMonthSliceResponse(d.Month, d.Slice)
	return dashboardResponse{
		Month:    slice.Month,
		Incomes:  slice.Incomes,
		Expenses: slice.Expenses,
		Metrics:  toMetricsResponse(d.Metrics),
	}
}

func toSuggestionResponse(s core.PurchaseSuggestion) suggestionResponse {
	return suggestionResponse{
		ID:             s.ID,
		ProductName:    s.ProductName,
		Price:          s.Price.String(),
		MonthlyEMI:     s.MonthlyEMI.String(),
		DurationMonths: s.DurationMonths,
		Classification: string(s.Classification),
		Reason:         s.Reason,
		CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
	}
}
