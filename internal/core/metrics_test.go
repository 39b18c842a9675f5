package core

import (
	"math"
	"testing"
)

func TestComputeMonthMetricsScenario(t *testing.T) {
	// income=50000, expenses=20000 -> savings=30000, expenseRatio=40%
	slice := MonthSlice{
		Incomes: []IncomeEntry{income("a", NewDate(2024, 5, 1), 5000000)},
		Expenses: []ExpenseEntry{
			expense("x", NewDate(2024, 5, 2), 1500000),
			expense("y", NewDate(2024, 5, 3), 500000),
		},
	}
	m := ComputeMonthMetrics(slice, Money{Cents: 0})

	if m.TotalIncome.Cents != 5000000 || m.TotalExpenses.Cents != 2000000 {
		t.Fatalf("unexpected totals: income=%d expenses=%d", m.TotalIncome.Cents, m.TotalExpenses.Cents)
	}
	if m.CurrentSavings.Cents != 3000000 {
		t.Fatalf("expected savings 3000000, got %d", m.CurrentSavings.Cents)
	}
	if m.ExpenseRatio != 40 {
		t.Fatalf("expected expense ratio 40, got %v", m.ExpenseRatio)
	}
}

func TestMetricsZeroIncomeGuards(t *testing.T) {
	slice := MonthSlice{
		Expenses: []ExpenseEntry{expense("x", NewDate(2024, 5, 2), 1000)},
	}
	m := ComputeMonthMetrics(slice, Money{Cents: 100000})

	for name, v := range map[string]float64{
		"expense_ratio": m.ExpenseRatio,
		"emi_ratio":     m.EMIRatio,
		"savings_rate":  m.SavingsRate,
	} {
		if v != 0 {
			t.Fatalf("%s must be 0 with no income, got %v", name, v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s must never be NaN or Inf", name)
		}
	}
	if m.HealthScore != 0 {
		t.Fatalf("health score must be 0 with no income, got %d", m.HealthScore)
	}
}

func TestEMIBurdenCountsActiveOnly(t *testing.T) {
	active, _ := ExpandEMI("Phone", Money{Cents: 120000}, 12, "2024-05")
	finished := ExpenseEntry{
		ID: "done", Date: NewDate(2024, 5, 1), Label: EMILabel("Old", 12, 12),
		Category: "EMI", Amount: Money{Cents: 7777}, Type: EMI,
		EMI: &EMIDetails{GroupID: "g2", Sequence: 12, TotalMonths: 12, RemainingMonths: 0, StartDate: NewDate(2023, 6, 1), Paid: true},
	}
	slice := MonthSlice{
		Incomes:  []IncomeEntry{income("a", NewDate(2024, 5, 1), 1000000)},
		Expenses: append([]ExpenseEntry{active[0], finished}, expense("x", NewDate(2024, 5, 2), 5000)),
	}
	m := ComputeMonthMetrics(slice, Money{})
	if m.EMIBurden.Cents != active[0].Amount.Cents {
		t.Fatalf("burden must include only installments with remaining months, got %d", m.EMIBurden.Cents)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	cases := []struct {
		name    string
		slice   MonthSlice
		savings int64
	}{
		{"healthy", MonthSlice{
			Incomes:  []IncomeEntry{income("a", NewDate(2024, 1, 1), 1000000)},
			Expenses: []ExpenseEntry{expense("x", NewDate(2024, 1, 2), 200000)},
		}, 10000000},
		{"overspent", MonthSlice{
			Incomes:  []IncomeEntry{income("a", NewDate(2024, 1, 1), 100000)},
			Expenses: []ExpenseEntry{expense("x", NewDate(2024, 1, 2), 900000)},
		}, 0},
		{"no expenses", MonthSlice{
			Incomes: []IncomeEntry{income("a", NewDate(2024, 1, 1), 100000)},
		}, 0},
	}
	for _, tc := range cases {
		m := ComputeMonthMetrics(tc.slice, Money{Cents: tc.savings})
		if m.HealthScore < 0 || m.HealthScore > 100 {
			t.Fatalf("%s: score %d outside [0,100]", tc.name, m.HealthScore)
		}
	}
}

func TestHealthScoreHealthyMonth(t *testing.T) {
	// savingsRate 80 caps the first term at 40, zero EMI gives 30, and a large
	// emergency fund caps the last term at 30: a perfect 100.
	slice := MonthSlice{
		Incomes:  []IncomeEntry{income("a", NewDate(2024, 1, 1), 1000000)},
		Expenses: []ExpenseEntry{expense("x", NewDate(2024, 1, 2), 200000)},
	}
	m := ComputeMonthMetrics(slice, Money{Cents: 100000000})
	if m.HealthScore != 100 {
		t.Fatalf("expected perfect score, got %d", m.HealthScore)
	}
}
