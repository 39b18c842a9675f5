package core

import "math"

// MonthMetrics are the derived figures for one month's slice. Ratios are
// percentages and defined as 0 when the month has no income, never NaN or Inf.
type MonthMetrics struct {
	TotalIncome    Money
	TotalExpenses  Money
	EMIBurden      Money
	CurrentSavings Money // income - expenses, may be negative
	ExpenseRatio   float64
	EMIRatio       float64
	SavingsRate    float64
	HealthScore    int // 0-100
}

// ComputeMonthMetrics derives the month's figures. savings is the user's
// accumulated savings balance, used only for the emergency-fund component of
// the health score.
func ComputeMonthMetrics(slice MonthSlice, savings Money) MonthMetrics {
	m := MonthMetrics{
		TotalIncome:   SumIncome(slice.Incomes),
		TotalExpenses: SumExpenses(slice.Expenses),
	}
	for _, e := range slice.Expenses {
		if e.Type == EMI && e.EMI != nil && e.EMI.RemainingMonths > 0 {
			m.EMIBurden.Cents += e.Amount.Cents
		}
	}
	m.CurrentSavings = Money{Cents: m.TotalIncome.Cents - m.TotalExpenses.Cents}

	if m.TotalIncome.Cents == 0 {
		return m
	}

	income := m.TotalIncome.Units()
	m.ExpenseRatio = m.TotalExpenses.Units() / income * 100
	m.EMIRatio = m.EMIBurden.Units() / income * 100
	m.SavingsRate = m.CurrentSavings.Units() / income * 100
	m.HealthScore = healthScore(m.SavingsRate, m.EMIRatio, m.TotalExpenses, savings)
	return m
}

// healthScore combines savings rate (up to 40 points), EMI burden (up to 30)
// and emergency-fund coverage against six months of expenses (up to 30).
func healthScore(savingsRate, emiRatio float64, expenses, savings Money) int {
	score := math.Min(savingsRate*2, 40)
	score += math.Max(0, 30-emiRatio*0.5)

	// With no expenses any savings cover the emergency fund in full.
	emergencyComponent := 30.0
	if expenses.Cents > 0 {
		fundRatio := savings.Units() / (expenses.Units() * 6) * 100
		emergencyComponent = math.Min(fundRatio*0.3, 30)
	}
	score += emergencyComponent

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
