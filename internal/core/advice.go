package core

import "strings"

const (
	RiskGood     RiskLevel = "good"
	RiskModerate RiskLevel = "moderate"
	RiskRisky    RiskLevel = "risky"
)

// RiskLevel classifies a prospective purchase.
type RiskLevel string

var riskRank = map[RiskLevel]int{RiskGood: 0, RiskModerate: 1, RiskRisky: 2}

// PurchaseInput describes a prospective purchase under evaluation. MonthlyEMI
// is zero for an outright purchase.
type PurchaseInput struct {
	ProductName    string
	Price          Money
	MonthlyEMI     Money
	DurationMonths int
}

// Advice is the rule engine's verdict plus the reasons that fired.
type Advice struct {
	Classification RiskLevel
	Reasons        []string
}

// Reason joins the fired reasons into one human-readable sentence.
func (a Advice) Reason() string {
	return strings.Join(a.Reasons, " ")
}

// escalate raises the classification, never lowering it. Once a purchase is
// risky no later rule can soften the verdict.
func (a *Advice) escalate(to RiskLevel, reason string) {
	if riskRank[to] > riskRank[a.Classification] {
		a.Classification = to
	}
	a.Reasons = append(a.Reasons, reason)
}

// EvaluatePurchase applies the fixed threshold rules, in order, to classify a
// prospective purchase against the selected month's metrics. Pure function;
// the generative advice collaborator may later rewrite the reason text but
// never the classification.
func EvaluatePurchase(in PurchaseInput, m MonthMetrics, savings Money) Advice {
	a := Advice{Classification: RiskGood}
	income := m.TotalIncome.Cents

	if in.MonthlyEMI.Cents*100 > income*25 {
		a.escalate(RiskRisky, "The monthly installment alone exceeds 25% of your monthly income.")
	}
	if (m.EMIBurden.Cents+in.MonthlyEMI.Cents)*100 > income*40 {
		a.escalate(RiskRisky, "Your total EMI burden would exceed 40% of your monthly income.")
	}
	if m.ExpenseRatio > 80 {
		a.escalate(RiskModerate, "You are already spending more than 80% of this month's income.")
	}
	if (savings.Cents-in.Price.Cents)*10 < income {
		a.escalate(RiskModerate, "This purchase would leave your savings below a 10%-of-income buffer.")
	}

	if len(a.Reasons) == 0 {
		a.Reasons = []string{"This purchase fits comfortably within your current budget."}
	}
	return a
}
