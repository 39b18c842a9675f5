package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxEMIDurationMonths caps installment plans at ten years.
const MaxEMIDurationMonths = 120

var (
	ErrInvalidDuration        = errors.New("emi duration must be between 1 and 120 months")
	ErrNoUnpaidInstallments   = errors.New("no unpaid installments in group")
	errInstallmentLabelFormat = errors.New("not an emi label")
)

// EMIGroup is the read-side projection of one installment purchase
// reconstructed from its persisted monthly entries.
type EMIGroup struct {
	GroupID       string
	ProductName   string
	TotalAmount   Money
	MonthlyAmount Money
	TotalMonths   int
	PaidMonths    int
	Active        bool
	StartDate     Date
	Installments  []ExpenseEntry
}

// ExpandEMI converts an installment purchase into one expense entry per
// consecutive calendar month starting at startMonth. The monthly installment
// is total/duration in cents rounded down; the final installment absorbs the
// remainder so the entries always sum to exactly the total.
func ExpandEMI(productName string, total Money, durationMonths int, startMonth MonthKey) ([]ExpenseEntry, error) {
	if err := total.Validate(); err != nil {
		return nil, err
	}
	if durationMonths < 1 || durationMonths > MaxEMIDurationMonths {
		return nil, ErrInvalidDuration
	}
	if strings.TrimSpace(productName) == "" {
		return nil, ErrEmptyLabel
	}
	if _, err := ParseMonthKey(string(startMonth)); err != nil {
		return nil, err
	}

	monthly := total.Cents / int64(durationMonths)
	groupID := uuid.NewString()
	start := startMonth.Date()

	entries := make([]ExpenseEntry, 0, durationMonths)
	for i := 1; i <= durationMonths; i++ {
		amount := monthly
		if i == durationMonths {
			amount = total.Cents - monthly*int64(durationMonths-1)
		}
		entries = append(entries, ExpenseEntry{
			ID:       uuid.NewString(),
			Date:     Date{Time: start.AddDate(0, i-1, 0)},
			Label:    EMILabel(productName, i, durationMonths),
			Category: "EMI",
			Amount:   Money{Cents: amount},
			Type:     EMI,
			EMI: &EMIDetails{
				GroupID:         groupID,
				Sequence:        i,
				TotalMonths:     durationMonths,
				RemainingMonths: durationMonths - i,
				MonthlyAmount:   Money{Cents: monthly},
				StartDate:       start,
			},
		})
	}
	return entries, nil
}

// EMILabel formats the canonical installment label, e.g. "Phone - EMI 1/12".
func EMILabel(productName string, seq, total int) string {
	return fmt.Sprintf("%s - EMI %d/%d", productName, seq, total)
}

// ParseEMILabel recovers the base product name and installment position from a
// canonical label. Used to regroup legacy entries that predate group IDs.
func ParseEMILabel(label string) (name string, seq, total int, err error) {
	idx := strings.LastIndex(label, " - EMI ")
	if idx < 1 {
		return "", 0, 0, errInstallmentLabelFormat
	}
	frac := label[idx+len(" - EMI "):]
	parts := strings.SplitN(frac, "/", 2)
	if len(parts) != 2 {
		return "", 0, 0, errInstallmentLabelFormat
	}
	seq, err = strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, 0, errInstallmentLabelFormat
	}
	total, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, errInstallmentLabelFormat
	}
	return label[:idx], seq, total, nil
}

// GroupEMIs reconstructs logical installment groupings from persisted expense
// entries. Pure projection; input entries are not mutated. Entries carrying a
// group ID are grouped by it; older entries fall back to the base product name
// parsed from their labels.
func GroupEMIs(entries []ExpenseEntry) []EMIGroup {
	byKey := make(map[string][]ExpenseEntry)
	var order []string
	for _, e := range entries {
		if e.Type != EMI || e.EMI == nil {
			continue
		}
		key := e.EMI.GroupID
		if key == "" {
			name, _, _, err := ParseEMILabel(e.Label)
			if err != nil {
				name = e.Label
			}
			key = "label:" + name
		}
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], e)
	}

	groups := make([]EMIGroup, 0, len(order))
	for _, key := range order {
		installments := byKey[key]
		sort.Slice(installments, func(i, j int) bool {
			return installments[i].EMI.Sequence < installments[j].EMI.Sequence
		})

		g := EMIGroup{
			GroupID:      installments[0].EMI.GroupID,
			TotalMonths:  installments[0].EMI.TotalMonths,
			StartDate:    installments[0].EMI.StartDate,
			Installments: installments,
		}
		if name, _, _, err := ParseEMILabel(installments[0].Label); err == nil {
			g.ProductName = name
		} else {
			g.ProductName = installments[0].Label
		}
		g.MonthlyAmount = installments[0].EMI.MonthlyAmount
		for _, inst := range installments {
			g.TotalAmount.Cents += inst.Amount.Cents
			if inst.EMI.Paid {
				g.PaidMonths++
			}
		}
		g.Active = g.PaidMonths < len(installments)
		groups = append(groups, g)
	}
	return groups
}

// ElapsedInstallments is the derived date view of a group: how many
// installments have a due date on or before now. Reporting only; payment
// state lives in the Paid counters.
func (g EMIGroup) ElapsedInstallments(now time.Time) int {
	n := 0
	for _, inst := range g.Installments {
		if !inst.Date.After(now) {
			n++
		}
	}
	return n
}

// MarkInstallmentPaid marks the earliest unpaid installment in the group as
// paid and floors its remaining-months counter at zero. It returns the index
// of the mutated installment within g.Installments.
func (g *EMIGroup) MarkInstallmentPaid() (int, error) {
	for i := range g.Installments {
		d := g.Installments[i].EMI
		if d.Paid {
			continue
		}
		d.Paid = true
		if d.RemainingMonths > 0 {
			d.RemainingMonths--
		}
		g.PaidMonths++
		g.Active = g.PaidMonths < len(g.Installments)
		return i, nil
	}
	return -1, ErrNoUnpaidInstallments
}
