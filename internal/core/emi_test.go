package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExpandEMIExact(t *testing.T) {
	entries, err := ExpandEMI("Phone", Money{Cents: 1200000}, 12, "2024-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Amount.Cents != 100000 {
			t.Fatalf("installment %d expected 100000 cents, got %d", i+1, e.Amount.Cents)
		}
		wantLabel := fmt.Sprintf("Phone - EMI %d/12", i+1)
		if e.Label != wantLabel {
			t.Fatalf("installment %d expected label %q, got %q", i+1, wantLabel, e.Label)
		}
		if e.EMI.RemainingMonths != 12-(i+1) {
			t.Fatalf("installment %d expected remaining %d, got %d", i+1, 12-(i+1), e.EMI.RemainingMonths)
		}
		wantKey := MonthKey("2024-01").Advance(i)
		if e.Date.Key() != wantKey {
			t.Fatalf("installment %d expected month %s, got %s", i+1, wantKey, e.Date.Key())
		}
	}
}

func TestExpandEMIRemainder(t *testing.T) {
	// 100.00 over 3 months does not divide evenly; the sum must still be exact.
	entries, err := ExpandEMI("Blender", Money{Cents: 10000}, 3, "2024-06")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount.Cents
	}
	if sum != 10000 {
		t.Fatalf("installments must sum to the total, got %d", sum)
	}
	if entries[0].Amount.Cents != 3333 || entries[2].Amount.Cents != 3334 {
		t.Fatalf("expected 3333/3333/3334 split, got %d/%d/%d",
			entries[0].Amount.Cents, entries[1].Amount.Cents, entries[2].Amount.Cents)
	}
}

func TestExpandEMIValidation(t *testing.T) {
	cases := []struct {
		name     string
		total    int64
		duration int
	}{
		{"Phone", 0, 12},
		{"Phone", -100, 12},
		{"Phone", 1000, 0},
		{"Phone", 1000, 121},
		{"", 1000, 12},
	}
	for i, tc := range cases {
		if _, err := ExpandEMI(tc.name, Money{Cents: tc.total}, tc.duration, "2024-01"); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
	// Boundary durations are valid
	for _, d := range []int{1, 120} {
		if _, err := ExpandEMI("Phone", Money{Cents: 12000}, d, "2024-01"); err != nil {
			t.Fatalf("duration %d expected ok, got %v", d, err)
		}
	}
}

func TestExpandEMIRejectsInvalidStartMonth(t *testing.T) {
	for _, key := range []MonthKey{"", "2024", "2024-13", "bogus-1", "2024/01"} {
		_, err := ExpandEMI("Phone", Money{Cents: 12000}, 12, key)
		if !errors.Is(err, ErrInvalidMonthKey) {
			t.Fatalf("start month %q expected ErrInvalidMonthKey, got %v", key, err)
		}
	}
}

func TestGroupEMIsRoundTrip(t *testing.T) {
	entries, err := ExpandEMI("Laptop", Money{Cents: 555555}, 7, "2024-02")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Mix in unrelated expenses that must not join the group.
	entries = append(entries, expense("z", NewDate(2024, 2, 10), 777))

	groups := GroupEMIs(entries)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.ProductName != "Laptop" {
		t.Fatalf("expected product Laptop, got %q", g.ProductName)
	}
	if g.TotalAmount.Cents != 555555 {
		t.Fatalf("round trip total expected 555555, got %d", g.TotalAmount.Cents)
	}
	if len(g.Installments) != 7 || g.TotalMonths != 7 {
		t.Fatalf("expected 7 installments, got %d (total months %d)", len(g.Installments), g.TotalMonths)
	}
	if g.PaidMonths != 0 || !g.Active {
		t.Fatalf("fresh group must be active with no paid months")
	}
}

func TestGroupEMIsLegacyLabels(t *testing.T) {
	// Entries without a group ID regroup by parsed label.
	mk := func(seq int) ExpenseEntry {
		return ExpenseEntry{
			ID:       fmt.Sprintf("legacy-%d", seq),
			Date:     NewDate(2024, seq, 1),
			Label:    EMILabel("Old TV", seq, 3),
			Category: "EMI",
			Amount:   Money{Cents: 5000},
			Type:     EMI,
			EMI:      &EMIDetails{Sequence: seq, TotalMonths: 3, RemainingMonths: 3 - seq, MonthlyAmount: Money{Cents: 5000}, StartDate: NewDate(2024, 1, 1)},
		}
	}
	groups := GroupEMIs([]ExpenseEntry{mk(2), mk(1), mk(3)})
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].ProductName != "Old TV" {
		t.Fatalf("expected Old TV, got %q", groups[0].ProductName)
	}
	if groups[0].Installments[0].EMI.Sequence != 1 {
		t.Fatalf("installments must be ordered by sequence")
	}
}

func TestParseEMILabel(t *testing.T) {
	cases := []struct {
		in        string
		name      string
		seq, tot  int
		ok        bool
	}{
		{"Phone - EMI 1/12", "Phone", 1, 12, true},
		{"My - Gadget - EMI 3/6", "My - Gadget", 3, 6, true},
		{"Groceries", "", 0, 0, false},
		{"Phone - EMI x/12", "", 0, 0, false},
		{"Phone - EMI 1", "", 0, 0, false},
	}
	for i, tc := range cases {
		name, seq, tot, err := ParseEMILabel(tc.in)
		if tc.ok {
			if err != nil || name != tc.name || seq != tc.seq || tot != tc.tot {
				t.Fatalf("case %d: got (%q,%d,%d,%v)", i, name, seq, tot, err)
			}
		} else if err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMarkInstallmentPaid(t *testing.T) {
	entries, _ := ExpandEMI("Phone", Money{Cents: 30000}, 3, "2024-01")
	groups := GroupEMIs(entries)
	g := &groups[0]

	for want := 0; want < 3; want++ {
		idx, err := g.MarkInstallmentPaid()
		if err != nil {
			t.Fatalf("payment %d expected ok, got %v", want+1, err)
		}
		if idx != want {
			t.Fatalf("expected earliest unpaid index %d, got %d", want, idx)
		}
		if !g.Installments[idx].EMI.Paid {
			t.Fatalf("installment %d must be marked paid", idx)
		}
	}
	if g.Active {
		t.Fatalf("fully paid group must be inactive")
	}
	if _, err := g.MarkInstallmentPaid(); !errors.Is(err, ErrNoUnpaidInstallments) {
		t.Fatalf("expected ErrNoUnpaidInstallments, got %v", err)
	}
}

func TestElapsedInstallments(t *testing.T) {
	entries, _ := ExpandEMI("Phone", Money{Cents: 30000}, 3, "2024-01")
	g := GroupEMIs(entries)[0]

	now := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if got := g.ElapsedInstallments(now); got != 2 {
		t.Fatalf("expected 2 elapsed installments, got %d", got)
	}
	before := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	if got := g.ElapsedInstallments(before); got != 0 {
		t.Fatalf("expected 0 elapsed installments, got %d", got)
	}
}
