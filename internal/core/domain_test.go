package core

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	cases := []struct {
		d    Date
		want MonthKey
	}{
		{NewDate(2024, 1, 15), "2024-01"},
		{NewDate(2024, 12, 31), "2024-12"},
		{NewDate(999, 7, 1), "0999-07"},
	}
	for i, tc := range cases {
		if got := tc.d.Key(); got != tc.want {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01", true},
		{"2024-12", true},
		{"2024-13", false},
		{"2024-00", false},
		{"2024-1", false},
		{"202401", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := ParseMonthKey(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMonthKeyAdvance(t *testing.T) {
	cases := []struct {
		in   MonthKey
		n    int
		want MonthKey
	}{
		{"2024-01", 0, "2024-01"},
		{"2024-01", 1, "2024-02"},
		{"2024-11", 2, "2025-01"},
		{"2024-12", 12, "2025-12"},
	}
	for i, tc := range cases {
		if got := tc.in.Advance(tc.n); got != tc.want {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}
}

func TestIncomeEntryValidate(t *testing.T) {
	good := IncomeEntry{
		Date:   NewDate(2024, 3, 1),
		Label:  "Salary",
		Source: "employment",
		Amount: Money{Cents: 500000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []IncomeEntry{
		{Date: Date{Time: time.Time{}}, Label: "a", Source: "s", Amount: Money{Cents: 1}},
		{Date: NewDate(2024, 3, 1), Label: "", Source: "s", Amount: Money{Cents: 1}},
		{Date: NewDate(2024, 3, 1), Label: "a", Source: "", Amount: Money{Cents: 1}},
		{Date: NewDate(2024, 3, 1), Label: "a", Source: "s", Amount: Money{Cents: 0}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{
		Date:     NewDate(2024, 3, 1),
		Label:    "Groceries",
		Category: "food",
		Amount:   Money{Cents: 4200},
		Type:     OneTime,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	emiGood := good
	emiGood.Type = EMI
	emiGood.EMI = &EMIDetails{Sequence: 1, TotalMonths: 12, RemainingMonths: 11, MonthlyAmount: Money{Cents: 4200}, StartDate: NewDate(2024, 3, 1)}
	if err := emiGood.Validate(); err != nil {
		t.Fatalf("expected emi ok, got %v", err)
	}

	bads := []ExpenseEntry{
		{Date: NewDate(2024, 3, 1), Label: "a", Category: "c", Amount: Money{Cents: 1}, Type: "weird"},
		{Date: NewDate(2024, 3, 1), Label: "a", Category: "c", Amount: Money{Cents: 1}, Type: EMI}, // missing details
		{Date: NewDate(2024, 3, 1), Label: "a", Category: "c", Amount: Money{Cents: 1}, Type: OneTime, EMI: &EMIDetails{}},
		{Date: NewDate(2024, 3, 1), Label: "a", Category: "c", Amount: Money{Cents: 1}, Type: EMI, EMI: &EMIDetails{Sequence: 3, TotalMonths: 2}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
