package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError})
}

func newTestLedgerService() (*LedgerService, *stubStore) {
	store := newStubStore()
	svc := NewLedgerService(store, testLogger())
	svc.nowFunc = func() time.Time {
		return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, store
}

func seedUser(t *testing.T, store *stubStore, uid string, savingsCents int64) {
	t.Helper()
	store.users[uid] = core.User{
		UID:     uid,
		Name:    "Test User",
		Savings: core.Money{Cents: savingsCents},
	}
}

func TestLedgerService_AddIncomeReturnsUpdatedLedger(t *testing.T) {
	svc, _ := newTestLedgerService()
	ctx := context.Background()

	ledger, err := svc.AddIncome(ctx, "u1", core.IncomeEntry{
		Date:   core.NewDate(2025, 3, 1),
		Label:  "Salary",
		Source: "employment",
		Amount: core.Money{Cents: 500000},
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}

	slice := ledger.Slice("2025-03")
	if len(slice.Incomes) != 1 {
		t.Fatalf("incomes in 2025-03 = %d, want 1", len(slice.Incomes))
	}
	if slice.Incomes[0].ID == "" {
		t.Error("entry should have a generated ID")
	}
}

func TestLedgerService_AddIncomeValidation(t *testing.T) {
	svc, _ := newTestLedgerService()
	ctx := context.Background()

	tests := []struct {
		name  string
		entry core.IncomeEntry
		want  error
	}{
		{
			name: "zero amount",
			entry: core.IncomeEntry{
				Date: core.NewDate(2025, 3, 1), Label: "x", Source: "s",
			},
			want: core.ErrInvalidAmount,
		},
		{
			name: "blank label",
			entry: core.IncomeEntry{
				Date: core.NewDate(2025, 3, 1), Label: "  ", Source: "s",
				Amount: core.Money{Cents: 100},
			},
			want: core.ErrEmptyLabel,
		},
		{
			name: "missing source",
			entry: core.IncomeEntry{
				Date: core.NewDate(2025, 3, 1), Label: "x",
				Amount: core.Money{Cents: 100},
			},
			want: core.ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddIncome(ctx, "u1", tt.entry); !errors.Is(err, tt.want) {
				t.Errorf("AddIncome() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLedgerService_AddEMIPurchase(t *testing.T) {
	svc, store := newTestLedgerService()
	ctx := context.Background()

	ledger, err := svc.AddEMIPurchase(ctx, "u1", "Phone", core.Money{Cents: 120000}, 12, "2025-03")
	if err != nil {
		t.Fatalf("AddEMIPurchase() error = %v", err)
	}

	months := ledger.AvailableMonths()
	if len(months) != 12 {
		t.Fatalf("months = %d, want 12", len(months))
	}
	// newest first
	if months[0] != "2026-02" || months[11] != "2025-03" {
		t.Errorf("month range = %s..%s, want 2026-02..2025-03", months[0], months[11])
	}

	var total int64
	for _, e := range ledger.AllExpenses() {
		total += e.Amount.Cents
	}
	if total != 120000 {
		t.Errorf("installments sum = %d, want 120000", total)
	}

	if len(store.entries["u1"]) != 12 {
		t.Errorf("stored entries = %d, want 12", len(store.entries["u1"]))
	}
}

func TestLedgerService_AddEMIPurchaseInvalidDuration(t *testing.T) {
	svc, _ := newTestLedgerService()
	ctx := context.Background()

	if _, err := svc.AddEMIPurchase(ctx, "u1", "Phone", core.Money{Cents: 1000}, 0, "2025-03"); !errors.Is(err, core.ErrInvalidDuration) {
		t.Errorf("duration 0 error = %v, want ErrInvalidDuration", err)
	}
	if _, err := svc.AddEMIPurchase(ctx, "u1", "Phone", core.Money{Cents: 1000}, 121, "2025-03"); !errors.Is(err, core.ErrInvalidDuration) {
		t.Errorf("duration 121 error = %v, want ErrInvalidDuration", err)
	}
}

func TestLedgerService_PayInstallment(t *testing.T) {
	svc, _ := newTestLedgerService()
	ctx := context.Background()

	if _, err := svc.AddEMIPurchase(ctx, "u1", "Phone", core.Money{Cents: 30000}, 3, "2025-03"); err != nil {
		t.Fatalf("AddEMIPurchase() error = %v", err)
	}

	groups, err := svc.EMIGroups(ctx, "u1")
	if err != nil {
		t.Fatalf("EMIGroups() error = %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	groupID := groups[0].GroupID

	// Pay all three installments in sequence.
	for i := 1; i <= 3; i++ {
		g, err := svc.PayInstallment(ctx, "u1", groupID)
		if err != nil {
			t.Fatalf("PayInstallment() #%d error = %v", i, err)
		}
		if g.PaidMonths != i {
			t.Errorf("after payment %d, PaidMonths = %d", i, g.PaidMonths)
		}
	}

	// Fourth payment has nothing left to pay.
	if _, err := svc.PayInstallment(ctx, "u1", groupID); !errors.Is(err, core.ErrNoUnpaidInstallments) {
		t.Errorf("extra payment error = %v, want ErrNoUnpaidInstallments", err)
	}

	groups, _ = svc.EMIGroups(ctx, "u1")
	if groups[0].Active {
		t.Error("fully paid group should be inactive")
	}
}

func TestLedgerService_PayInstallmentUnknownGroup(t *testing.T) {
	svc, _ := newTestLedgerService()

	if _, err := svc.PayInstallment(context.Background(), "u1", "nope"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("error = %v, want ErrGroupNotFound", err)
	}
}

func TestLedgerService_MonthDashboard(t *testing.T) {
	svc, store := newTestLedgerService()
	ctx := context.Background()
	seedUser(t, store, "u1", 600000)

	if _, err := svc.AddIncome(ctx, "u1", core.IncomeEntry{
		Date: core.NewDate(2025, 3, 1), Label: "Salary", Source: "employment",
		Amount: core.Money{Cents: 500000},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddExpense(ctx, "u1", core.ExpenseEntry{
		Date: core.NewDate(2025, 3, 5), Label: "Rent", Category: "housing",
		Amount: core.Money{Cents: 200000},
	}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.MonthDashboard(ctx, "u1", "2025-03")
	if err != nil {
		t.Fatalf("MonthDashboard() error = %v", err)
	}
	if d.Metrics.TotalIncome.Cents != 500000 {
		t.Errorf("TotalIncome = %d, want 500000", d.Metrics.TotalIncome.Cents)
	}
	if d.Metrics.TotalExpenses.Cents != 200000 {
		t.Errorf("TotalExpenses = %d, want 200000", d.Metrics.TotalExpenses.Cents)
	}
	if d.Metrics.SavingsRate != 60 {
		t.Errorf("SavingsRate = %v, want 60", d.Metrics.SavingsRate)
	}
}

func TestLedgerService_MonthDashboardDefaultsToCurrentMonth(t *testing.T) {
	svc, store := newTestLedgerService()
	seedUser(t, store, "u1", 0)

	d, err := svc.MonthDashboard(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("MonthDashboard() error = %v", err)
	}
	if d.Month != "2025-03" {
		t.Errorf("Month = %s, want 2025-03 (from injected clock)", d.Month)
	}
}

func TestLedgerService_UpdateProfileRejectsNegativeSavings(t *testing.T) {
	svc, store := newTestLedgerService()
	seedUser(t, store, "u1", 100)

	if _, err := svc.UpdateProfile(context.Background(), "u1", "n", "l", "o", core.Money{Cents: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
}

func TestLedgerService_SyncUserPreservesProfileFields(t *testing.T) {
	svc, store := newTestLedgerService()
	ctx := context.Background()

	seedUser(t, store, "u1", 12345)
	if err := store.UpdateProfile(ctx, "u1", "Old Name", "Berlin", "Engineer", 12345); err != nil {
		t.Fatal(err)
	}

	u, err := svc.SyncUser(ctx, core.User{UID: "u1", Name: "New Name", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}
	if u.Name != "New Name" {
		t.Errorf("Name = %q, want refreshed name", u.Name)
	}
	if u.Location != "Berlin" || u.Occupation != "Engineer" {
		t.Error("profile edits should survive re-sync")
	}
	if u.Savings.Cents != 12345 {
		t.Errorf("Savings = %d, want 12345", u.Savings.Cents)
	}
}

func TestLedgerService_DeleteEntry(t *testing.T) {
	svc, _ := newTestLedgerService()
	ctx := context.Background()

	ledger, err := svc.AddExpense(ctx, "u1", core.ExpenseEntry{
		Date: core.NewDate(2025, 3, 5), Label: "Coffee", Category: "food",
		Amount: core.Money{Cents: 450},
	})
	if err != nil {
		t.Fatal(err)
	}
	id := ledger.Slice("2025-03").Expenses[0].ID

	// The wrong kind must not match even with the right ID.
	if _, err := svc.DeleteEntry(ctx, "u1", id, core.KindIncome); err == nil {
		t.Error("deleting an expense through the income kind should fail")
	}

	ledger, err = svc.DeleteEntry(ctx, "u1", id, core.KindExpense)
	if err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if len(ledger.Slice("2025-03").Expenses) != 0 {
		t.Error("entry should be gone from the reloaded ledger")
	}

	if _, err := svc.DeleteEntry(ctx, "u1", id, core.KindExpense); err == nil {
		t.Error("deleting a missing entry should fail")
	}
}
