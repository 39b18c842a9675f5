package services

import (
	"context"

	"budgetly/internal/core"
)

// Store is the persistence surface the services need. *storage.Repository
// satisfies it; tests substitute an in-memory stub.
type Store interface {
	UpsertUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, uid string) (core.User, error)
	UpdateProfile(ctx context.Context, uid, name, location, occupation string, savingsCents int64) error

	LoadLedger(ctx context.Context, uid string) (core.Ledger, error)
	CreateIncome(ctx context.Context, uid string, e core.IncomeEntry) error
	UpdateIncome(ctx context.Context, uid string, e core.IncomeEntry) error
	CreateExpense(ctx context.Context, uid string, e core.ExpenseEntry) error
	UpdateExpense(ctx context.Context, uid string, e core.ExpenseEntry) error
	CreateExpenseBatch(ctx context.Context, uid string, entries []core.ExpenseEntry) error
	DeleteEntry(ctx context.Context, uid, id string, kind core.EntryKind) error
	ListEMIExpenses(ctx context.Context, uid string) ([]core.ExpenseEntry, error)
	SetInstallmentPaid(ctx context.Context, uid, entryID string, remainingMonths int) error

	CreateSuggestion(ctx context.Context, s core.PurchaseSuggestion) error
	GetSuggestion(ctx context.Context, id string) (core.PurchaseSuggestion, error)
	ListSuggestions(ctx context.Context, uid string) ([]core.PurchaseSuggestion, error)
	DeleteSuggestion(ctx context.Context, uid, id string) error
	UpdateSuggestionReason(ctx context.Context, id, reason string) error
}
