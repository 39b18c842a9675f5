package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

// ErrGroupNotFound is returned when an installment group ID matches no entries.
var ErrGroupNotFound = errors.New("emi group not found")

// LedgerService orchestrates user and ledger operations. Mutations write to
// the store and return the reloaded full ledger, so callers always see the
// complete updated document.
type LedgerService struct {
	store   Store
	logger  *applog.Logger
	nowFunc func() time.Time
}

func NewLedgerService(store Store, logger *applog.Logger) *LedgerService {
	return &LedgerService{
		store:   store,
		logger:  logger.WithComponent(applog.ComponentLedger),
		nowFunc: time.Now,
	}
}

// SyncUser creates or refreshes the user document on sign-in.
func (s *LedgerService) SyncUser(ctx context.Context, u core.User) (core.User, error) {
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("sync user: %w", err)
	}
	return s.store.GetUser(ctx, u.UID)
}

func (s *LedgerService) Profile(ctx context.Context, uid string) (core.User, error) {
	return s.store.GetUser(ctx, uid)
}

func (s *LedgerService) UpdateProfile(ctx context.Context, uid, name, location, occupation string, savings core.Money) (core.User, error) {
	if savings.Cents < 0 {
		return core.User{}, core.ErrInvalidAmount
	}
	if err := s.store.UpdateProfile(ctx, uid, name, location, occupation, savings.Cents); err != nil {
		return core.User{}, err
	}
	return s.store.GetUser(ctx, uid)
}

// Ledger returns the user's full monthly ledger.
func (s *LedgerService) Ledger(ctx context.Context, uid string) (core.Ledger, error) {
	return s.store.LoadLedger(ctx, uid)
}

// Months returns the month keys with at least one entry, newest first.
func (s *LedgerService) Months(ctx context.Context, uid string) ([]core.MonthKey, error) {
	ledger, err := s.store.LoadLedger(ctx, uid)
	if err != nil {
		return nil, err
	}
	return ledger.AvailableMonths(), nil
}

// MonthSlice returns one month's entries.
func (s *LedgerService) MonthSlice(ctx context.Context, uid string, month core.MonthKey) (core.MonthSlice, error) {
	ledger, err := s.store.LoadLedger(ctx, uid)
	if err != nil {
		return core.MonthSlice{}, err
	}
	return ledger.Slice(month), nil
}

// AddIncome validates and persists a new income entry, then returns the
// updated ledger.
func (s *LedgerService) AddIncome(ctx context.Context, uid string, e core.IncomeEntry) (core.Ledger, error) {
	e.ID = uuid.NewString()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateIncome(ctx, uid, e); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Income added",
		applog.FieldUID, uid,
		applog.FieldEntryID, e.ID,
		applog.FieldMonth, string(e.Date.Key()))
	return s.store.LoadLedger(ctx, uid)
}

// UpdateIncome replaces an existing income entry.
func (s *LedgerService) UpdateIncome(ctx context.Context, uid string, e core.IncomeEntry) (core.Ledger, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateIncome(ctx, uid, e); err != nil {
		return nil, err
	}
	return s.store.LoadLedger(ctx, uid)
}

// AddExpense validates and persists a new one-time expense entry.
func (s *LedgerService) AddExpense(ctx context.Context, uid string, e core.ExpenseEntry) (core.Ledger, error) {
	e.ID = uuid.NewString()
	if e.Type == "" {
		e.Type = core.OneTime
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateExpense(ctx, uid, e); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Expense added",
		applog.FieldUID, uid,
		applog.FieldEntryID, e.ID,
		applog.FieldMonth, string(e.Date.Key()))
	return s.store.LoadLedger(ctx, uid)
}

// UpdateExpense replaces an existing expense entry's editable fields. The
// stored expense type and installment bookkeeping are untouched, so only the
// shared fields are validated here.
func (s *LedgerService) UpdateExpense(ctx context.Context, uid string, e core.ExpenseEntry) (core.Ledger, error) {
	shared := e
	shared.Type = core.OneTime
	shared.EMI = nil
	if err := shared.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, uid, e); err != nil {
		return nil, err
	}
	return s.store.LoadLedger(ctx, uid)
}

// DeleteEntry removes the entry with the given ID, scoped to its kind so an
// income route can never delete an expense or vice versa.
func (s *LedgerService) DeleteEntry(ctx context.Context, uid, id string, kind core.EntryKind) (core.Ledger, error) {
	if err := s.store.DeleteEntry(ctx, uid, id, kind); err != nil {
		return nil, err
	}
	return s.store.LoadLedger(ctx, uid)
}

// AddEMIPurchase expands an installment purchase into monthly entries and
// persists them in one transactional batch.
func (s *LedgerService) AddEMIPurchase(ctx context.Context, uid, productName string, total core.Money, durationMonths int, startMonth core.MonthKey) (core.Ledger, error) {
	entries, err := core.ExpandEMI(productName, total, durationMonths, startMonth)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateExpenseBatch(ctx, uid, entries); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "EMI purchase expanded",
		applog.FieldUID, uid,
		applog.FieldProduct, productName,
		applog.FieldEMIGroup, entries[0].EMI.GroupID,
		"months", durationMonths)
	return s.store.LoadLedger(ctx, uid)
}

// EMIGroups returns the user's installment purchases as logical groups.
func (s *LedgerService) EMIGroups(ctx context.Context, uid string) ([]core.EMIGroup, error) {
	entries, err := s.store.ListEMIExpenses(ctx, uid)
	if err != nil {
		return nil, err
	}
	return core.GroupEMIs(entries), nil
}

// PayInstallment marks the earliest unpaid installment in the group as paid.
// The paid flag and remaining-months counter are the authoritative payment
// state; due dates are only a reporting view.
func (s *LedgerService) PayInstallment(ctx context.Context, uid, groupID string) (core.EMIGroup, error) {
	groups, err := s.EMIGroups(ctx, uid)
	if err != nil {
		return core.EMIGroup{}, err
	}
	for i := range groups {
		if groups[i].GroupID != groupID {
			continue
		}
		idx, err := groups[i].MarkInstallmentPaid()
		if err != nil {
			return core.EMIGroup{}, err
		}
		inst := groups[i].Installments[idx]
		if err := s.store.SetInstallmentPaid(ctx, uid, inst.ID, inst.EMI.RemainingMonths); err != nil {
			return core.EMIGroup{}, err
		}
		s.logger.InfoContext(ctx, "Installment paid",
			applog.FieldUID, uid,
			applog.FieldEMIGroup, groupID,
			applog.FieldEntryID, inst.ID,
			"sequence", inst.EMI.Sequence)
		return groups[i], nil
	}
	return core.EMIGroup{}, ErrGroupNotFound
}

// Dashboard is one month's entries plus its derived metrics.
type Dashboard struct {
	Month   core.MonthKey
	Slice   core.MonthSlice
	Metrics core.MonthMetrics
}

// MonthDashboard assembles the dashboard for the given month. An empty month
// key selects the current calendar month.
func (s *LedgerService) MonthDashboard(ctx context.Context, uid string, month core.MonthKey) (Dashboard, error) {
	if month == "" {
		now := s.nowFunc().UTC()
		month = core.NewDate(now.Year(), int(now.Month()), now.Day()).Key()
	}

	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return Dashboard{}, err
	}
	ledger, err := s.store.LoadLedger(ctx, uid)
	if err != nil {
		return Dashboard{}, err
	}

	slice := ledger.Slice(month)
	return Dashboard{
		Month:   month,
		Slice:   slice,
		Metrics: core.ComputeMonthMetrics(slice, user.Savings),
	}, nil
}
