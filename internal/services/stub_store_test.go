package services

import (
	"context"
	"errors"

	"budgetly/internal/core"
)

var errStubNotFound = errors.New("not found")

// stubStore is an in-memory Store for service tests.
type stubStore struct {
	users       map[string]core.User
	entries     map[string][]storedEntry // per uid, insertion order
	suggestions map[string]core.PurchaseSuggestion
}

type storedEntry struct {
	income  *core.IncomeEntry
	expense *core.ExpenseEntry
}

func newStubStore() *stubStore {
	return &stubStore{
		users:       make(map[string]core.User),
		entries:     make(map[string][]storedEntry),
		suggestions: make(map[string]core.PurchaseSuggestion),
	}
}

func (s *stubStore) UpsertUser(_ context.Context, u core.User) error {
	existing, ok := s.users[u.UID]
	if ok {
		existing.Name = u.Name
		existing.Email = u.Email
		existing.AvatarURL = u.AvatarURL
		s.users[u.UID] = existing
		return nil
	}
	s.users[u.UID] = u
	return nil
}

func (s *stubStore) GetUser(_ context.Context, uid string) (core.User, error) {
	u, ok := s.users[uid]
	if !ok {
		return core.User{}, errStubNotFound
	}
	return u, nil
}

func (s *stubStore) UpdateProfile(_ context.Context, uid, name, location, occupation string, savingsCents int64) error {
	u, ok := s.users[uid]
	if !ok {
		return errStubNotFound
	}
	u.Name = name
	u.Location = location
	u.Occupation = occupation
	u.Savings = core.Money{Cents: savingsCents}
	s.users[uid] = u
	return nil
}

func (s *stubStore) LoadLedger(_ context.Context, uid string) (core.Ledger, error) {
	ledger := core.NewLedger()
	for _, se := range s.entries[uid] {
		if se.income != nil {
			ledger.UpsertIncome(*se.income)
		}
		if se.expense != nil {
			ledger.UpsertExpense(*se.expense)
		}
	}
	return ledger, nil
}

func (s *stubStore) CreateIncome(_ context.Context, uid string, e core.IncomeEntry) error {
	s.entries[uid] = append(s.entries[uid], storedEntry{income: &e})
	return nil
}

func (s *stubStore) UpdateIncome(_ context.Context, uid string, e core.IncomeEntry) error {
	for i, se := range s.entries[uid] {
		if se.income != nil && se.income.ID == e.ID {
			s.entries[uid][i] = storedEntry{income: &e}
			return nil
		}
	}
	return errStubNotFound
}

func (s *stubStore) CreateExpense(_ context.Context, uid string, e core.ExpenseEntry) error {
	s.entries[uid] = append(s.entries[uid], storedEntry{expense: &e})
	return nil
}

func (s *stubStore) UpdateExpense(_ context.Context, uid string, e core.ExpenseEntry) error {
	for i, se := range s.entries[uid] {
		if se.expense != nil && se.expense.ID == e.ID {
			kept := se.expense
			kept.Date = e.Date
			kept.Label = e.Label
			kept.Category = e.Category
			kept.Amount = e.Amount
			s.entries[uid][i] = storedEntry{expense: kept}
			return nil
		}
	}
	return errStubNotFound
}

func (s *stubStore) CreateExpenseBatch(_ context.Context, uid string, entries []core.ExpenseEntry) error {
	for _, e := range entries {
		e := e
		s.entries[uid] = append(s.entries[uid], storedEntry{expense: &e})
	}
	return nil
}

func (s *stubStore) DeleteEntry(_ context.Context, uid, id string, kind core.EntryKind) error {
	for i, se := range s.entries[uid] {
		match := (kind == core.KindIncome && se.income != nil && se.income.ID == id) ||
			(kind == core.KindExpense && se.expense != nil && se.expense.ID == id)
		if match {
			s.entries[uid] = append(s.entries[uid][:i], s.entries[uid][i+1:]...)
			return nil
		}
	}
	return errStubNotFound
}

func (s *stubStore) ListEMIExpenses(_ context.Context, uid string) ([]core.ExpenseEntry, error) {
	var out []core.ExpenseEntry
	for _, se := range s.entries[uid] {
		if se.expense != nil && se.expense.Type == core.EMI {
			out = append(out, *se.expense)
		}
	}
	return out, nil
}

func (s *stubStore) SetInstallmentPaid(_ context.Context, uid, entryID string, remainingMonths int) error {
	for _, se := range s.entries[uid] {
		if se.expense != nil && se.expense.ID == entryID && se.expense.EMI != nil {
			se.expense.EMI.Paid = true
			se.expense.EMI.RemainingMonths = remainingMonths
			return nil
		}
	}
	return errStubNotFound
}

func (s *stubStore) CreateSuggestion(_ context.Context, sg core.PurchaseSuggestion) error {
	s.suggestions[sg.ID] = sg
	return nil
}

func (s *stubStore) GetSuggestion(_ context.Context, id string) (core.PurchaseSuggestion, error) {
	sg, ok := s.suggestions[id]
	if !ok {
		return core.PurchaseSuggestion{}, errStubNotFound
	}
	return sg, nil
}

func (s *stubStore) ListSuggestions(_ context.Context, uid string) ([]core.PurchaseSuggestion, error) {
	var out []core.PurchaseSuggestion
	for _, sg := range s.suggestions {
		if sg.UID == uid {
			out = append(out, sg)
		}
	}
	return out, nil
}

func (s *stubStore) DeleteSuggestion(_ context.Context, uid, id string) error {
	sg, ok := s.suggestions[id]
	if !ok || sg.UID != uid {
		return errStubNotFound
	}
	delete(s.suggestions, id)
	return nil
}

func (s *stubStore) UpdateSuggestionReason(_ context.Context, id, reason string) error {
	sg, ok := s.suggestions[id]
	if !ok {
		return errStubNotFound
	}
	sg.Reason = reason
	s.suggestions[id] = sg
	return nil
}
