package core

import "sort"

// MonthSlice holds the entries whose effective date falls in one calendar
// month. Entry order within a slice is not significant.
type MonthSlice struct {
	Incomes  []IncomeEntry
	Expenses []ExpenseEntry
}

// Ledger maps month keys to their slices. Invariant: every entry's derived
// month key equals its containing slice's key; the Upsert methods enforce it.
type Ledger map[MonthKey]*MonthSlice

func NewLedger() Ledger {
	return make(Ledger)
}

func (l Ledger) slice(key MonthKey) *MonthSlice {
	s, ok := l[key]
	if !ok {
		s = &MonthSlice{}
		l[key] = s
	}
	return s
}

// Slice returns the month's entries, or an empty slice when the month has none.
func (l Ledger) Slice(key MonthKey) MonthSlice {
	if s, ok := l[key]; ok {
		return *s
	}
	return MonthSlice{}
}

// UpsertIncome inserts the entry into the month derived from its date, or
// replaces the entry with matching ID if one exists in that month.
func (l Ledger) UpsertIncome(e IncomeEntry) {
	s := l.slice(e.Date.Key())
	for i := range s.Incomes {
		if s.Incomes[i].ID == e.ID {
			s.Incomes[i] = e
			return
		}
	}
	s.Incomes = append(s.Incomes, e)
}

// UpsertExpense inserts or replaces an expense entry in its owning month.
func (l Ledger) UpsertExpense(e ExpenseEntry) {
	s := l.slice(e.Date.Key())
	for i := range s.Expenses {
		if s.Expenses[i].ID == e.ID {
			s.Expenses[i] = e
			return
		}
	}
	s.Expenses = append(s.Expenses, e)
}

// RemoveIncome removes the income entry with the given ID from the month.
// Returns ErrEntryNotFound when the month or the entry is absent.
func (l Ledger) RemoveIncome(key MonthKey, id string) error {
	s, ok := l[key]
	if !ok {
		return ErrEntryNotFound
	}
	for i := range s.Incomes {
		if s.Incomes[i].ID == id {
			s.Incomes = append(s.Incomes[:i], s.Incomes[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// RemoveExpense removes the expense entry with the given ID from the month.
func (l Ledger) RemoveExpense(key MonthKey, id string) error {
	s, ok := l[key]
	if !ok {
		return ErrEntryNotFound
	}
	for i := range s.Expenses {
		if s.Expenses[i].ID == id {
			s.Expenses = append(s.Expenses[:i], s.Expenses[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// AvailableMonths returns the month keys present in the ledger, newest first.
// "YYYY-MM" keys sort chronologically as strings, so reverse string order is
// reverse chronological order.
func (l Ledger) AvailableMonths() []MonthKey {
	keys := make([]MonthKey, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	return keys
}

// AllExpenses flattens every month's expense entries, used by the EMI grouping
// projection which spans months.
func (l Ledger) AllExpenses() []ExpenseEntry {
	var out []ExpenseEntry
	for _, k := range l.AvailableMonths() {
		out = append(out, l[k].Expenses...)
	}
	return out
}

// SumIncome returns the arithmetic sum of the entries' amounts. Empty input
// yields zero.
func SumIncome(entries []IncomeEntry) Money {
	var total int64
	for _, e := range entries {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}

// SumExpenses returns the arithmetic sum of the entries' amounts.
func SumExpenses(entries []ExpenseEntry) Money {
	var total int64
	for _, e := range entries {
		total += e.Amount.Cents
	}
	return Money{Cents: total}
}

// FilterIncomesByMonth returns the subsequence whose derived month key equals
// the given key.
func FilterIncomesByMonth(entries []IncomeEntry, key MonthKey) []IncomeEntry {
	var out []IncomeEntry
	for _, e := range entries {
		if e.Date.Key() == key {
			out = append(out, e)
		}
	}
	return out
}

// FilterExpensesByMonth returns the subsequence whose derived month key equals
// the given key.
func FilterExpensesByMonth(entries []ExpenseEntry, key MonthKey) []ExpenseEntry {
	var out []ExpenseEntry
	for _, e := range entries {
		if e.Date.Key() == key {
			out = append(out, e)
		}
	}
	return out
}
