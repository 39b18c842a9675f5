package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	OneTime ExpenseType = "one-time"
	EMI     ExpenseType = "emi"
)

const (
	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"
)

type (
	ExpenseType string

	// EntryKind distinguishes the two entry kinds sharing the ledger. Deletes
	// are scoped by kind so an income ID can never remove an expense.
	EntryKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// MonthKey is a calendar month in the literal "YYYY-MM" format. Keys sort
	// chronologically under plain string comparison.
	MonthKey string

	User struct {
		UID        string
		Name       string
		Email      string
		AvatarURL  string
		Location   string
		Occupation string
		Savings    Money
		CreatedAt  time.Time
	}

	IncomeEntry struct {
		ID     string
		Date   Date
		Label  string
		Source string // income source category
		Amount Money
	}

	// EMIDetails carries the installment bookkeeping for an emi-typed expense.
	// RemainingMonths and Paid are the authoritative payment state; date-elapsed
	// views are derived from them, never the other way around.
	EMIDetails struct {
		GroupID         string
		Sequence        int // 1-based installment number
		TotalMonths     int
		RemainingMonths int
		MonthlyAmount   Money
		StartDate       Date
		Paid            bool
	}

	ExpenseEntry struct {
		ID       string
		Date     Date
		Label    string
		Category string
		Amount   Money
		Type     ExpenseType
		EMI      *EMIDetails
	}

	PurchaseSuggestion struct {
		ID             string
		UID            string
		ProductName    string
		Price          Money
		MonthlyEMI     Money
		DurationMonths int
		Classification RiskLevel
		Reason         string
		CreatedAt      time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMonthKey = errors.New("invalid month key")
	ErrEmptyLabel      = errors.New("empty label")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEntryNotFound   = errors.New("entry not found")
)

// NewDate creates a date-only value. Effective dates carry no time-of-day
// component, so all dates live at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Key derives the owning month key from the date's calendar components. This is
// the single month-key derivation in the codebase.
func (d Date) Key() MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", d.Year(), int(d.Time.Month())))
}

// ParseMonthKey validates and returns a "YYYY-MM" key.
func ParseMonthKey(s string) (MonthKey, error) {
	if len(s) != 7 || s[4] != '-' {
		return "", ErrInvalidMonthKey
	}
	var year, month int
	if _, err := fmt.Sscanf(s, "%4d-%2d", &year, &month); err != nil {
		return "", ErrInvalidMonthKey
	}
	if year < 1 || month < 1 || month > 12 {
		return "", ErrInvalidMonthKey
	}
	return MonthKey(s), nil
}

// Date returns the first day of the key's month.
func (k MonthKey) Date() Date {
	var year, month int
	_, _ = fmt.Sscanf(string(k), "%4d-%2d", &year, &month)
	return NewDate(year, month, 1)
}

// Advance returns the key n calendar months later.
func (k MonthKey) Advance(n int) MonthKey {
	d := k.Date()
	return Date{Time: d.AddDate(0, n, 0)}.Key()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e IncomeEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Label)) == 0 {
		return ErrEmptyLabel
	}
	if len(e.Label) > 200 {
		return errors.New("label too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Source) == "" {
		return ErrEmptyCategory
	}
	return e.Amount.Validate()
}

func (e ExpenseEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Label)) == 0 {
		return ErrEmptyLabel
	}
	if len(e.Label) > 200 {
		return errors.New("label too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	switch e.Type {
	case OneTime:
		if e.EMI != nil {
			return errors.New("one-time expense cannot carry emi details")
		}
	case EMI:
		if e.EMI == nil {
			return errors.New("emi expense requires emi details")
		}
		if e.EMI.Sequence < 1 || e.EMI.TotalMonths < 1 || e.EMI.Sequence > e.EMI.TotalMonths {
			return errors.New("emi sequence out of range")
		}
		if e.EMI.RemainingMonths < 0 {
			return errors.New("negative remaining months")
		}
	default:
		return fmt.Errorf("invalid expense type %q", e.Type)
	}
	return nil
}
