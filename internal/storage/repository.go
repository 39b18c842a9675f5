package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetly/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced user, entry, or suggestion does
// not exist.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// Repository is the persistence collaborator. Per the document-store contract,
// every entry mutation is followed by a full ledger reload so callers always
// observe the complete updated document.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertUser creates the user document on first sign-in, or refreshes the
// identity-provided profile fields on subsequent sign-ins. Savings and the
// editable profile fields are never overwritten here.
func (r *Repository) UpsertUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (uid, name, email, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url`,
		u.UID, u.Name, u.Email, u.AvatarURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, uid string) (core.User, error) {
	var u core.User
	var savings int64
	err := r.db.QueryRowContext(ctx, `
		SELECT uid, name, email, avatar_url, location, occupation, savings_cents, created_at
		FROM users WHERE uid = ?`, uid).
		Scan(&u.UID, &u.Name, &u.Email, &u.AvatarURL, &u.Location, &u.Occupation, &savings, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Savings = core.Money{Cents: savings}
	return u, nil
}

// UpdateProfile applies a profile edit (display name, location, occupation,
// accumulated savings).
func (r *Repository) UpdateProfile(ctx context.Context, uid, name, location, occupation string, savingsCents int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, location = ?, occupation = ?, savings_cents = ?
		WHERE uid = ?`,
		name, location, occupation, savingsCents, uid)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadLedger reconstructs the user's full monthly ledger from the entries
// table.
func (r *Repository) LoadLedger(ctx context.Context, uid string) (core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, entry_date, label, category, amount_cents,
		       expense_type, emi_group, emi_sequence, emi_total_months,
		       emi_remaining_months, emi_monthly_cents, emi_start_date, emi_paid
		FROM entries WHERE uid = ?
		ORDER BY entry_date, created_at`, uid)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	ledger := core.NewLedger()
	for rows.Next() {
		var (
			id, kind, dateStr, label, category      string
			amount                                  int64
			expenseType, emiGroup, emiStart         sql.NullString
			emiSeq, emiTotal, emiRemaining, emiPaid sql.NullInt64
			emiMonthly                              sql.NullInt64
		)
		if err := rows.Scan(&id, &kind, &dateStr, &label, &category, &amount,
			&expenseType, &emiGroup, &emiSeq, &emiTotal,
			&emiRemaining, &emiMonthly, &emiStart, &emiPaid); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}

		switch kind {
		case "income":
			ledger.UpsertIncome(core.IncomeEntry{
				ID:     id,
				Date:   date,
				Label:  label,
				Source: category,
				Amount: core.Money{Cents: amount},
			})
		case "expense":
			e := core.ExpenseEntry{
				ID:       id,
				Date:     date,
				Label:    label,
				Category: category,
				Amount:   core.Money{Cents: amount},
				Type:     core.ExpenseType(expenseType.String),
			}
			if e.Type == core.EMI {
				start, err := parseDate(emiStart.String)
				if err != nil {
					return nil, fmt.Errorf("entry %s emi start: %w", id, err)
				}
				e.EMI = &core.EMIDetails{
					GroupID:         emiGroup.String,
					Sequence:        int(emiSeq.Int64),
					TotalMonths:     int(emiTotal.Int64),
					RemainingMonths: int(emiRemaining.Int64),
					MonthlyAmount:   core.Money{Cents: emiMonthly.Int64},
					StartDate:       start,
					Paid:            emiPaid.Int64 != 0,
				}
			}
			ledger.UpsertExpense(e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return ledger, nil
}

func (r *Repository) CreateIncome(ctx context.Context, uid string, e core.IncomeEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entries (id, uid, kind, month_key, entry_date, label, category, amount_cents, created_at)
		VALUES (?, ?, 'income', ?, ?, ?, ?, ?, ?)`,
		e.ID, uid, string(e.Date.Key()), e.Date.Format(dateLayout), e.Label, e.Source, e.Amount.Cents, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	slog.InfoContext(ctx, "Income entry saved", "entry_id", e.ID, "uid", uid, "month", e.Date.Key(), "amount_cents", e.Amount.Cents)
	return nil
}

func (r *Repository) UpdateIncome(ctx context.Context, uid string, e core.IncomeEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET month_key = ?, entry_date = ?, label = ?, category = ?, amount_cents = ?
		WHERE id = ? AND uid = ? AND kind = 'income'`,
		string(e.Date.Key()), e.Date.Format(dateLayout), e.Label, e.Source, e.Amount.Cents, e.ID, uid)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateExpense(ctx context.Context, uid string, e core.ExpenseEntry) error {
	return r.insertExpense(ctx, r.db, uid, e)
}

// CreateExpenseBatch persists all entries of an EMI expansion in a single
// transaction. Either every installment lands or none do; there is no
// partially-created plan to repair.
func (r *Repository) CreateExpenseBatch(ctx context.Context, uid string, entries []core.ExpenseEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := r.insertExpense(ctx, tx, uid, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	slog.InfoContext(ctx, "Expense batch saved", "uid", uid, "count", len(entries))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) insertExpense(ctx context.Context, db execer, uid string, e core.ExpenseEntry) error {
	var (
		emiGroup, emiStart               sql.NullString
		emiSeq, emiTotal, emiRemaining   sql.NullInt64
		emiMonthly                       sql.NullInt64
		emiPaid                          int64
	)
	if e.EMI != nil {
		emiGroup = sql.NullString{String: e.EMI.GroupID, Valid: true}
		emiStart = sql.NullString{String: e.EMI.StartDate.Format(dateLayout), Valid: true}
		emiSeq = sql.NullInt64{Int64: int64(e.EMI.Sequence), Valid: true}
		emiTotal = sql.NullInt64{Int64: int64(e.EMI.TotalMonths), Valid: true}
		emiRemaining = sql.NullInt64{Int64: int64(e.EMI.RemainingMonths), Valid: true}
		emiMonthly = sql.NullInt64{Int64: e.EMI.MonthlyAmount.Cents, Valid: true}
		if e.EMI.Paid {
			emiPaid = 1
		}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO entries (id, uid, kind, month_key, entry_date, label, category, amount_cents,
		                     expense_type, emi_group, emi_sequence, emi_total_months,
		                     emi_remaining_months, emi_monthly_cents, emi_start_date, emi_paid, created_at)
		VALUES (?, ?, 'expense', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, uid, string(e.Date.Key()), e.Date.Format(dateLayout), e.Label, e.Category, e.Amount.Cents,
		string(e.Type), emiGroup, emiSeq, emiTotal, emiRemaining, emiMonthly, emiStart, emiPaid, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *Repository) UpdateExpense(ctx context.Context, uid string, e core.ExpenseEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET month_key = ?, entry_date = ?, label = ?, category = ?, amount_cents = ?
		WHERE id = ? AND uid = ? AND kind = 'expense'`,
		string(e.Date.Key()), e.Date.Format(dateLayout), e.Label, e.Category, e.Amount.Cents, e.ID, uid)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, uid, id string, kind core.EntryKind) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND uid = ? AND kind = ?`, id, uid, string(kind))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Entry deleted", "entry_id", id, "uid", uid, "kind", string(kind))
	return nil
}

// ListEMIExpenses returns all emi-typed expense entries for the user across
// every month, for the grouping projection.
func (r *Repository) ListEMIExpenses(ctx context.Context, uid string) ([]core.ExpenseEntry, error) {
	ledger, err := r.LoadLedger(ctx, uid)
	if err != nil {
		return nil, err
	}
	var out []core.ExpenseEntry
	for _, e := range ledger.AllExpenses() {
		if e.Type == core.EMI {
			out = append(out, e)
		}
	}
	return out, nil
}

// SetInstallmentPaid records an installment payment: the paid flag and the
// floored remaining-months counter together are the authoritative state.
func (r *Repository) SetInstallmentPaid(ctx context.Context, uid, entryID string, remainingMonths int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE entries SET emi_paid = 1, emi_remaining_months = ?
		WHERE id = ? AND uid = ? AND expense_type = 'emi'`,
		remainingMonths, entryID, uid)
	if err != nil {
		return fmt.Errorf("set installment paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateSuggestion(ctx context.Context, s core.PurchaseSuggestion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suggestions (id, uid, product_name, price_cents, monthly_emi_cents,
		                         duration_months, classification, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UID, s.ProductName, s.Price.Cents, s.MonthlyEMI.Cents,
		s.DurationMonths, string(s.Classification), s.Reason, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create suggestion: %w", err)
	}
	return nil
}

func (r *Repository) GetSuggestion(ctx context.Context, id string) (core.PurchaseSuggestion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, uid, product_name, price_cents, monthly_emi_cents, duration_months,
		       classification, reason, created_at
		FROM suggestions WHERE id = ?`, id)
	return scanSuggestion(row)
}

func (r *Repository) ListSuggestions(ctx context.Context, uid string) ([]core.PurchaseSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, product_name, price_cents, monthly_emi_cents, duration_months,
		       classification, reason, created_at
		FROM suggestions WHERE uid = ? ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var out []core.PurchaseSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteSuggestion(ctx context.Context, uid, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = ? AND uid = ?`, id, uid)
	if err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSuggestionReason stores the generative collaborator's refined reason
// text. The classification is rule-driven and never touched here.
func (r *Repository) UpdateSuggestionReason(ctx context.Context, id, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE suggestions SET reason = ?, refined = 1 WHERE id = ?`, reason, id)
	if err != nil {
		return fmt.Errorf("update suggestion reason: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnrefinedSuggestions returns suggestions still waiting for generative
// refinement, oldest first, for the worker's periodic sweep.
func (r *Repository) ListUnrefinedSuggestions(ctx context.Context, limit int) ([]core.PurchaseSuggestion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uid, product_name, price_cents, monthly_emi_cents, duration_months,
		       classification, reason, created_at
		FROM suggestions WHERE refined = 0 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unrefined suggestions: %w", err)
	}
	defer rows.Close()

	var out []core.PurchaseSuggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row rowScanner) (core.PurchaseSuggestion, error) {
	var s core.PurchaseSuggestion
	var price, monthly int64
	var classification string
	err := row.Scan(&s.ID, &s.UID, &s.ProductName, &price, &monthly,
		&s.DurationMonths, &classification, &s.Reason, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PurchaseSuggestion{}, ErrNotFound
	}
	if err != nil {
		return core.PurchaseSuggestion{}, fmt.Errorf("scan suggestion: %w", err)
	}
	s.Price = core.Money{Cents: price}
	s.MonthlyEMI = core.Money{Cents: monthly}
	s.Classification = core.RiskLevel(classification)
	return s, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
