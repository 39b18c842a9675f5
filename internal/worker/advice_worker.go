// Package worker refines stored purchase suggestions with generated
// explanations, driven by AMQP messages plus a periodic sweep.
package worker

import (
	"context"
	"fmt"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

// Store is the storage surface the worker needs.
type Store interface {
	GetSuggestion(ctx context.Context, id string) (core.PurchaseSuggestion, error)
	GetUser(ctx context.Context, uid string) (core.User, error)
	LoadLedger(ctx context.Context, uid string) (core.Ledger, error)
	UpdateSuggestionReason(ctx context.Context, id, reason string) error
	ListUnrefinedSuggestions(ctx context.Context, limit int) ([]core.PurchaseSuggestion, error)
}

// Refiner produces an improved explanation for a suggestion. Implementations
// must fall back to the existing reason rather than fail.
type Refiner interface {
	Enabled() bool
	Refine(ctx context.Context, s core.PurchaseSuggestion, m core.MonthMetrics) string
}

// AdviceWorker rewrites rule engine verdict reasons into richer explanations.
// The verdict itself is never changed, only the wording.
type AdviceWorker struct {
	store     Store
	refiner   Refiner
	batchSize int
	logger    *applog.Logger
}

func NewAdviceWorker(store Store, refiner Refiner, batchSize int, logger *applog.Logger) *AdviceWorker {
	return &AdviceWorker{
		store:     store,
		refiner:   refiner,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleAdviceRequest processes a single advice refinement message.
func (w *AdviceWorker) HandleAdviceRequest(ctx context.Context, msg *amqp.AdviceRequestMessage) error {
	w.logger.InfoContext(ctx, "Processing advice request",
		"suggestion_id", msg.SuggestionID, "uid", msg.UID)

	suggestion, err := w.store.GetSuggestion(ctx, msg.SuggestionID)
	if err != nil {
		return fmt.Errorf("get suggestion: %w", err)
	}
	return w.refine(ctx, suggestion)
}

// ProcessPending refines up to batchSize suggestions that have not been
// refined yet. It backs the periodic sweep that catches messages lost while
// the broker or worker was down.
func (w *AdviceWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.store.ListUnrefinedSuggestions(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unrefined suggestions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending suggestions", "count", len(pending))

	processed := 0
	for _, s := range pending {
		if err := w.refine(ctx, s); err != nil {
			w.logger.ErrorContext(ctx, "Failed to refine suggestion",
				"suggestion_id", s.ID, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (w *AdviceWorker) refine(ctx context.Context, s core.PurchaseSuggestion) error {
	if w.refiner == nil || !w.refiner.Enabled() {
		// Nothing to add; keep the rule engine wording and mark it done so
		// the sweep does not pick it up forever.
		if err := w.store.UpdateSuggestionReason(ctx, s.ID, s.Reason); err != nil {
			return fmt.Errorf("mark suggestion refined: %w", err)
		}
		return nil
	}

	user, err := w.store.GetUser(ctx, s.UID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	ledger, err := w.store.LoadLedger(ctx, s.UID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	month := core.Date{Time: s.CreatedAt}.Key()
	metrics := core.ComputeMonthMetrics(ledger.Slice(month), user.Savings)

	reason := w.refiner.Refine(ctx, s, metrics)
	if err := w.store.UpdateSuggestionReason(ctx, s.ID, reason); err != nil {
		return fmt.Errorf("update suggestion reason: %w", err)
	}

	w.logger.InfoContext(ctx, "Suggestion refined",
		"suggestion_id", s.ID, "uid", s.UID, "classification", string(s.Classification))
	return nil
}
