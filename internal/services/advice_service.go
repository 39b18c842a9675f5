package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"budgetly/internal/cache"
	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

// Publisher publishes refinement requests for stored suggestions. *amqp.Client
// satisfies it.
type Publisher interface {
	PublishAdviceRequest(ctx context.Context, suggestionID, uid string) error
}

// AdviceService runs the purchase rule engine against the user's current
// month and persists the verdict. The broker and Redis are both optional:
// without them advice still works, it just is not refined or cached.
type AdviceService struct {
	store     Store
	publisher Publisher
	cache     *cache.AdviceCache
	logger    *applog.Logger
	nowFunc   func() time.Time
}

func NewAdviceService(store Store, publisher Publisher, adviceCache *cache.AdviceCache, logger *applog.Logger) *AdviceService {
	return &AdviceService{
		store:     store,
		publisher: publisher,
		cache:     adviceCache,
		logger:    logger.WithComponent(applog.ComponentAdvice),
		nowFunc:   time.Now,
	}
}

// Evaluate classifies a prospective purchase against the user's current-month
// metrics, stores the resulting suggestion, and queues it for refinement.
func (s *AdviceService) Evaluate(ctx context.Context, uid string, in core.PurchaseInput) (core.PurchaseSuggestion, error) {
	if strings.TrimSpace(in.ProductName) == "" {
		return core.PurchaseSuggestion{}, core.ErrEmptyLabel
	}
	if err := in.Price.Validate(); err != nil {
		return core.PurchaseSuggestion{}, err
	}
	if in.DurationMonths < 0 || in.DurationMonths > core.MaxEMIDurationMonths {
		return core.PurchaseSuggestion{}, core.ErrInvalidDuration
	}
	// Derive the installment when the caller gave a duration but no amount.
	if in.MonthlyEMI.Cents == 0 && in.DurationMonths > 0 {
		in.MonthlyEMI = core.Money{Cents: in.Price.Cents / int64(in.DurationMonths)}
	}

	if cached, ok := s.cache.Get(ctx, uid, in.ProductName, in.Price.Cents); ok {
		s.logger.InfoContext(ctx, "Advice served from cache",
			applog.FieldUID, uid,
			applog.FieldProduct, in.ProductName)
		return cached, nil
	}

	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return core.PurchaseSuggestion{}, err
	}
	ledger, err := s.store.LoadLedger(ctx, uid)
	if err != nil {
		return core.PurchaseSuggestion{}, err
	}

	now := s.nowFunc().UTC()
	month := core.NewDate(now.Year(), int(now.Month()), now.Day()).Key()
	metrics := core.ComputeMonthMetrics(ledger.Slice(month), user.Savings)

	advice := core.EvaluatePurchase(in, metrics, user.Savings)

	suggestion := core.PurchaseSuggestion{
		ID:             uuid.NewString(),
		UID:            uid,
		ProductName:    in.ProductName,
		Price:          in.Price,
		MonthlyEMI:     in.MonthlyEMI,
		DurationMonths: in.DurationMonths,
		Classification: advice.Classification,
		Reason:         advice.Reason(),
		CreatedAt:      now,
	}
	if err := s.store.CreateSuggestion(ctx, suggestion); err != nil {
		return core.PurchaseSuggestion{}, err
	}

	s.logger.InfoContext(ctx, "Purchase evaluated",
		applog.FieldUID, uid,
		applog.FieldProduct, in.ProductName,
		applog.FieldRisk, string(advice.Classification),
		applog.FieldSuggestion, suggestion.ID)

	// Refinement is best effort. The rule-based verdict is already stored.
	if s.publisher != nil {
		if err := s.publisher.PublishAdviceRequest(ctx, suggestion.ID, uid); err != nil {
			s.logger.ErrorContext(ctx, "Failed to queue advice refinement",
				applog.FieldError, err.Error(),
				applog.FieldSuggestion, suggestion.ID)
		}
	}

	s.cache.Set(ctx, suggestion)
	return suggestion, nil
}

// Suggestions lists the user's stored suggestions, newest first.
func (s *AdviceService) Suggestions(ctx context.Context, uid string) ([]core.PurchaseSuggestion, error) {
	return s.store.ListSuggestions(ctx, uid)
}

// DeleteSuggestion removes a stored suggestion.
func (s *AdviceService) DeleteSuggestion(ctx context.Context, uid, id string) error {
	return s.store.DeleteSuggestion(ctx, uid, id)
}

// InvalidateUser drops the user's cached advice after a ledger mutation.
func (s *AdviceService) InvalidateUser(ctx context.Context, uid string) {
	s.cache.Invalidate(ctx, uid)
}
