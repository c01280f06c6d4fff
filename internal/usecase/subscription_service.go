package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	"github.com/riskibarqy/weekly-lotto/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type CreateSubscriptionInput struct {
	PlayerID       int64
	Numbers        []int
	RemainingWeeks int
}

type SubscriptionService struct {
	store  Store
	clock  clockwork.Clock
	logger *logging.Logger
}

func NewSubscriptionService(store Store, clock clockwork.Clock, logger *logging.Logger) *SubscriptionService {
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SubscriptionService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// List returns the active subscriptions of a player, newest first.
func (s *SubscriptionService) List(ctx context.Context, playerID int64) (items []subscription.Subscription, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.List", attribute.Int64("player.id", playerID))
	defer func() { endUsecaseSpan(span, err) }()

	if playerID <= 0 {
		return nil, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}

	items, err = s.store.Repositories().Subscriptions.ListActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for player id=%d: %w", playerID, err)
	}
	return items, nil
}

func (s *SubscriptionService) Create(ctx context.Context, input CreateSubscriptionInput) (created subscription.Subscription, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.Create", attribute.Int64("player.id", input.PlayerID))
	defer func() { endUsecaseSpan(span, err) }()

	if input.PlayerID <= 0 {
		return subscription.Subscription{}, fmt.Errorf("%w: player id must be positive", ErrInvalidInput)
	}
	if err := board.ValidateNumbers(input.Numbers); err != nil {
		return subscription.Subscription{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if input.RemainingWeeks <= 0 {
		return subscription.Subscription{}, fmt.Errorf("%w: remaining weeks must be positive", ErrInvalidInput)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := requireActivePlayer(ctx, repos.Players, input.PlayerID); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		sub, err := repos.Subscriptions.Create(ctx, subscription.Subscription{
			PlayerID:       input.PlayerID,
			Numbers:        slices.Clone(input.Numbers),
			RemainingWeeks: subscription.ClampWeeks(input.RemainingWeeks),
			IsActive:       true,
			StartedAt:      now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		created = sub
		return nil
	})
	if err != nil {
		return subscription.Subscription{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "subscription created",
		"subscription_id", created.ID,
		"player_id", created.PlayerID,
		"remaining_weeks", created.RemainingWeeks,
	)
	return created, nil
}

// Cancel stops a subscription. Cancelling an already cancelled subscription is a no-op.
func (s *SubscriptionService) Cancel(ctx context.Context, subscriptionID int64) (sub subscription.Subscription, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubscriptionService.Cancel", attribute.Int64("subscription.id", subscriptionID))
	defer func() { endUsecaseSpan(span, err) }()

	if subscriptionID <= 0 {
		return subscription.Subscription{}, fmt.Errorf("%w: subscription id must be positive", ErrInvalidInput)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		current, exists, err := repos.Subscriptions.GetByID(ctx, subscriptionID)
		if err != nil {
			return fmt.Errorf("get subscription id=%d: %w", subscriptionID, err)
		}
		if !exists {
			return fmt.Errorf("%w: subscription id=%d", ErrNotFound, subscriptionID)
		}
		if !current.IsActive {
			sub = current
			return nil
		}

		current.Cancel(s.clock.Now().UTC())
		if err := repos.Subscriptions.Update(ctx, current); err != nil {
			return fmt.Errorf("cancel subscription id=%d: %w", subscriptionID, err)
		}
		sub = current
		return nil
	})
	if err != nil {
		return subscription.Subscription{}, translateStoreError(err)
	}

	s.logger.InfoContext(ctx, "subscription canceled", "subscription_id", sub.ID, "player_id", sub.PlayerID)
	return sub, nil
}
