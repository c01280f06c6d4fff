package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
)

type SubscriptionRepository struct {
	access accessor
}

func (r *SubscriptionRepository) Create(_ context.Context, s subscription.Subscription) (out subscription.Subscription, err error) {
	if err := s.ValidateBasic(); err != nil {
		return subscription.Subscription{}, fmt.Errorf("validate subscription: %w", err)
	}

	err = r.access(true, func(st *state) error {
		if _, ok := st.players[s.PlayerID]; !ok {
			return fmt.Errorf("player id=%d does not exist", s.PlayerID)
		}
		st.lastSubscriptionID++
		s.ID = st.lastSubscriptionID
		st.subscriptions[s.ID] = s.Clone()
		out = s.Clone()
		return nil
	})
	return out, err
}

func (r *SubscriptionRepository) GetByID(_ context.Context, id int64) (out subscription.Subscription, found bool, err error) {
	err = r.access(false, func(st *state) error {
		s, ok := st.subscriptions[id]
		if !ok {
			return nil
		}
		out, found = s.Clone(), true
		return nil
	})
	return out, found, err
}

func (r *SubscriptionRepository) ListActiveByPlayer(_ context.Context, playerID int64) ([]subscription.Subscription, error) {
	out := make([]subscription.Subscription, 0)
	err := r.access(false, func(st *state) error {
		for _, id := range sortedIDs(st.subscriptions) {
			if s := st.subscriptions[id]; s.PlayerID == playerID && s.IsActive {
				out = append(out, s.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Reverse(out)
	return out, nil
}

func (r *SubscriptionRepository) Update(_ context.Context, s subscription.Subscription) error {
	if err := s.ValidateBasic(); err != nil {
		return fmt.Errorf("validate subscription: %w", err)
	}

	return r.access(true, func(st *state) error {
		if _, ok := st.subscriptions[s.ID]; !ok {
			return fmt.Errorf("subscription id=%d does not exist", s.ID)
		}
		st.subscriptions[s.ID] = s.Clone()
		return nil
	})
}
