package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/weekly-lotto/internal/domain/subscription"
	qb "github.com/riskibarqy/weekly-lotto/internal/platform/querybuilder"
)

const subscriptionsTable = "board_subscriptions"

type SubscriptionRepository struct {
	db sqlx.ExtContext
}

func NewSubscriptionRepository(db sqlx.ExtContext) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s subscription.Subscription) (subscription.Subscription, error) {
	if err := s.ValidateBasic(); err != nil {
		return subscription.Subscription{}, fmt.Errorf("validate subscription: %w", err)
	}

	query, args, err := qb.InsertModel(subscriptionsTable, subscriptionInsertModel{
		PlayerID:       s.PlayerID,
		Numbers:        toInt64Array(s.Numbers),
		RemainingWeeks: s.RemainingWeeks,
		IsActive:       s.IsActive,
		StartedAt:      s.StartedAt,
		CanceledAt:     s.CanceledAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, "RETURNING id")
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("build insert subscription query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&s.ID); err != nil {
		return subscription.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (subscription.Subscription, bool, error) {
	query, args, err := subscriptionBaseSelectBuilder().
		Where(qb.Eq("id", id), qb.Eq("is_deleted", false)).
		ToSQL()
	if err != nil {
		return subscription.Subscription{}, false, fmt.Errorf("build get subscription query: %w", err)
	}

	var row subscriptionTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return subscription.Subscription{}, false, nil
		}
		return subscription.Subscription{}, false, fmt.Errorf("get subscription id=%d: %w", id, err)
	}
	return subscriptionFromRow(row), true, nil
}

func (r *SubscriptionRepository) ListActiveByPlayer(ctx context.Context, playerID int64) ([]subscription.Subscription, error) {
	query, args, err := subscriptionBaseSelectBuilder().
		Where(qb.Eq("player_id", playerID), qb.Eq("is_active", true), qb.Eq("is_deleted", false)).
		OrderBy("id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list subscriptions query: %w", err)
	}

	var rows []subscriptionTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list subscriptions for player id=%d: %w", playerID, err)
	}

	out := make([]subscription.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, subscriptionFromRow(row))
	}
	return out, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s subscription.Subscription) error {
	query, args, err := qb.Update(subscriptionsTable).
		Set("remaining_weeks", s.RemainingWeeks).
		Set("is_active", s.IsActive).
		Set("canceled_at", s.CanceledAt).
		Set("updated_at", s.UpdatedAt).
		Where(qb.Eq("id", s.ID), qb.Eq("is_deleted", false)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update subscription query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update subscription id=%d: %w", s.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update subscription id=%d: no row updated", s.ID)
	}
	return nil
}

func subscriptionBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(
		"id",
		"player_id",
		"numbers",
		"remaining_weeks",
		"is_active",
		"started_at",
		"canceled_at",
		"created_at",
		"updated_at",
	).From(subscriptionsTable)
}

func subscriptionFromRow(row subscriptionTableModel) subscription.Subscription {
	return subscription.Subscription{
		ID:             row.ID,
		PlayerID:       row.PlayerID,
		Numbers:        fromInt64Array(row.Numbers),
		RemainingWeeks: row.RemainingWeeks,
		IsActive:       row.IsActive,
		StartedAt:      row.StartedAt,
		CanceledAt:     row.CanceledAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
