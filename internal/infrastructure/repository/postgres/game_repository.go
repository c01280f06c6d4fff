package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
	qb "github.com/riskibarqy/weekly-lotto/internal/platform/querybuilder"
)

const gamesTable = "games"

type GameRepository struct {
	db sqlx.ExtContext
}

func NewGameRepository(db sqlx.ExtContext) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (game.Week, bool, error) {
	return r.getOne(ctx, "get game by id", gameBaseSelectBuilder().
		Where(qb.Eq("id", id), qb.Eq("is_deleted", false)))
}

func (r *GameRepository) GetActive(ctx context.Context) (game.Week, bool, error) {
	return r.getOne(ctx, "get active game", gameBaseSelectBuilder().
		Where(qb.Eq("status", string(game.StatusActive)), qb.Eq("is_deleted", false)).
		Limit(1))
}

func (r *GameRepository) GetByWeekStart(ctx context.Context, weekStart time.Time) (game.Week, bool, error) {
	return r.getOne(ctx, "get game by week start", gameBaseSelectBuilder().
		Where(qb.Expr("week_start = ?::date", calendar.FormatDate(weekStart))))
}

func (r *GameRepository) LatestClosed(ctx context.Context) (game.Week, bool, error) {
	return r.getOne(ctx, "get latest closed game", gameBaseSelectBuilder().
		Where(qb.Eq("status", string(game.StatusClosed)), qb.Eq("is_deleted", false)).
		OrderBy("week_start DESC").
		Limit(1))
}

func (r *GameRepository) List(ctx context.Context, statuses []game.Status) ([]game.Week, error) {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, string(s))
	}

	query, args, err := gameBaseSelectBuilder().
		Where(qb.In("status", qb.Values(raw)), qb.Eq("is_deleted", false)).
		OrderBy("week_start DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	out := make([]game.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func (r *GameRepository) Create(ctx context.Context, week game.Week) (game.Week, error) {
	if err := week.ValidateBasic(); err != nil {
		return game.Week{}, fmt.Errorf("validate game week: %w", err)
	}

	insertModel := gameInsertModel{
		WeekStart:   calendar.FormatDate(week.WeekStart),
		Status:      string(week.Status),
		WinningNums: toInt64Array(week.WinningNumbers),
		PublishedAt: week.PublishedAt,
		IsDeleted:   week.Deleted,
		CreatedAt:   week.CreatedAt,
		UpdatedAt:   week.UpdatedAt,
	}
	query, args, err := qb.InsertModel(gamesTable, insertModel, "RETURNING id")
	if err != nil {
		return game.Week{}, fmt.Errorf("build insert game query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&week.ID); err != nil {
		if isUniqueViolation(err) {
			return game.Week{}, fmt.Errorf("%w: week %s: %w", game.ErrDuplicateWeek, insertModel.WeekStart, err)
		}
		return game.Week{}, fmt.Errorf("insert game: %w", err)
	}
	return week, nil
}

func (r *GameRepository) Update(ctx context.Context, week game.Week) error {
	if err := week.ValidateBasic(); err != nil {
		return fmt.Errorf("validate game week: %w", err)
	}

	query, args, err := qb.Update(gamesTable).
		Set("status", string(week.Status)).
		Set("winning_nums", toInt64Array(week.WinningNumbers)).
		Set("published_at", week.PublishedAt).
		Set("is_deleted", week.Deleted).
		Set("updated_at", week.UpdatedAt).
		Where(qb.Eq("id", week.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update game id=%d: %w", week.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game id=%d rows affected: %w", week.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update game id=%d: no row updated", week.ID)
	}
	return nil
}

func (r *GameRepository) getOne(ctx context.Context, op string, builder *qb.SelectBuilder) (game.Week, bool, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return game.Week{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row gameTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Week{}, false, nil
		}
		return game.Week{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return gameFromRow(row), true, nil
}

func gameBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(
		"id",
		"week_start",
		"status",
		"winning_nums",
		"published_at",
		"is_deleted",
		"created_at",
		"updated_at",
	).From(gamesTable)
}

func gameFromRow(row gameTableModel) game.Week {
	return game.Week{
		ID:             row.ID,
		WeekStart:      calendar.DateOf(row.WeekStart),
		Status:         game.Status(row.Status),
		WinningNumbers: fromInt64Array(row.WinningNums),
		PublishedAt:    row.PublishedAt,
		Deleted:        row.IsDeleted,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
