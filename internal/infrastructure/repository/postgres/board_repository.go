package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
	qb "github.com/riskibarqy/weekly-lotto/internal/platform/querybuilder"
)

const boardsTable = "boards"

type BoardRepository struct {
	db sqlx.ExtContext
}

func NewBoardRepository(db sqlx.ExtContext) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, b board.Board) (board.Board, error) {
	if err := b.ValidateBasic(); err != nil {
		return board.Board{}, fmt.Errorf("validate board: %w", err)
	}

	query, args, err := qb.InsertModel(boardsTable, boardInsertModel{
		GameID:      b.GameID,
		PlayerID:    b.PlayerID,
		Numbers:     toInt64Array(b.Numbers),
		PriceDKK:    b.Price,
		PurchasedAt: b.PurchasedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.CreatedAt,
	}, "RETURNING id")
	if err != nil {
		return board.Board{}, fmt.Errorf("build insert board query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&b.ID); err != nil {
		return board.Board{}, fmt.Errorf("insert board: %w", err)
	}
	return b, nil
}

func (r *BoardRepository) ExistsForGame(ctx context.Context, gameID int64) (bool, error) {
	query, args, err := qb.Select("1").
		From(boardsTable).
		Where(qb.Eq("game_id", gameID), qb.Eq("is_deleted", false)).
		Limit(1).
		Exists()
	if err != nil {
		return false, fmt.Errorf("build board exists query: %w", err)
	}

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check boards for game id=%d: %w", gameID, err)
	}
	return exists, nil
}

func (r *BoardRepository) ListByGame(ctx context.Context, gameID int64) ([]board.Board, error) {
	query, args, err := qb.Select("id", "game_id", "player_id", "numbers", "price_dkk", "purchased_at", "created_at").
		From(boardsTable).
		Where(qb.Eq("game_id", gameID), qb.Eq("is_deleted", false)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list boards query: %w", err)
	}

	var rows []boardTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list boards for game id=%d: %w", gameID, err)
	}

	out := make([]board.Board, 0, len(rows))
	for _, row := range rows {
		out = append(out, board.Board{
			ID:          row.ID,
			GameID:      row.GameID,
			PlayerID:    row.PlayerID,
			Numbers:     fromInt64Array(row.Numbers),
			Price:       row.PriceDKK,
			PurchasedAt: row.PurchasedAt,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *BoardRepository) RevenueByGame(ctx context.Context, gameIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("game_id", "COALESCE(SUM(price_dkk), 0) AS revenue").
		From(boardsTable).
		Where(qb.In("game_id", qb.Values(gameIDs)), qb.Eq("is_deleted", false)).
		GroupBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build board revenue query: %w", err)
	}

	var rows []boardRevenueRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum board revenue: %w", err)
	}
	for _, row := range rows {
		out[row.GameID] = row.Revenue
	}
	return out, nil
}
