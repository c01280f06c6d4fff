package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
	qb "github.com/riskibarqy/weekly-lotto/internal/platform/querybuilder"
)

// PlayerRepository reads the players table owned by the account service.
type PlayerRepository struct {
	db sqlx.ExtContext
}

func NewPlayerRepository(db sqlx.ExtContext) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	query, args, err := qb.Select("id", "name", "is_active").
		From("players").
		Where(qb.Eq("id", id), qb.Eq("is_deleted", false)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player id=%d: %w", id, err)
	}

	return player.Player{ID: row.ID, Name: row.Name, IsActive: row.IsActive}, true, nil
}
