package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/weekly-lotto/internal/domain/board"
)

type BoardRepository struct {
	access accessor
}

func (r *BoardRepository) Create(_ context.Context, b board.Board) (out board.Board, err error) {
	if err := b.ValidateBasic(); err != nil {
		return board.Board{}, fmt.Errorf("validate board: %w", err)
	}

	err = r.access(true, func(st *state) error {
		if w, ok := st.games[b.GameID]; !ok || w.Deleted {
			return fmt.Errorf("game id=%d does not exist", b.GameID)
		}
		if _, ok := st.players[b.PlayerID]; !ok {
			return fmt.Errorf("player id=%d does not exist", b.PlayerID)
		}
		st.lastBoardID++
		b.ID = st.lastBoardID
		st.boards[b.ID] = b.Clone()
		out = b.Clone()
		return nil
	})
	return out, err
}

func (r *BoardRepository) ExistsForGame(_ context.Context, gameID int64) (exists bool, err error) {
	err = r.access(false, func(st *state) error {
		for _, b := range st.boards {
			if b.GameID == gameID {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *BoardRepository) ListByGame(_ context.Context, gameID int64) ([]board.Board, error) {
	out := make([]board.Board, 0)
	err := r.access(false, func(st *state) error {
		for _, id := range sortedIDs(st.boards) {
			if b := st.boards[id]; b.GameID == gameID {
				out = append(out, b.Clone())
			}
		}
		return nil
	})
	return out, err
}

func (r *BoardRepository) RevenueByGame(_ context.Context, gameIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}

	wanted := make(map[int64]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		wanted[id] = struct{}{}
	}

	err := r.access(false, func(st *state) error {
		for _, b := range st.boards {
			if _, ok := wanted[b.GameID]; ok {
				out[b.GameID] += b.Price
			}
		}
		return nil
	})
	return out, err
}
