package memory

import (
	"context"

	"github.com/riskibarqy/weekly-lotto/internal/domain/player"
)

type PlayerRepository struct {
	access accessor
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (out player.Player, found bool, err error) {
	err = r.access(false, func(st *state) error {
		out, found = st.players[id]
		return nil
	})
	return out, found, err
}
