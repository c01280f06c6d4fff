package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/weekly-lotto/internal/domain/game"
)

type GameRepository struct {
	access accessor
}

func (r *GameRepository) GetByID(_ context.Context, id int64) (out game.Week, found bool, err error) {
	err = r.access(false, func(st *state) error {
		w, ok := st.games[id]
		if !ok || w.Deleted {
			return nil
		}
		out, found = w.Clone(), true
		return nil
	})
	return out, found, err
}

func (r *GameRepository) GetActive(_ context.Context) (out game.Week, found bool, err error) {
	err = r.access(false, func(st *state) error {
		for _, w := range st.games {
			if w.IsActive() {
				out, found = w.Clone(), true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (r *GameRepository) GetByWeekStart(_ context.Context, weekStart time.Time) (out game.Week, found bool, err error) {
	err = r.access(false, func(st *state) error {
		for _, w := range st.games {
			if w.WeekStart.Equal(weekStart) {
				out, found = w.Clone(), true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (r *GameRepository) LatestClosed(_ context.Context) (out game.Week, found bool, err error) {
	err = r.access(false, func(st *state) error {
		for _, w := range st.games {
			if !w.IsClosed() {
				continue
			}
			if !found || w.WeekStart.After(out.WeekStart) {
				out, found = w.Clone(), true
			}
		}
		return nil
	})
	return out, found, err
}

func (r *GameRepository) List(_ context.Context, statuses []game.Status) ([]game.Week, error) {
	var out []game.Week
	err := r.access(false, func(st *state) error {
		for _, w := range st.games {
			if w.Deleted || !slices.Contains(statuses, w.Status) {
				continue
			}
			out = append(out, w.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b game.Week) int {
		return b.WeekStart.Compare(a.WeekStart)
	})
	return out, nil
}

func (r *GameRepository) Create(_ context.Context, week game.Week) (out game.Week, err error) {
	if err := week.ValidateBasic(); err != nil {
		return game.Week{}, fmt.Errorf("validate game week: %w", err)
	}

	err = r.access(true, func(st *state) error {
		if err := checkGameConstraints(st, week); err != nil {
			return err
		}
		st.lastGameID++
		week.ID = st.lastGameID
		st.games[week.ID] = week.Clone()
		out = week.Clone()
		return nil
	})
	return out, err
}

func (r *GameRepository) Update(_ context.Context, week game.Week) error {
	if err := week.ValidateBasic(); err != nil {
		return fmt.Errorf("validate game week: %w", err)
	}

	return r.access(true, func(st *state) error {
		if _, ok := st.games[week.ID]; !ok {
			return fmt.Errorf("game id=%d does not exist", week.ID)
		}
		if err := checkGameConstraints(st, week); err != nil {
			return err
		}
		st.games[week.ID] = week.Clone()
		return nil
	})
}

// checkGameConstraints mirrors the unique indexes of the games table.
func checkGameConstraints(st *state, week game.Week) error {
	for id, other := range st.games {
		if id == week.ID {
			continue
		}
		if other.WeekStart.Equal(week.WeekStart) {
			return fmt.Errorf("%w: week %s", game.ErrDuplicateWeek, week.WeekStart.Format(time.DateOnly))
		}
		if week.IsActive() && other.IsActive() {
			return fmt.Errorf("%w: game id=%d is already active", game.ErrConcurrentUpdate, id)
		}
	}
	return nil
}

func sortedIDs[T any](items map[int64]T) []int64 {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, cmp.Compare[int64])
	return ids
}
