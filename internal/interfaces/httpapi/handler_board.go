package httpapi

import (
	"net/http"

	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBoard")
	defer span.End()

	var req createBoardRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.boardService.Create(ctx, usecase.CreateBoardInput{
		PlayerID:    req.PlayerID,
		GameID:      req.GameID,
		Numbers:     req.Numbers,
		RepeatWeeks: req.RepeatWeeks,
	})
	if err != nil {
		h.fail(ctx, w, "create board failed", err, "player_id", req.PlayerID, "game_id", req.GameID)
		return
	}

	out := createBoardResultDTO{Board: boardToDTO(result.Board)}
	if result.Subscription != nil {
		sub := subscriptionToDTO(*result.Subscription)
		out.Subscription = &sub
	}

	writeSuccess(ctx, w, http.StatusCreated, out)
}
