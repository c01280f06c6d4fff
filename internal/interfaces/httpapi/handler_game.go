package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/weekly-lotto/internal/domain/calendar"
	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	items, err := h.gameService.List(ctx, status)
	if err != nil {
		h.fail(ctx, w, "list games failed", err, "status", status)
		return
	}

	out := make([]gameOverviewDTO, 0, len(items))
	for _, item := range items {
		out = append(out, gameOverviewDTO{Game: gameToDTO(item.Week), Revenue: item.Revenue})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetActiveGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveGame")
	defer span.End()

	week, err := h.gameService.GetActive(ctx)
	if err != nil {
		h.fail(ctx, w, "get active game failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(week))
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartGame")
	defer span.End()

	var req startGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	var weekStart *time.Time
	if req.WeekStart != "" {
		parsed, err := calendar.ParseDate(req.WeekStart)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		weekStart = &parsed
	}

	week, err := h.gameService.Start(ctx, weekStart)
	if err != nil {
		h.fail(ctx, w, "start game failed", err, "week_start", req.WeekStart)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(week))
}

func (h *Handler) PublishGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PublishGame")
	defer span.End()

	var req winningNumbersRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.gameService.Publish(ctx, req.GameID, req.WinningNumbers)
	if err != nil {
		h.fail(ctx, w, "publish game failed", err, "game_id", req.GameID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, publishResultDTO{
		Closed: gameToDTO(result.Closed),
		Next:   gameToDTO(result.Next),
	})
}

func (h *Handler) DraftGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DraftGame")
	defer span.End()

	var req winningNumbersRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	week, err := h.gameService.Draft(ctx, req.GameID, req.WinningNumbers)
	if err != nil {
		h.fail(ctx, w, "draft game failed", err, "game_id", req.GameID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(week))
}

func (h *Handler) UndoGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoGame")
	defer span.End()

	var req undoGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	week, err := h.gameService.Undo(ctx, req.GameID)
	if err != nil {
		h.fail(ctx, w, "undo game failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(week))
}

func (h *Handler) ListGameBoards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameBoards")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.gameService.Boards(ctx, gameID)
	if err != nil {
		h.fail(ctx, w, "list game boards failed", err, "game_id", gameID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameBoardsToDTO(result))
}

func (h *Handler) GetGameSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameSummary")
	defer span.End()

	gameID, err := pathID(r, "gameID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.gameService.Summary(ctx, gameID)
	if err != nil {
		h.fail(ctx, w, "get game summary failed", err, "game_id", gameID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameSummaryDTO{
		GameID:      summary.GameID,
		Winners:     summary.Winners,
		TotalBoards: summary.TotalBoards,
	})
}
