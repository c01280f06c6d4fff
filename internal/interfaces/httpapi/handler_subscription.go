package httpapi

import (
	"net/http"

	"github.com/riskibarqy/weekly-lotto/internal/usecase"
)

func (h *Handler) ListPlayerSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerSubscriptions")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.subscriptionService.List(ctx, playerID)
	if err != nil {
		h.fail(ctx, w, "list subscriptions failed", err, "player_id", playerID)
		return
	}

	out := make([]subscriptionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, subscriptionToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSubscription")
	defer span.End()

	var req createSubscriptionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.subscriptionService.Create(ctx, usecase.CreateSubscriptionInput{
		PlayerID:       req.PlayerID,
		Numbers:        req.Numbers,
		RemainingWeeks: req.RemainingWeeks,
	})
	if err != nil {
		h.fail(ctx, w, "create subscription failed", err, "player_id", req.PlayerID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, subscriptionToDTO(created))
}

func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelSubscription")
	defer span.End()

	subscriptionID, err := pathID(r, "subscriptionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	canceled, err := h.subscriptionService.Cancel(ctx, subscriptionID)
	if err != nil {
		h.fail(ctx, w, "cancel subscription failed", err, "subscription_id", subscriptionID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, subscriptionToDTO(canceled))
}
