package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/active", handler.GetActiveGame)
	mux.HandleFunc("POST /v1/games/start", handler.StartGame)
	mux.HandleFunc("POST /v1/games/publish", handler.PublishGame)
	mux.HandleFunc("POST /v1/games/draft", handler.DraftGame)
	// Reverts the most recent publish unless game_id names another closed week.
	mux.HandleFunc("POST /v1/games/undo", handler.UndoGame)
	mux.HandleFunc("GET /v1/games/{gameID}/boards", handler.ListGameBoards)
	mux.HandleFunc("GET /v1/games/{gameID}/summary", handler.GetGameSummary)
}

func registerBoardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/boards", handler.CreateBoard)
}

func registerSubscriptionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/subscriptions", handler.ListPlayerSubscriptions)
	mux.HandleFunc("POST /v1/subscriptions", handler.CreateSubscription)
	mux.HandleFunc("POST /v1/subscriptions/{subscriptionID}/cancel", handler.CancelSubscription)
}
