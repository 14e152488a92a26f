package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/rating-history", handler.ListRatingHistory)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.Handle("POST /v1/matchmaking/queue", RequirePlayer(http.HandlerFunc(handler.JoinQueue)))
	mux.Handle("DELETE /v1/matchmaking/queue", RequirePlayer(http.HandlerFunc(handler.LeaveQueue)))

	mux.Handle("POST /v1/matches", RequirePlayer(http.HandlerFunc(handler.CreateMatch)))
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.Handle("GET /v1/matches/{matchID}/rounds/{roundNumber}", OptionalPlayer(http.HandlerFunc(handler.GetRound)))
	mux.Handle("POST /v1/matches/{matchID}/rounds/{roundNumber}/guesses", RequirePlayer(http.HandlerFunc(handler.SubmitGuess)))
}
