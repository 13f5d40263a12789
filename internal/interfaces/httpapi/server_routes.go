package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /healthz", handler.Health)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/matches", handler.ListMatches)
	mux.HandleFunc("GET /api/stats", handler.GetStats)
	mux.HandleFunc("GET /api/todays-fixtures-with-scores", handler.ListTodaysFixtures)
	mux.HandleFunc("GET /api/scrape-status", handler.GetScrapeStatus)
	mux.HandleFunc("POST /api/refresh", handler.RefreshMatches)
	mux.HandleFunc("GET /api/force-scrape", handler.RefreshMatches)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/live-scores", handler.ListLiveScores)
	mux.HandleFunc("GET /api/live-scores-with-updates", handler.ListLiveScoresWithUpdates)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /api/live/updates", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestLiveUpdates)))
}
