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

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/embeds/resolve", handler.ResolveEmbed)
	mux.HandleFunc("GET /v1/sources", handler.ListSources)
	mux.HandleFunc("GET /v1/sources/{sourceID}/matches", handler.ListSourceMatches)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/check-embeds", handler.CheckEmbeds)
	mux.HandleFunc("GET /v1/matches/decode/{token}", handler.DecodeMatchID)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("POST /v1/matches/from-link", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateMatchFromLink)))
	mux.Handle("PUT /v1/matches/{matchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpdateMatch)))
	mux.Handle("DELETE /v1/matches/{matchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.DeleteMatch)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/bootstrap", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBootstrapJob)))
	mux.Handle("POST /v1/internal/jobs/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncJob)))
}
