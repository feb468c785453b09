package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerBrowserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/state", handler.GetState)
	mux.HandleFunc("POST /v1/reload", handler.Reload)
	mux.HandleFunc("POST /v1/date", handler.SetDate)

	mux.HandleFunc("GET /v1/filters/{dimension}", handler.ListFilterOptions)
	mux.HandleFunc("POST /v1/filters/{dimension}/toggle", handler.ToggleFilter)
	mux.HandleFunc("POST /v1/filters/{dimension}/commit", handler.CommitSearch)
	mux.HandleFunc("DELETE /v1/filters/{dimension}", handler.ClearFilter)
}
