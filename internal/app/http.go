package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/whereismatch/internal/interfaces/httpapi"
)

// HTTPServer exposes the session over the local JSON API.
func (a *App) HTTPServer() (*http.Server, error) {
	if a.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	logger := a.Logger.Named("httpapi")
	handler := httpapi.NewHandler(a.Orchestrator, logger)
	router := httpapi.NewRouter(handler, logger, a.Config.CORSAllowedOrigins)

	return &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// Mutations wait for the competition and match refetches.
		WriteTimeout: 30 * time.Second,
	}, nil
}
